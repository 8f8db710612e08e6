package pipeline

import (
	"errors"
	"time"

	"github.com/AnyUserName/memecap/internal/composite"
	"github.com/AnyUserName/memecap/internal/fonts"
	"github.com/AnyUserName/memecap/internal/frames"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the processor's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	sources *prometheus.CounterVec
	stages  *prometheus.HistogramVec
	total   prometheus.Histogram
	bytes   *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		sources: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memecap",
			Name:      "sources_total",
			Help:      "Processed sources by outcome.",
		}, []string{"outcome"}),
		stages: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memecap",
			Name:      "stage_duration_seconds",
			Help:      "Time spent per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		total: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "memecap",
			Name:      "process_duration_seconds",
			Help:      "End-to-end time per source.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
		bytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memecap",
			Name:      "bytes_total",
			Help:      "Source and output bytes.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) observeStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeSource(start time.Time, res *Result, err error) {
	if m == nil {
		return
	}
	m.total.Observe(time.Since(start).Seconds())
	m.sources.WithLabelValues(outcome(res, err)).Inc()
	if res != nil {
		m.bytes.WithLabelValues("source").Add(float64(res.SourceSize))
		m.bytes.WithLabelValues("main").Add(float64(len(res.Main)))
		m.bytes.WithLabelValues("thumb").Add(float64(len(res.Thumb)))
	}
}

// outcome classifies a result for the sources_total counter.
func outcome(res *Result, err error) string {
	var (
		fe  *composite.FetchError
		ufe *frames.UnsupportedFormatError
	)
	switch {
	case err == nil && res.ShrinkSkipped:
		return "ok_unresized"
	case err == nil:
		return "ok"
	case errors.As(err, &fe) && fe.Timeout():
		return "timeout"
	case errors.As(err, &fe):
		return "fetch_error"
	case errors.As(err, &ufe):
		return "unsupported_format"
	case errors.Is(err, composite.ErrAlignment):
		return "alignment_error"
	case errors.Is(err, fonts.ErrNoFonts):
		return "no_fonts"
	default:
		return "error"
	}
}
