package cmd

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/AnyUserName/memecap/internal/caption"
	"github.com/AnyUserName/memecap/internal/composite"
	"github.com/AnyUserName/memecap/internal/fonts"
	"github.com/AnyUserName/memecap/internal/pipeline"
	"github.com/AnyUserName/memecap/internal/profile"
	"github.com/AnyUserName/memecap/internal/watermark"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// settings is the effective configuration after flags, environment and
// config file are merged.
type settings struct {
	Profile               string         `yaml:"profile"`
	FontsDir              string         `yaml:"fonts_dir"`
	Watermark             string         `yaml:"watermark"`
	UserAgent             string         `yaml:"user_agent"`
	CaptionAfterWatermark bool           `yaml:"caption_after_watermark"`
	Policy                policySettings `yaml:",inline"`
}

type policySettings struct {
	MaxSourceSide          int    `yaml:"max_source_side"`
	MinSourceSide          int    `yaml:"min_source_side"`
	EnlargedSide           int    `yaml:"enlarged_side"`
	ThumbSide              int    `yaml:"thumb_side"`
	MaxAnimatedShrinkBytes int64  `yaml:"max_animated_shrink_bytes"`
	MaxSourceBytes         int64  `yaml:"max_source_bytes"`
	Quality                int    `yaml:"quality"`
	FetchTimeout           string `yaml:"fetch_timeout"`
}

func profileNames() []string { return profile.Names() }

// loadPolicy starts from the named profile and applies overrides.
func loadPolicy(log *zap.Logger) profile.Policy {
	name := viper.GetString("profile")
	if !slices.Contains(profile.Names(), name) {
		log.Warn("unknown profile, using default limits", zap.String("profile", name))
	}
	p := profile.Get(name)

	ints := map[string]*int{
		"max_source_side": &p.MaxSourceSide,
		"min_source_side": &p.MinSourceSide,
		"enlarged_side":   &p.EnlargedSide,
		"thumb_side":      &p.ThumbSide,
	}
	for key, dst := range ints {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}
	if viper.IsSet("max_animated_shrink_bytes") {
		p.MaxAnimatedShrinkBytes = viper.GetInt64("max_animated_shrink_bytes")
	}
	if viper.IsSet("max_source_bytes") {
		p.MaxSourceBytes = viper.GetInt64("max_source_bytes")
	}
	if q := viper.GetInt("quality"); q > 0 {
		p.Quality = q
	}
	if d := viper.GetDuration("fetch_timeout"); d > 0 {
		p.FetchTimeout = d
	}
	return p
}

func loadSettings(log *zap.Logger) settings {
	p := loadPolicy(log)
	return settings{
		Profile:               p.Name,
		FontsDir:              viper.GetString("fonts_dir"),
		Watermark:             viper.GetString("watermark"),
		UserAgent:             viper.GetString("user_agent"),
		CaptionAfterWatermark: viper.GetBool("caption_after_watermark"),
		Policy: policySettings{
			MaxSourceSide:          p.MaxSourceSide,
			MinSourceSide:          p.MinSourceSide,
			EnlargedSide:           p.EnlargedSide,
			ThumbSide:              p.ThumbSide,
			MaxAnimatedShrinkBytes: p.MaxAnimatedShrinkBytes,
			MaxSourceBytes:         p.MaxSourceBytes,
			Quality:                p.Quality,
			FetchTimeout:           p.FetchTimeout.String(),
		},
	}
}

// app holds the components shared by the processing commands.
type app struct {
	log     *zap.Logger
	policy  profile.Policy
	catalog *fonts.Catalog
	proc    *pipeline.Processor
	metrics *prometheus.Registry

	watermarkName string
}

// newApp wires the pipeline. With captions set, the font catalog must
// load before any source is processed.
func newApp(log *zap.Logger, captions bool) (*app, error) {
	policy := loadPolicy(log)

	wm := watermark.Default()
	wmName := "default"
	if path := viper.GetString("watermark"); path != "" {
		var err error
		if wm, err = watermark.Load(path); err != nil {
			return nil, err
		}
		wmName = path
	}

	catalog := fonts.NewCatalog(viper.GetString("fonts_dir"), log.Named("fonts"))
	var renderer *caption.Renderer
	if captions {
		if err := catalog.Ready(); err != nil {
			return nil, fmt.Errorf("font catalog: %w", err)
		}
		renderer = caption.NewRenderer(catalog, log.Named("caption"))
	}

	fetcher := &composite.SourceFetcher{
		Client:    &http.Client{},
		Timeout:   policy.FetchTimeout,
		MaxBytes:  policy.MaxSourceBytes,
		UserAgent: viper.GetString("user_agent"),
	}

	reg := prometheus.NewRegistry()
	proc := pipeline.New(pipeline.Config{
		Loader:                composite.NewLoader(fetcher, log.Named("loader")),
		Policy:                policy,
		Watermark:             wm,
		Captions:              renderer,
		Metrics:               pipeline.NewMetrics(reg),
		Logger:                log.Named("pipeline"),
		CaptionAfterWatermark: viper.GetBool("caption_after_watermark"),
	})

	log.Debug("pipeline ready",
		zap.String("profile", policy.Name),
		zap.Int("max_source_side", policy.MaxSourceSide),
		zap.Int("thumb_side", policy.ThumbSide),
		zap.String("watermark", wmName),
		zap.Stringer("encoders", proc.Encoders()))

	return &app{
		log:           log,
		policy:        policy,
		catalog:       catalog,
		proc:          proc,
		metrics:       reg,
		watermarkName: wmName,
	}, nil
}

// writeMetrics dumps the pipeline metrics in the Prometheus text format.
func (a *app) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, a.metrics); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	a.log.Debug("metrics written", zap.String("path", path))
	return nil
}
