package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/AnyUserName/memecap/internal/caption"
	"github.com/AnyUserName/memecap/internal/composite"
	"github.com/AnyUserName/memecap/internal/encoder"
	"github.com/AnyUserName/memecap/internal/frames"
	"github.com/AnyUserName/memecap/internal/hasher"
	"github.com/AnyUserName/memecap/internal/normalize"
	"github.com/AnyUserName/memecap/internal/profile"
	"github.com/AnyUserName/memecap/internal/thumb"
	"github.com/AnyUserName/memecap/internal/watermark"
	"go.uber.org/zap"
)

// Result is the output of one processed source. It is either complete or
// not returned at all.
type Result struct {
	// ID is the xxhash64 of Main.
	ID string

	Main        []byte
	Width       int
	Height      int
	ContentType string
	Extension   string

	Thumb       []byte
	ThumbWidth  int
	ThumbHeight int

	Animated      bool
	Frames        int
	SourceFormat  string
	SourceSize    int64
	ShrinkSkipped bool
}

// Config wires a Processor. Loader and Policy are required; the rest
// have usable defaults.
type Config struct {
	Loader    *composite.Loader
	Policy    profile.Policy
	Encoders  *encoder.Registry // defaults to encoder.NewRegistry()
	Watermark *watermark.Watermark
	Captions  *caption.Renderer // required for Generate only
	Metrics   *Metrics
	Logger    *zap.Logger

	// CaptionAfterWatermark draws captions over the watermark instead
	// of under it.
	CaptionAfterWatermark bool
}

// Processor runs sources through resolve, normalize, thumbnail,
// watermark and encode. It holds no per-call state and is safe for
// concurrent use.
type Processor struct {
	cfg Config
	log *zap.Logger
}

// New returns a processor for cfg.
func New(cfg Config) *Processor {
	if cfg.Encoders == nil {
		cfg.Encoders = encoder.NewRegistry()
	}
	if cfg.Watermark == nil {
		cfg.Watermark = watermark.Default()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{cfg: cfg, log: log}
}

// Policy returns the size policy the processor applies.
func (p *Processor) Policy() profile.Policy { return p.cfg.Policy }

// Encoders returns the encoder registry.
func (p *Processor) Encoders() *encoder.Registry { return p.cfg.Encoders }

// Process resolves source, normalizes it, derives the thumbnail from the
// normalized image, watermarks the main image and encodes both. The
// first failing stage aborts with its error.
func (p *Processor) Process(ctx context.Context, source string) (*Result, error) {
	return p.run(ctx, source, nil)
}

// Generate is Process with captions drawn on the main image. The
// thumbnail shows the captioned image without the watermark.
func (p *Processor) Generate(ctx context.Context, source string, caps []caption.Caption) (*Result, error) {
	if p.cfg.Captions == nil {
		return nil, fmt.Errorf("generate %s: no caption renderer configured", source)
	}
	return p.run(ctx, source, caps)
}

func (p *Processor) run(ctx context.Context, source string, caps []caption.Caption) (res *Result, err error) {
	start := time.Now()
	defer func() { p.cfg.Metrics.observeSource(start, res, err) }()

	stage := time.Now()
	src, err := p.cfg.Loader.Resolve(ctx, source)
	if err != nil {
		return nil, err
	}
	p.cfg.Metrics.observeStage("resolve", stage)

	skip := src.Seq.Animated() && p.cfg.Policy.SkipAnimatedShrink(src.Size)
	if skip {
		p.log.Info("animated source above shrink ceiling, keeping dimensions",
			zap.String("source", source),
			zap.Int64("bytes", src.Size),
			zap.Int64("ceiling", p.cfg.Policy.MaxAnimatedShrinkBytes))
	}

	stage = time.Now()
	norm := normalize.Normalize(src.Seq, p.cfg.Policy, normalize.Options{SkipResize: skip})
	p.cfg.Metrics.observeStage("normalize", stage)

	// base is what the thumbnail shows: the normalized image, captioned
	// when captions are requested.
	base := norm
	if len(caps) > 0 {
		if base, err = p.caption(source, norm, caps); err != nil {
			return nil, err
		}
	}

	stage = time.Now()
	th := thumb.Fill(base, p.cfg.Policy.ThumbSide)
	p.cfg.Metrics.observeStage("thumbnail", stage)

	stage = time.Now()
	var main *frames.Sequence
	if len(caps) > 0 && p.cfg.CaptionAfterWatermark {
		main = watermark.Apply(norm, p.cfg.Watermark)
		if main, err = p.caption(source, main, caps); err != nil {
			return nil, err
		}
	} else {
		main = watermark.Apply(base, p.cfg.Watermark)
	}
	p.cfg.Metrics.observeStage("watermark", stage)

	stage = time.Now()
	mainData, enc, err := p.cfg.Encoders.Encode(main, p.cfg.Policy.Quality)
	if err != nil {
		return nil, fmt.Errorf("%s: main: %w", source, err)
	}
	thumbData, _, err := p.cfg.Encoders.Encode(th, p.cfg.Policy.Quality)
	if err != nil {
		return nil, fmt.Errorf("%s: thumbnail: %w", source, err)
	}
	p.cfg.Metrics.observeStage("encode", stage)

	res = &Result{
		ID:            hasher.ContentHash(mainData, 16),
		Main:          mainData,
		Width:         main.Width(),
		Height:        main.Height(),
		ContentType:   enc.ContentType(),
		Extension:     enc.Extension(),
		Thumb:         thumbData,
		ThumbWidth:    th.Width(),
		ThumbHeight:   th.Height(),
		Animated:      main.Animated(),
		Frames:        len(main.Frames),
		SourceFormat:  src.Seq.Format,
		SourceSize:    src.Size,
		ShrinkSkipped: skip,
	}
	p.log.Debug("processed",
		zap.String("source", source),
		zap.String("id", res.ID),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Int("frames", res.Frames),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

func (p *Processor) caption(source string, seq *frames.Sequence, caps []caption.Caption) (*frames.Sequence, error) {
	stage := time.Now()
	out, err := p.cfg.Captions.Render(seq, caps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	p.cfg.Metrics.observeStage("caption", stage)
	return out, nil
}
