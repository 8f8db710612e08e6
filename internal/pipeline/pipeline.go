// Package pipeline turns source references into watermarked main images
// and thumbnails, one at a time (Processor) or for a whole directory
// (Batch).
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/AnyUserName/memecap/internal/hasher"
	"github.com/AnyUserName/memecap/internal/manifest"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// BatchConfig holds all parameters for a batch run.
type BatchConfig struct {
	InputDir  string
	OutputDir string
	Workers   int
	// Sources overrides the directory scan when set.
	Sources []Source
	// WatermarkName is recorded in the manifest.
	WatermarkName string
}

// Batch processes many sources with a bounded number of workers.
type Batch struct {
	cfg  BatchConfig
	proc *Processor
	log  *zap.Logger
}

// NewBatch creates a configured batch.
func NewBatch(proc *Processor, cfg BatchConfig, log *zap.Logger) *Batch {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Batch{cfg: cfg, proc: proc, log: log}
}

type batchResult struct {
	key   string
	image manifest.Image
	err   error
}

// Run processes every source, writes the outputs and returns the
// manifest. Individual failures are recorded in the manifest; Run fails
// only when every source failed or ctx was cancelled.
func (b *Batch) Run(ctx context.Context) (*manifest.Manifest, error) {
	b.log.Debug(b.proc.Encoders().String())

	sources := b.cfg.Sources
	if sources == nil {
		var err error
		sources, err = ScanImages(b.cfg.InputDir, b.cfg.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", b.cfg.InputDir)
	}
	b.log.Info("found sources", zap.Int("count", len(sources)), zap.Int("workers", b.cfg.Workers))

	results := make([]batchResult, len(sources))
	sem := semaphore.NewWeighted(int64(b.cfg.Workers))
	var wg sync.WaitGroup

	for i, src := range sources {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			defer sem.Release(1)

			b.log.Debug("processing", zap.String("key", s.Key))
			results[idx] = b.process(ctx, s)
		}(i, src)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := manifest.New(b.proc.Policy().Name)
	var failed int
	for _, r := range results {
		if r.err != nil {
			b.log.Error("source failed", zap.String("key", r.key), zap.Error(r.err))
			m.AddFailure(r.key, r.err)
			failed++
			continue
		}
		m.Images[r.key] = r.image
	}
	if failed == len(sources) {
		return nil, fmt.Errorf("all %d images failed to process", failed)
	}
	if failed > 0 {
		b.log.Warn("batch had errors", zap.Int("failed", failed), zap.Int("total", len(sources)))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers:   b.cfg.Workers,
		Encoders:  b.proc.Encoders().String(),
		Watermark: b.cfg.WatermarkName,
	}
	m.ComputeStats()
	return m, nil
}

func (b *Batch) process(ctx context.Context, s Source) batchResult {
	res, err := b.proc.Process(ctx, s.Location)
	if err != nil {
		return batchResult{key: s.Key, err: err}
	}
	img, err := WriteResult(b.cfg.OutputDir, s, res)
	if err != nil {
		return batchResult{key: s.Key, err: err}
	}
	b.log.Debug("done", zap.String("key", s.Key), zap.String("main", img.Main.Path))
	return batchResult{key: s.Key, image: img}
}

// WriteResult writes the main image and thumbnail of res under outDir,
// content-addressed as key.hash.ext and key.thumb.hash.ext, and returns
// the manifest entry.
func WriteResult(outDir string, s Source, res *Result) (manifest.Image, error) {
	keyDir := filepath.Dir(filepath.FromSlash(s.Key))
	if err := os.MkdirAll(filepath.Join(outDir, keyDir), 0o755); err != nil {
		return manifest.Image{}, err
	}

	thumbHash := hasher.ContentHash(res.Thumb, 16)
	base := filepath.Base(s.Key)
	mainRel := filepath.ToSlash(filepath.Join(keyDir, fmt.Sprintf("%s.%s.%s", base, res.ID[:8], res.Extension)))
	thumbRel := filepath.ToSlash(filepath.Join(keyDir, fmt.Sprintf("%s.thumb.%s.%s", base, thumbHash[:8], res.Extension)))

	for rel, data := range map[string][]byte{mainRel: res.Main, thumbRel: res.Thumb} {
		if err := os.WriteFile(filepath.Join(outDir, rel), data, 0o644); err != nil {
			return manifest.Image{}, fmt.Errorf("write %s: %w", rel, err)
		}
	}

	return manifest.Image{
		Source:        manifest.SourceInfo{Location: s.Location, Format: res.SourceFormat, Size: res.SourceSize},
		ID:            res.ID,
		Animated:      res.Animated,
		Frames:        res.Frames,
		ShrinkSkipped: res.ShrinkSkipped,
		Main: manifest.Output{
			ContentType: res.ContentType,
			Width:       res.Width,
			Height:      res.Height,
			Size:        int64(len(res.Main)),
			Hash:        res.ID,
			Path:        mainRel,
		},
		Thumb: manifest.Output{
			ContentType: res.ContentType,
			Width:       res.ThumbWidth,
			Height:      res.ThumbHeight,
			Size:        int64(len(res.Thumb)),
			Hash:        thumbHash,
			Path:        thumbRel,
		},
	}, nil
}
