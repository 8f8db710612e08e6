package composite

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/AnyUserName/memecap/internal/frames"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// ErrAlignment reports a composite that cannot be stitched, such as one
// with an empty part or a zero-sized sub-image.
var ErrAlignment = errors.New("composite alignment")

// Resolved is a decoded source ready for normalization.
type Resolved struct {
	Seq  *frames.Sequence
	Spec Spec
	// Size is the encoded byte size of the source. For composites it is
	// the sum of the parts.
	Size int64
}

// Loader fetches and decodes source references.
type Loader struct {
	fetch Fetcher
	log   *zap.Logger
}

// NewLoader returns a loader that retrieves locations with fetch.
func NewLoader(fetch Fetcher, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{fetch: fetch, log: log}
}

// Resolve fetches and decodes ref. A single location keeps all of its
// frames. Composites use the first frame of each part, shrink every part
// to the smallest cross-axis extent and stitch them into one frame. Any
// failing part fails the whole composite.
func (l *Loader) Resolve(ctx context.Context, ref string) (*Resolved, error) {
	spec := Parse(ref)
	if spec.Kind == Single {
		return l.single(ctx, spec)
	}

	l.log.Debug("resolving composite",
		zap.Stringer("kind", spec.Kind),
		zap.Int("parts", len(spec.Locations)))

	parts := make([]*image.NRGBA, 0, len(spec.Locations))
	var (
		size   int64
		format string
	)
	for i, loc := range spec.Locations {
		if loc == "" {
			return nil, fmt.Errorf("%w: part %d of %s composite is empty", ErrAlignment, i, spec.Kind)
		}
		// Parts may be composites of their own, e.g. a horizontal row
		// inside a vertical stack.
		sub, err := l.Resolve(ctx, loc)
		if err != nil {
			return nil, err
		}
		if format == "" {
			format = sub.Seq.Format
		}
		size += sub.Size
		parts = append(parts, sub.Seq.Frames[0].Image)
	}

	img, err := Stack(parts, spec.Kind)
	if err != nil {
		return nil, err
	}
	return &Resolved{Seq: frames.Single(img, format), Spec: spec, Size: size}, nil
}

func (l *Loader) single(ctx context.Context, spec Spec) (*Resolved, error) {
	loc := spec.Locations[0]
	if loc == "" {
		return nil, &FetchError{Location: loc, Err: errors.New("empty location")}
	}

	data, err := l.fetch.Fetch(ctx, loc)
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{Location: loc, Err: err}
		}
		return nil, err
	}

	seq, err := frames.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	l.log.Debug("fetched source",
		zap.String("location", loc),
		zap.String("format", seq.Format),
		zap.Int("bytes", len(data)),
		zap.Int("frames", len(seq.Frames)))
	return &Resolved{Seq: seq, Spec: spec, Size: int64(len(data))}, nil
}

// Stack concatenates images along the stack axis of kind. Parts larger
// than the smallest cross-axis extent are scaled down to it, preserving
// aspect ratio; smaller parts are never enlarged.
func Stack(parts []*image.NRGBA, kind Kind) (*image.NRGBA, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no images to stack", ErrAlignment)
	}
	if kind != Vertical && kind != Horizontal {
		return nil, fmt.Errorf("%w: cannot stack %s", ErrAlignment, kind)
	}

	cross := func(img *image.NRGBA) int {
		if kind == Vertical {
			return img.Bounds().Dx()
		}
		return img.Bounds().Dy()
	}

	smallest := 0
	for i, p := range parts {
		if p.Bounds().Empty() {
			return nil, fmt.Errorf("%w: part %d has no pixels", ErrAlignment, i)
		}
		if i == 0 || cross(p) < smallest {
			smallest = cross(p)
		}
	}

	aligned := make([]*image.NRGBA, len(parts))
	total := 0
	for i, p := range parts {
		if cross(p) > smallest {
			if kind == Vertical {
				p = imaging.Resize(p, smallest, 0, imaging.Lanczos)
			} else {
				p = imaging.Resize(p, 0, smallest, imaging.Lanczos)
			}
		}
		aligned[i] = p
		if kind == Vertical {
			total += p.Bounds().Dy()
		} else {
			total += p.Bounds().Dx()
		}
	}

	var out *image.NRGBA
	if kind == Vertical {
		out = image.NewNRGBA(image.Rect(0, 0, smallest, total))
	} else {
		out = image.NewNRGBA(image.Rect(0, 0, total, smallest))
	}

	offset := 0
	for _, p := range aligned {
		b := p.Bounds()
		var at image.Point
		if kind == Vertical {
			at = image.Pt(0, offset)
			offset += b.Dy()
		} else {
			at = image.Pt(offset, 0)
			offset += b.Dx()
		}
		out = imaging.Paste(out, p, at)
	}
	return out, nil
}
