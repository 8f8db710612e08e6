// Package normalize brings decoded sources into a canonical shape:
// upright, metadata-free and within the configured size ceiling.
//
// Orient, Strip and the per-frame resize are frame-independent. The
// target size is computed once per sequence so every frame ends up with
// identical dimensions.
package normalize

import (
	"image"

	"github.com/AnyUserName/memecap/internal/frames"
	"github.com/AnyUserName/memecap/internal/profile"
	"github.com/disintegration/imaging"
)

// Options adjusts a single Normalize call.
type Options struct {
	// SkipResize keeps the source dimensions even when they exceed the
	// policy, used for animations above the shrink ceiling.
	SkipResize bool
}

// Normalize orients, strips and, unless skipped, shrinks seq so its
// longer side is at most p.MaxSourceSide. Sequences already within the
// limit keep their dimensions.
func Normalize(seq *frames.Sequence, p profile.Policy, opts Options) *frames.Sequence {
	out := Strip(Orient(seq))
	if !opts.SkipResize && p.ShouldShrink(out.Width(), out.Height()) {
		out = FitSide(out, p.MaxSourceSide)
	}
	return out
}

// orientations maps EXIF orientation values to the transform that makes
// the image upright.
var orientations = map[int]func(image.Image) *image.NRGBA{
	2: imaging.FlipH,
	3: imaging.Rotate180,
	4: imaging.FlipV,
	5: imaging.Transpose,
	6: imaging.Rotate270,
	7: imaging.Transverse,
	8: imaging.Rotate90,
}

// Orient applies the sequence's orientation tag to the pixels of every
// frame and resets the tag to upright.
func Orient(seq *frames.Sequence) *frames.Sequence {
	fix, ok := orientations[seq.Orientation]
	if !ok {
		return seq
	}
	out := seq.Map(func(img *image.NRGBA) *image.NRGBA { return fix(img) })
	out.Orientation = 1
	return out
}

// Strip drops all non-pixel metadata. The encoders never write metadata
// back, so clearing it here is what keeps outputs minimal.
func Strip(seq *frames.Sequence) *frames.Sequence {
	out := *seq
	out.Exif = nil
	out.Orientation = 1
	return &out
}

// FitSide scales every frame so the longer side equals side.
func FitSide(seq *frames.Sequence, side int) *frames.Sequence {
	w, h := profile.Fit(seq.Width(), seq.Height(), side)
	if w == seq.Width() && h == seq.Height() {
		return seq
	}
	return seq.Map(func(img *image.NRGBA) *image.NRGBA {
		return imaging.Resize(img, w, h, imaging.Lanczos)
	})
}

// Enlarge scales small sequences up to p.EnlargedSide. It is a policy
// hook for callers; Normalize never calls it.
func Enlarge(seq *frames.Sequence, p profile.Policy) *frames.Sequence {
	if !p.ShouldEnlarge(seq.Width(), seq.Height()) {
		return seq
	}
	return FitSide(seq, p.EnlargedSide)
}
