// Package frames models decoded images as explicit frame sequences. A
// static image is a sequence of one frame; an animation carries one
// fully composited frame per display step along with its delay.
package frames

import (
	"image"
)

// Frame is one bitmap and its display duration.
type Frame struct {
	Image *image.NRGBA
	// Delay is the display time in hundredths of a second; 0 for static
	// images.
	Delay int
}

// Sequence is an ordered list of frames of identical size.
type Sequence struct {
	Frames []Frame
	// Format is the name of the source encoding ("gif", "jpeg", "png",
	// "webp", "bmp", "tiff").
	Format string
	// LoopCount follows image/gif semantics: 0 loops forever.
	LoopCount int
	// Orientation is the EXIF orientation tag (1-8); 1 is upright.
	Orientation int
	// Exif holds the raw EXIF block when the source had one.
	Exif []byte
}

// Single wraps one image as a static sequence.
func Single(img *image.NRGBA, format string) *Sequence {
	return &Sequence{
		Frames:      []Frame{{Image: img}},
		Format:      format,
		Orientation: 1,
	}
}

// Width returns the width of the first frame.
func (s *Sequence) Width() int {
	if len(s.Frames) == 0 {
		return 0
	}
	return s.Frames[0].Image.Bounds().Dx()
}

// Height returns the height of the first frame.
func (s *Sequence) Height() int {
	if len(s.Frames) == 0 {
		return 0
	}
	return s.Frames[0].Image.Bounds().Dy()
}

// Animated reports whether the sequence has more than one frame.
func (s *Sequence) Animated() bool { return len(s.Frames) > 1 }

// Delays returns the per-frame delays in order.
func (s *Sequence) Delays() []int {
	out := make([]int, len(s.Frames))
	for i, f := range s.Frames {
		out[i] = f.Delay
	}
	return out
}

// First returns the first frame as a static sequence, used when only one
// frame of an animation matters.
func (s *Sequence) First() *Sequence {
	out := s.withFrames(1)
	out.Frames = append(out.Frames, Frame{Image: s.Frames[0].Image})
	return out
}

// Map applies fn to every frame independently and returns a new sequence
// with the same delays and metadata. The receiver is not modified.
func (s *Sequence) Map(fn func(*image.NRGBA) *image.NRGBA) *Sequence {
	out := s.withFrames(len(s.Frames))
	for _, f := range s.Frames {
		out.Frames = append(out.Frames, Frame{Image: fn(f.Image), Delay: f.Delay})
	}
	return out
}

func (s *Sequence) withFrames(n int) *Sequence {
	return &Sequence{
		Frames:      make([]Frame, 0, n),
		Format:      s.Format,
		LoopCount:   s.LoopCount,
		Orientation: s.Orientation,
		Exif:        s.Exif,
	}
}
