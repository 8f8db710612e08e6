package frames

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// UnsupportedFormatError reports data that no registered decoder accepts
// or that a decoder rejected as corrupt.
type UnsupportedFormatError struct {
	Format string // empty when the format could not be sniffed
	Err    error
}

func (e *UnsupportedFormatError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("unsupported image format: %v", e.Err)
	}
	return fmt.Sprintf("corrupt %s image: %v", e.Format, e.Err)
}

func (e *UnsupportedFormatError) Unwrap() error { return e.Err }

// Decode turns an encoded image into a frame sequence. GIFs keep every
// frame, composited onto the logical screen so each frame is complete,
// with delays preserved. Alpha is kept for every format that has it.
func Decode(data []byte) (*Sequence, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &UnsupportedFormatError{Err: err}
	}

	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, &UnsupportedFormatError{Format: format, Err: err}
		}
		return fromGIF(g), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &UnsupportedFormatError{Format: format, Err: err}
	}
	seq := Single(imaging.Clone(img), format)

	if format == "jpeg" || format == "tiff" {
		seq.Orientation, seq.Exif = readOrientation(data)
	}
	return seq, nil
}

// readOrientation returns 1 when the image has no usable EXIF block;
// most images carry none.
func readOrientation(data []byte) (int, []byte) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1, nil
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1, x.Raw
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1, x.Raw
	}
	return o, x.Raw
}

// fromGIF composites each GIF frame onto a canvas, applying the previous
// frame's disposal method first.
func fromGIF(g *gif.GIF) *Sequence {
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		for _, pm := range g.Image {
			screen = screen.Union(pm.Bounds())
		}
	}

	seq := &Sequence{
		Frames:      make([]Frame, 0, len(g.Image)),
		Format:      "gif",
		LoopCount:   g.LoopCount,
		Orientation: 1,
	}

	canvas := image.NewNRGBA(screen)
	var saved *image.NRGBA
	for i, pm := range g.Image {
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			saved = imaging.Clone(canvas)
		}

		draw.Draw(canvas, pm.Bounds(), pm, pm.Bounds().Min, draw.Over)

		delay := 0
		if i < len(g.Delay) {
			delay = g.Delay[i]
		}
		seq.Frames = append(seq.Frames, Frame{Image: imaging.Clone(canvas), Delay: delay})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, pm.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			if saved != nil {
				canvas = saved
			}
		}
	}
	return seq
}
