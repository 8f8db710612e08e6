package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"

	"github.com/AnyUserName/memecap/internal/frames"
)

// gifPalette reserves index 0 for full transparency.
var (
	gifPalette = append(color.Palette{color.Transparent}, palette.Plan9[:255]...)
	opaque     = gifPalette[1:]
)

// GIFEncoder encodes every frame, keeping delays and the loop count.
// Frames are complete images, so each one clears to transparent when
// replaced.
type GIFEncoder struct{}

func (e *GIFEncoder) Format() string      { return "gif" }
func (e *GIFEncoder) Extension() string   { return "gif" }
func (e *GIFEncoder) ContentType() string { return "image/gif" }
func (e *GIFEncoder) Available() bool     { return true }

func (e *GIFEncoder) Encode(seq *frames.Sequence, _ int) ([]byte, error) {
	g := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(seq.Frames)),
		Delay:     make([]int, 0, len(seq.Frames)),
		Disposal:  make([]byte, 0, len(seq.Frames)),
		LoopCount: seq.LoopCount,
	}
	for _, f := range seq.Frames {
		g.Image = append(g.Image, quantize(f.Image))
		g.Delay = append(g.Delay, f.Delay)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// quantize dithers img onto gifPalette. Pixels below half opacity become
// the transparent index.
func quantize(img *image.NRGBA) *image.Paletted {
	b := img.Bounds()
	pm := image.NewPaletted(b, gifPalette)
	draw.FloydSteinberg.Draw(pm, b, img, b.Min)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			switch {
			case c.A < 0x80:
				pm.SetColorIndex(x, y, 0)
			case pm.ColorIndexAt(x, y) == 0:
				c.A = 0xff
				pm.SetColorIndex(x, y, uint8(opaque.Index(c)+1))
			}
		}
	}
	return pm
}
