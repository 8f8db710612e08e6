// Package watermark composites a fixed mark onto every frame of an image.
package watermark

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"sync"

	"github.com/AnyUserName/memecap/internal/frames"
	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/math/fixed"
)

// Watermark is a single immutable image, safe for concurrent use.
type Watermark struct {
	img *image.NRGBA
}

// New wraps img as a watermark.
func New(img image.Image) *Watermark {
	return &Watermark{img: imaging.Clone(img)}
}

// Load decodes the watermark at path. Only the first frame is used.
func Load(path string) (*Watermark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watermark: %w", err)
	}
	seq, err := frames.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode watermark: %w", err)
	}
	return &Watermark{img: seq.Frames[0].Image}, nil
}

// Size returns the watermark dimensions.
func (w *Watermark) Size() image.Point {
	return w.img.Bounds().Size()
}

// Apply overlays wm on every frame, anchored to the bottom-left corner.
// The watermark is never scaled; on small frames it is clipped.
func Apply(seq *frames.Sequence, wm *Watermark) *frames.Sequence {
	return seq.Map(func(img *image.NRGBA) *image.NRGBA {
		pos := image.Pt(0, img.Bounds().Dy()-wm.img.Bounds().Dy())
		return imaging.Overlay(img, wm.img, pos, 1.0)
	})
}

const defaultText = "memecap"

var (
	defaultOnce sync.Once
	defaultMark *Watermark
)

// Default returns the built-in text watermark, rendered on first use.
func Default() *Watermark {
	defaultOnce.Do(func() {
		defaultMark = New(renderText(defaultText, 12))
	})
	return defaultMark
}

func renderText(text string, size float64) *image.NRGBA {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		// The font is compiled in; failure here is a build defect.
		panic(fmt.Sprintf("watermark: parse embedded font: %v", err))
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	defer face.Close()

	const pad = 3
	m := face.Metrics()
	w := font.MeasureString(face, text).Ceil() + 2*pad
	h := (m.Ascent + m.Descent).Ceil() + 2*pad

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{0, 0, 0, 96}), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{255, 255, 255, 220}),
		Face: face,
		Dot:  fixed.P(pad, pad+m.Ascent.Ceil()),
	}
	d.DrawString(text)
	return img
}
