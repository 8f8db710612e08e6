// Package caption draws caption text onto every frame of an image. Text
// is placed inside a caller-supplied box, word-wrapped, sized to the
// largest font that fits, centered and outlined.
package caption

import (
	"fmt"
	"image"
	"strings"

	"github.com/AnyUserName/memecap/internal/fonts"
	"github.com/AnyUserName/memecap/internal/frames"
	"github.com/disintegration/imaging"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
)

const (
	dpi         = 72.0
	minFontSize = 6
)

var (
	fillColor    = image.White
	outlineColor = image.Black
)

// Caption is one text block. The box is given as fractions of the image
// size, measured from the top-left corner.
type Caption struct {
	Text   string
	X, Y   float64
	Width  float64
	Height float64
}

// Box returns the caption box in pixels for a w×h image.
func (c Caption) Box(w, h int) image.Rectangle {
	x0 := int(c.X * float64(w))
	y0 := int(c.Y * float64(h))
	box := image.Rect(x0, y0, x0+int(c.Width*float64(w)), y0+int(c.Height*float64(h)))
	return box.Intersect(image.Rect(0, 0, w, h))
}

// FontSelector picks the font for a caption text.
type FontSelector interface {
	Select(text string) (*fonts.Font, error)
}

// Renderer draws captions with fonts from a selector.
type Renderer struct {
	fonts FontSelector
	log   *zap.Logger
}

// NewRenderer returns a renderer backed by sel.
func NewRenderer(sel FontSelector, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{fonts: sel, log: log}
}

// layout is a caption fitted to its box; it is the same for every frame.
type layout struct {
	font   *truetype.Font
	size   float64
	box    image.Rectangle
	lines  []string
	width  []int
	lineH  int
	ascent int
}

// Render returns seq with every caption drawn on every frame. Captions
// with blank text or an empty box are skipped.
func (r *Renderer) Render(seq *frames.Sequence, caps []Caption) (*frames.Sequence, error) {
	var layouts []layout
	for i, c := range caps {
		text := fonts.CollapseSpace(c.Text)
		box := c.Box(seq.Width(), seq.Height())
		if text == "" || box.Empty() {
			continue
		}

		f, err := r.fonts.Select(text)
		if err != nil {
			return nil, fmt.Errorf("caption %d: %w", i, err)
		}
		tt, err := f.Truetype()
		if err != nil {
			return nil, fmt.Errorf("caption %d: %w", i, err)
		}

		l := fit(tt, text, box)
		r.log.Debug("caption layout",
			zap.Int("index", i),
			zap.String("font", f.Name),
			zap.Float64("size", l.size),
			zap.Int("lines", len(l.lines)))
		layouts = append(layouts, l)
	}
	if len(layouts) == 0 {
		return seq, nil
	}

	var drawErr error
	out := seq.Map(func(img *image.NRGBA) *image.NRGBA {
		dst := imaging.Clone(img)
		for _, l := range layouts {
			if err := l.draw(dst); err != nil && drawErr == nil {
				drawErr = err
			}
		}
		return dst
	})
	if drawErr != nil {
		return nil, fmt.Errorf("draw caption: %w", drawErr)
	}
	return out, nil
}

// fit finds the largest font size at which the wrapped text fits the box.
func fit(tt *truetype.Font, text string, box image.Rectangle) layout {
	words := strings.Fields(text)

	lo, hi := minFontSize, max(box.Dy(), minFontSize)
	best := measure(tt, float64(lo), words, box)
	for lo <= hi {
		mid := (lo + hi) / 2
		l := measure(tt, float64(mid), words, box)
		if l.fits() {
			best = l
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}

func measure(tt *truetype.Font, size float64, words []string, box image.Rectangle) layout {
	face := truetype.NewFace(tt, &truetype.Options{Size: size, DPI: dpi, Hinting: font.HintingFull})
	defer face.Close()

	l := layout{font: tt, size: size, box: box}
	m := face.Metrics()
	l.lineH = m.Height.Ceil()
	l.ascent = m.Ascent.Ceil()

	var line string
	for _, w := range words {
		candidate := w
		if line != "" {
			candidate = line + " " + w
		}
		if line != "" && font.MeasureString(face, candidate).Ceil() > box.Dx() {
			l.lines = append(l.lines, line)
			line = w
			continue
		}
		line = candidate
	}
	if line != "" {
		l.lines = append(l.lines, line)
	}
	for _, s := range l.lines {
		l.width = append(l.width, font.MeasureString(face, s).Ceil())
	}
	return l
}

func (l layout) fits() bool {
	if l.lineH*len(l.lines) > l.box.Dy() {
		return false
	}
	for _, w := range l.width {
		if w > l.box.Dx() {
			return false
		}
	}
	return true
}

// draw renders the outline first and the fill on top.
func (l layout) draw(dst *image.NRGBA) error {
	c := freetype.NewContext()
	c.SetDPI(dpi)
	c.SetFont(l.font)
	c.SetFontSize(l.size)
	c.SetClip(dst.Bounds())
	c.SetDst(dst)
	c.SetHinting(font.HintingFull)

	thickness := max(1, int(l.size/24))
	top := l.box.Min.Y + (l.box.Dy()-l.lineH*len(l.lines))/2

	for pass, src := range []*image.Uniform{outlineColor, fillColor} {
		c.SetSrc(src)
		for i, line := range l.lines {
			x := l.box.Min.X + (l.box.Dx()-l.width[i])/2
			y := top + i*l.lineH + l.ascent

			offsets := []image.Point{{}}
			if pass == 0 {
				offsets = outlineOffsets(thickness)
			}
			for _, o := range offsets {
				if _, err := c.DrawString(line, freetype.Pt(x+o.X, y+o.Y)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func outlineOffsets(t int) []image.Point {
	return []image.Point{
		{-t, -t}, {0, -t}, {t, -t},
		{-t, 0}, {t, 0},
		{-t, t}, {0, t}, {t, t},
	}
}
