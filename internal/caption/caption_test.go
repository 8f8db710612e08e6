package caption

import (
	"image"
	"image/color"
	"testing"

	"github.com/AnyUserName/memecap/internal/fixture"
	"github.com/AnyUserName/memecap/internal/fonts"
	"github.com/AnyUserName/memecap/internal/frames"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/image/font/gofont/goregular"
)

func goCatalog(t *testing.T) *fonts.Catalog {
	t.Helper()
	f, err := fonts.New("goregular.ttf", goregular.TTF)
	require.NoError(t, err)
	return fonts.FromFonts(f)
}

func countWhite(img *image.NRGBA, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.R > 200 && c.G > 200 && c.B > 200 {
				n++
			}
		}
	}
	return n
}

func TestCaption_Box(t *testing.T) {
	c := Caption{X: 0.1, Y: 0.5, Width: 0.8, Height: 0.25}
	assert.Equal(t, image.Rect(20, 50, 180, 75), c.Box(200, 100))

	over := Caption{X: 0.5, Y: 0.5, Width: 1, Height: 1}
	assert.Equal(t, image.Rect(100, 50, 200, 100), over.Box(200, 100))
}

func TestRender_DrawsInsideBox(t *testing.T) {
	r := NewRenderer(goCatalog(t), zaptest.NewLogger(t))
	base := fixture.Solid(300, 200, color.NRGBA{0, 0, 0, 255})
	seq := frames.Single(base, "png")

	c := Caption{Text: "HELLO WORLD", X: 0.05, Y: 0.05, Width: 0.9, Height: 0.3}
	out, err := r.Render(seq, []Caption{c})
	require.NoError(t, err)

	img := out.Frames[0].Image
	assert.Equal(t, base.Bounds(), img.Bounds())

	box := c.Box(300, 200)
	assert.Greater(t, countWhite(img, box), 50, "text drawn in box")
	assert.Zero(t, countWhite(img, image.Rect(0, 120, 300, 200)), "nothing below box")
	assert.Zero(t, countWhite(base, base.Bounds()), "source untouched")
}

func TestFit_WrapsLongText(t *testing.T) {
	f, err := fonts.New("go.ttf", goregular.TTF)
	require.NoError(t, err)
	tt, err := f.Truetype()
	require.NoError(t, err)

	l := fit(tt, "one two three four five six seven eight", image.Rect(0, 0, 100, 200))
	assert.True(t, l.fits())
	assert.Greater(t, len(l.lines), 1)
	for _, w := range l.width {
		assert.LessOrEqual(t, w, 100)
	}
}

func TestRender_AnimatedKeepsFrames(t *testing.T) {
	seq, err := frames.Decode(fixture.AnimatedGIF(120, 80, 10, 20, 10))
	require.NoError(t, err)

	r := NewRenderer(goCatalog(t), nil)
	out, err := r.Render(seq, []Caption{{Text: "hi", X: 0, Y: 0.6, Width: 1, Height: 0.4}})
	require.NoError(t, err)

	assert.Equal(t, []int{10, 20, 10}, out.Delays())
	for _, f := range out.Frames {
		assert.Greater(t, countWhite(f.Image, image.Rect(0, 48, 120, 80)), 0)
	}
}

func TestRender_SkipsBlank(t *testing.T) {
	seq := frames.Single(fixture.Gradient(50, 50), "png")
	out, err := NewRenderer(goCatalog(t), nil).Render(seq, []Caption{{Text: "  \n ", Width: 1, Height: 1}})
	require.NoError(t, err)
	assert.Same(t, seq, out)
}

func TestRender_NoFonts(t *testing.T) {
	seq := frames.Single(fixture.Gradient(50, 50), "png")
	_, err := NewRenderer(fonts.FromFonts(), nil).Render(seq, []Caption{{Text: "x", Width: 1, Height: 1}})
	assert.ErrorIs(t, err, fonts.ErrNoFonts)
}

func TestParse(t *testing.T) {
	top, err := Parse("one does not simply", 0)
	require.NoError(t, err)
	assert.Equal(t, "one does not simply", top.Text)
	assert.Zero(t, top.Y)

	bottom, err := Parse("walk into mordor", 1)
	require.NoError(t, err)
	assert.Equal(t, 0.75, bottom.Y)

	third, err := Parse("again", 5)
	require.NoError(t, err)
	assert.Equal(t, bottom.Y, third.Y)

	boxed, err := Parse("hi@0.1, 0.2,0.5,0.3", 0)
	require.NoError(t, err)
	assert.Equal(t, Caption{Text: "hi", X: 0.1, Y: 0.2, Width: 0.5, Height: 0.3}, boxed)

	_, err = Parse("x@0,0,1.5,1", 0)
	assert.Error(t, err, "box value out of range")
}

func TestParse_AtSignInText(t *testing.T) {
	plain, err := Parse("meet me @ noon", 1)
	require.NoError(t, err)
	assert.Equal(t, "meet me @ noon", plain.Text)
	assert.Equal(t, 0.75, plain.Y, "default box")

	handle, err := Parse("ping a@b.com@0,0,1,0.2", 0)
	require.NoError(t, err)
	assert.Equal(t, Caption{Text: "ping a@b.com", X: 0, Y: 0, Width: 1, Height: 0.2}, handle)

	for _, s := range []string{"x@1,2,3", "x@a,0,0,0", "@user"} {
		c, err := Parse(s, 0)
		require.NoError(t, err, s)
		assert.Equal(t, s, c.Text, "not a box, kept as text")
	}
}
