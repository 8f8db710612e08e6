package thumb

import (
	"image/color"
	"testing"

	"github.com/AnyUserName/memecap/internal/fixture"
	"github.com/AnyUserName/memecap/internal/frames"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFill_AlwaysSquare(t *testing.T) {
	for _, dims := range [][2]int{{800, 600}, {600, 800}, {128, 128}, {50, 20}, {1000, 3}, {3, 1000}} {
		seq := frames.Single(fixture.Gradient(dims[0], dims[1]), "png")
		out := Fill(seq, 128)
		assert.Equal(t, 128, out.Width(), "%v", dims)
		assert.Equal(t, 128, out.Height(), "%v", dims)
	}
}

func TestFill_CropsCenter(t *testing.T) {
	// Red left third, green middle, blue right third.
	img := fixture.Solid(300, 100, color.NRGBA{0, 255, 0, 255})
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
			img.SetNRGBA(x+200, y, color.NRGBA{0, 0, 255, 255})
		}
	}

	out := Fill(frames.Single(img, "png"), 50)
	c := out.Frames[0].Image.NRGBAAt(25, 25)
	assert.Greater(t, c.G, uint8(250))
	assert.Less(t, c.R, uint8(5))
	assert.Less(t, c.B, uint8(5))
}

func TestFill_AnimatedDelays(t *testing.T) {
	seq, err := frames.Decode(fixture.AnimatedGIF(200, 100, 10, 20, 10))
	require.NoError(t, err)

	out := Fill(seq, 64)
	require.Len(t, out.Frames, 3)
	assert.Equal(t, []int{10, 20, 10}, out.Delays())
	for _, f := range out.Frames {
		assert.Equal(t, 64, f.Image.Bounds().Dx())
		assert.Equal(t, 64, f.Image.Bounds().Dy())
	}
}
