package watermark

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/memecap/internal/encoder"
	"github.com/AnyUserName/memecap/internal/fixture"
	"github.com/AnyUserName/memecap/internal/frames"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_BottomLeftOverComposite(t *testing.T) {
	mark := fixture.Solid(10, 4, color.NRGBA{255, 255, 255, 255})
	mark.SetNRGBA(9, 3, color.NRGBA{0, 0, 0, 0}) // fully transparent corner
	wm := New(mark)

	base := fixture.Solid(40, 30, color.NRGBA{0, 0, 255, 255})
	out := Apply(frames.Single(base, "png"), wm)

	img := out.Frames[0].Image
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(0, 29))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(0, 26))
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, img.NRGBAAt(0, 25), "above the mark")
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, img.NRGBAAt(10, 29), "right of the mark")
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, img.NRGBAAt(9, 29), "transparent watermark pixel")
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, base.NRGBAAt(0, 29), "source untouched")
}

func TestApply_ClipsOnSmallTarget(t *testing.T) {
	wm := New(fixture.Solid(50, 50, color.NRGBA{255, 0, 0, 255}))
	out := Apply(frames.Single(fixture.Gradient(20, 10), "png"), wm)

	assert.Equal(t, 20, out.Width())
	assert.Equal(t, 10, out.Height())
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, out.Frames[0].Image.NRGBAAt(19, 0))
}

func TestApply_AnimatedRoundTrip(t *testing.T) {
	seq, err := frames.Decode(fixture.AnimatedGIF(60, 40, 10, 20, 10))
	require.NoError(t, err)

	out := Apply(seq, Default())
	data, enc, err := encoder.NewRegistry().Encode(out, 0)
	require.NoError(t, err)
	assert.Equal(t, "gif", enc.Format())

	back, err := frames.Decode(data)
	require.NoError(t, err)
	assert.Len(t, back.Frames, 3)
	assert.Equal(t, []int{10, 20, 10}, back.Delays())
	assert.Equal(t, 60, back.Width())
	assert.Equal(t, 40, back.Height())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wm.png")
	require.NoError(t, os.WriteFile(path, fixture.PNG(fixture.AlphaGradient(12, 6)), 0o644))

	wm, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(12, 6), wm.Size())

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	wm := Default()
	assert.Same(t, wm, Default())
	assert.Greater(t, wm.Size().X, wm.Size().Y)
}
