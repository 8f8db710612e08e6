// Package thumb produces fixed-size square thumbnails.
package thumb

import (
	"image"

	"github.com/AnyUserName/memecap/internal/frames"
	"github.com/disintegration/imaging"
)

// Fill scales each frame so its shorter side equals side, then crops the
// longer side around the center, giving exactly side × side frames.
// Frame delays carry over unchanged.
func Fill(seq *frames.Sequence, side int) *frames.Sequence {
	return seq.Map(func(img *image.NRGBA) *image.NRGBA {
		return imaging.Fill(img, side, side, imaging.Center, imaging.Lanczos)
	})
}
