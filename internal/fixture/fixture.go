// Package fixture generates small deterministic images for tests and
// the end-to-end smoke run.
package fixture

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
)

// Gradient returns an opaque w×h image with red rising along x and
// green along y.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w, 1)),
				G: uint8(y * 255 / max(h, 1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// AlphaGradient returns a w×h image whose opacity rises along x.
func AlphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 220, G: 60, B: 30, A: uint8(x * 255 / max(w, 1))})
		}
	}
	return img
}

// PNG encodes img as PNG.
func PNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JPEG encodes img as JPEG at quality 90.
func JPEG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// AnimatedGIF encodes a w×h animation with one solid-colored frame per
// delay. The top-left pixel of every frame is transparent.
func AnimatedGIF(w, h int, delays ...int) []byte {
	colors := []color.Color{
		color.RGBA{0xff, 0, 0, 0xff},
		color.RGBA{0, 0xff, 0, 0xff},
		color.RGBA{0, 0, 0xff, 0xff},
	}
	pal := append(color.Palette{color.Transparent}, palette.WebSafe...)

	g := &gif.GIF{LoopCount: 0}
	for i, d := range delays {
		pm := image.NewPaletted(image.Rect(0, 0, w, h), pal)
		idx := uint8(pal.Index(colors[i%len(colors)]))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pm.SetColorIndex(x, y, idx)
			}
		}
		pm.SetColorIndex(0, 0, 0)
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, d)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// WithOrientation inserts a minimal EXIF APP1 segment carrying the given
// orientation tag right after the JPEG SOI marker.
func WithOrientation(jpegData []byte, orientation uint16) []byte {
	tiff := []byte{
		'M', 'M', 0x00, 0x2A, // big-endian TIFF header
		0x00, 0x00, 0x00, 0x08, // offset of IFD0
		0x00, 0x01, // one entry
		0x01, 0x12, // tag: Orientation
		0x00, 0x03, // type: SHORT
		0x00, 0x00, 0x00, 0x01, // count
		byte(orientation >> 8), byte(orientation), 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	n := len(payload) + 2

	out := make([]byte, 0, len(jpegData)+n+2)
	out = append(out, jpegData[:2]...)
	out = append(out, 0xFF, 0xE1, byte(n>>8), byte(n))
	out = append(out, payload...)
	return append(out, jpegData[2:]...)
}
