package encoder

import (
	"bytes"
	"image/jpeg"
	"image/png"

	"github.com/AnyUserName/memecap/internal/frames"
)

// JPEGEncoder encodes the first frame to JPEG using Go's standard library.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Format() string      { return "jpeg" }
func (e *JPEGEncoder) Extension() string   { return "jpg" }
func (e *JPEGEncoder) ContentType() string { return "image/jpeg" }
func (e *JPEGEncoder) Available() bool     { return true }

func (e *JPEGEncoder) Encode(seq *frames.Sequence, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	var buf bytes.Buffer
	buf.Grow(128 * 1024)

	err := jpeg.Encode(&buf, seq.Frames[0].Image, &jpeg.Options{Quality: quality})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNGEncoder encodes the first frame to PNG, keeping alpha. It is the
// fallback for sources with no encoder of their own (bmp, tiff).
type PNGEncoder struct{}

func (e *PNGEncoder) Format() string      { return "png" }
func (e *PNGEncoder) Extension() string   { return "png" }
func (e *PNGEncoder) ContentType() string { return "image/png" }
func (e *PNGEncoder) Available() bool     { return true }

func (e *PNGEncoder) Encode(seq *frames.Sequence, _ int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(256 * 1024)

	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, seq.Frames[0].Image); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
