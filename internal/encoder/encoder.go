package encoder

import (
	"github.com/AnyUserName/memecap/internal/frames"
)

// Encoder serializes a frame sequence to one output format.
type Encoder interface {
	// Format returns the output format name (e.g. "gif", "jpeg", "png", "webp").
	Format() string

	// Encode converts the sequence to bytes at the given quality (1-100).
	// Static formats encode the first frame only.
	Encode(seq *frames.Sequence, quality int) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp) may not be installed.
	Available() bool

	// Extension returns the file extension without dot.
	Extension() string

	// ContentType returns the MIME type of the encoded bytes.
	ContentType() string
}
