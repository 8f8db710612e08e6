// Package encoder turns frame sequences back into bytes. The output
// format follows the source format where an encoder exists for it.
package encoder

import (
	"fmt"
	"strings"

	"github.com/AnyUserName/memecap/internal/frames"
)

// Registry holds all available encoders and selects one per sequence.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry, probing all encoders for availability.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[string]Encoder),
	}

	all := []Encoder{
		&GIFEncoder{},
		&WebPEncoder{},
		&JPEGEncoder{},
		&PNGEncoder{},
	}
	for _, enc := range all {
		if enc.Available() {
			r.encoders[enc.Format()] = enc
		}
	}

	return r
}

// For picks the encoder for seq. Animations always encode as GIF; static
// images keep their source format when possible and otherwise become PNG.
func (r *Registry) For(seq *frames.Sequence) Encoder {
	if seq.Animated() {
		return r.encoders["gif"]
	}
	if enc, ok := r.encoders[seq.Format]; ok {
		return enc
	}
	return r.encoders["png"]
}

// Encode serializes seq with the encoder chosen by For.
func (r *Registry) Encode(seq *frames.Sequence, quality int) ([]byte, Encoder, error) {
	if len(seq.Frames) == 0 {
		return nil, nil, fmt.Errorf("encode: empty frame sequence")
	}
	enc := r.For(seq)
	data, err := enc.Encode(seq, quality)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s: %w", enc.Format(), err)
	}
	return data, enc, nil
}

// Available returns all available format names.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range []string{"gif", "webp", "jpeg", "png"} {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	return fmt.Sprintf("encoders: %s", strings.Join(r.Available(), ", "))
}
