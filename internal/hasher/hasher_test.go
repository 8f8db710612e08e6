package hasher

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash(t *testing.T) {
	data := []byte("memecap")

	full := ContentHash(data, 0)
	assert.Len(t, full, 16)
	assert.Equal(t, full[:8], ContentHash(data, 8))
	assert.NotEqual(t, full, ContentHash([]byte("memecaq"), 0))

	streamed, err := ContentHashReader(bytes.NewReader(data), 0)
	require.NoError(t, err)
	assert.Equal(t, full, streamed)
}

func TestSourceID(t *testing.T) {
	assert.Len(t, SourceID("a.jpg|b.jpg"), 12)
	assert.Equal(t, SourceID("a.jpg|b.jpg"), SourceID("a.jpg|b.jpg"))
	assert.NotEqual(t, SourceID("a.jpg|b.jpg"), SourceID("b.jpg|a.jpg"))
}
