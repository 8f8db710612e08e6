package fonts

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/image/font/gofont/goregular"
)

// rangeFont builds a cmap-only sfnt covering the inclusive rune ranges.
func rangeFont(ranges ...[2]rune) []byte {
	be := binary.BigEndian

	sub := make([]byte, 16+len(ranges)*12)
	be.PutUint16(sub[0:], 12)
	be.PutUint32(sub[4:], uint32(len(sub)))
	be.PutUint32(sub[12:], uint32(len(ranges)))
	for i, r := range ranges {
		be.PutUint32(sub[16+i*12:], uint32(r[0]))
		be.PutUint32(sub[20+i*12:], uint32(r[1]))
		be.PutUint32(sub[24+i*12:], 1)
	}

	cmap := make([]byte, 12)
	be.PutUint16(cmap[2:], 1)
	be.PutUint16(cmap[4:], 3)
	be.PutUint16(cmap[6:], 10)
	be.PutUint32(cmap[8:], 12)
	cmap = append(cmap, sub...)

	font := make([]byte, 28)
	be.PutUint32(font[0:], 0x00010000)
	be.PutUint16(font[4:], 1)
	copy(font[12:], "cmap")
	be.PutUint32(font[20:], 28)
	be.PutUint32(font[24:], uint32(len(cmap)))
	return append(font, cmap...)
}

func mustFont(t *testing.T, name string, ranges ...[2]rune) *Font {
	t.Helper()
	f, err := New(name, rangeFont(ranges...))
	require.NoError(t, err)
	return f
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpace("  a \t\n b   c \r\n"))
	assert.Equal(t, "", CollapseSpace(" \t "))
}

func TestSelect_FirstSupersetWins(t *testing.T) {
	lower := mustFont(t, "a-lower.ttf", [2]rune{' ', ' '}, [2]rune{'a', 'z'})
	both := mustFont(t, "b-both.ttf", [2]rune{' ', ' '}, [2]rune{'A', 'Z'}, [2]rune{'a', 'z'})
	cyr := mustFont(t, "c-cyrillic.ttf", [2]rune{' ', ' '}, [2]rune{0x400, 0x4FF}, [2]rune{'a', 'z'})
	fonts := []*Font{cyr, both, lower}
	Sort(fonts)

	got, err := Select(fonts, "hello world")
	require.NoError(t, err)
	assert.Equal(t, "a-lower.ttf", got.Name)

	got, err = Select(fonts, "Hello World")
	require.NoError(t, err)
	assert.Equal(t, "b-both.ttf", got.Name)

	got, err = Select(fonts, "привет")
	require.NoError(t, err)
	assert.Equal(t, "c-cyrillic.ttf", got.Name)
}

func TestSelect_WhitespaceIgnored(t *testing.T) {
	// Covers a single space but no tab or newline.
	f := mustFont(t, "only.ttf", [2]rune{' ', ' '}, [2]rune{'a', 'z'})
	other := mustFont(t, "other.ttf", [2]rune{'A', 'Z'})

	got, err := Select([]*Font{f, other}, "  foo\t\tbar\nbaz  ")
	require.NoError(t, err)
	assert.Equal(t, "only.ttf", got.Name)
}

func TestSelect_FallsBackToFirst(t *testing.T) {
	a := mustFont(t, "a.ttf", [2]rune{'a', 'z'})
	b := mustFont(t, "b.ttf", [2]rune{'A', 'Z'})

	got, err := Select([]*Font{a, b}, "日本語")
	require.NoError(t, err)
	assert.Equal(t, "a.ttf", got.Name)
}

func TestSelect_Empty(t *testing.T) {
	_, err := Select(nil, "x")
	assert.ErrorIs(t, err, ErrNoFonts)

	_, err = FromFonts().Select("x")
	assert.ErrorIs(t, err, ErrNoFonts)
}

func TestSelect_ResultCoversText(t *testing.T) {
	cat := FromFonts(
		mustFont(t, "z.ttf", [2]rune{0x20, 0x7E}),
		mustFont(t, "m.ttf", [2]rune{'a', 'f'}, [2]rune{' ', ' '}),
		mustFont(t, "a.ttf", [2]rune{'0', '9'}),
	)
	fonts, err := cat.Fonts()
	require.NoError(t, err)

	for _, text := range []string{"cafe bad", "42", "Hello, World!", "ä"} {
		got, err := cat.Select(text)
		require.NoError(t, err)
		if got.Coverage.ContainsAll(CollapseSpace(text)) {
			continue
		}
		assert.Same(t, fonts[0], got, "text %q", text)
		for _, f := range fonts {
			assert.False(t, f.Coverage.ContainsAll(CollapseSpace(text)))
		}
	}
}

func TestCatalog_LexicalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.ttf", "a.ttf", "B.ttf", "a2.ttf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), rangeFont([2]rune{'a', 'z'}), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	cat := NewCatalog(dir, zaptest.NewLogger(t))
	require.NoError(t, cat.Ready())

	fonts, err := cat.Fonts()
	require.NoError(t, err)
	var names []string
	for _, f := range fonts {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"B.ttf", "a.ttf", "a2.ttf", "b.ttf"}, names)
}

func TestCatalog_EmptyDir(t *testing.T) {
	cat := NewCatalog(t.TempDir(), zaptest.NewLogger(t))
	err := cat.Ready()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFonts))
}

func TestCatalog_MalformedFont(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.ttf"), []byte("not a font"), 0o644))

	_, err := NewCatalog(dir, nil).Select("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.ttf")
}

func TestFont_Truetype(t *testing.T) {
	f, err := New("goregular.ttf", goregular.TTF)
	require.NoError(t, err)
	assert.Equal(t, "Go", f.Family)

	tt, err := f.Truetype()
	require.NoError(t, err)
	assert.NotNil(t, tt)

	again, err := f.Truetype()
	require.NoError(t, err)
	assert.Same(t, tt, again)
}
