// Package fonts holds the catalog of caption fonts and picks the first
// font, in file-name order, that can render a given caption.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/AnyUserName/memecap/internal/fontcov"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/sfnt"
)

// ErrNoFonts means the catalog is empty. No caption can ever be rendered,
// so callers treat it as a startup failure rather than a request error.
var ErrNoFonts = errors.New("no fonts available")

// Extension is the font file extension the catalog loads.
const Extension = ".ttf"

// Font is one catalog entry. Coverage is fixed once the font is built.
type Font struct {
	// Path is the file the font was loaded from.
	Path string
	// Name is the base file name, used as the font identifier.
	Name string
	// Family is the family name from the 'name' table, if readable.
	Family   string
	Coverage fontcov.Coverage

	data      []byte
	parseOnce sync.Once
	parsed    *truetype.Font
	parseErr  error
}

// New builds a font from raw bytes. path only identifies the font.
func New(path string, data []byte) (*Font, error) {
	cov, err := fontcov.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", filepath.Base(path), err)
	}
	return &Font{
		Path:     path,
		Name:     filepath.Base(path),
		Family:   familyName(data),
		Coverage: cov,
		data:     data,
	}, nil
}

// Load reads and builds the font at path.
func Load(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return New(path, data)
}

// Truetype returns the parsed font for rasterization. Parsing happens
// once, on first use.
func (f *Font) Truetype() (*truetype.Font, error) {
	f.parseOnce.Do(func() {
		f.parsed, f.parseErr = truetype.Parse(f.data)
		if f.parseErr != nil {
			f.parseErr = fmt.Errorf("parse font %s: %w", f.Name, f.parseErr)
		}
	})
	return f.parsed, f.parseErr
}

// familyName is best effort; fonts stripped of their name table still
// select and render fine.
func familyName(data []byte) string {
	f, err := sfnt.Parse(data)
	if err != nil {
		return ""
	}
	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

// Sort orders fonts by file name in byte-lexical order.
func Sort(fonts []*Font) {
	sort.SliceStable(fonts, func(i, j int) bool { return fonts[i].Name < fonts[j].Name })
}

// CollapseSpace replaces every whitespace run with one space and trims
// the ends.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Select returns the first font in fonts whose coverage includes every
// code point of the whitespace-collapsed text, or fonts[0] when none
// does. fonts must already be sorted.
func Select(fonts []*Font, text string) (*Font, error) {
	if len(fonts) == 0 {
		return nil, ErrNoFonts
	}
	needed := CollapseSpace(text)
	for _, f := range fonts {
		if f.Coverage.ContainsAll(needed) {
			return f, nil
		}
	}
	return fonts[0], nil
}
