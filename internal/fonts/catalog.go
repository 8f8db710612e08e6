package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Catalog is the sorted set of fonts found in one directory. It is built
// on first access and never changes afterwards, so concurrent readers
// need no locking.
type Catalog struct {
	dir string
	log *zap.Logger

	once  sync.Once
	fonts []*Font
	err   error
}

// NewCatalog returns a catalog that loads every *.ttf file in dir on
// first use.
func NewCatalog(dir string, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{dir: dir, log: log}
}

// FromFonts builds an already-loaded catalog, sorting fonts by name.
func FromFonts(fonts ...*Font) *Catalog {
	c := &Catalog{log: zap.NewNop()}
	c.once.Do(func() {
		c.fonts = append([]*Font(nil), fonts...)
		Sort(c.fonts)
		if len(c.fonts) == 0 {
			c.err = ErrNoFonts
		}
	})
	return c
}

// Fonts returns the catalog in lexical file-name order. An empty
// directory yields ErrNoFonts. A font that fails to parse fails the
// whole catalog.
func (c *Catalog) Fonts() ([]*Font, error) {
	c.once.Do(c.load)
	return c.fonts, c.err
}

// Ready loads the catalog and reports whether captions can be rendered.
func (c *Catalog) Ready() error {
	_, err := c.Fonts()
	return err
}

// Select picks the font for text. See the package-level Select.
func (c *Catalog) Select(text string) (*Font, error) {
	fonts, err := c.Fonts()
	if err != nil {
		return nil, err
	}
	return Select(fonts, text)
}

func (c *Catalog) load() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.err = fmt.Errorf("read font dir: %w", err)
		return
	}

	var fonts []*Font
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			continue
		}
		f, err := Load(filepath.Join(c.dir, e.Name()))
		if err != nil {
			c.err = err
			return
		}
		c.log.Debug("loaded font",
			zap.String("name", f.Name),
			zap.String("family", f.Family),
			zap.Int("code_points", f.Coverage.Len()))
		fonts = append(fonts, f)
	}

	if len(fonts) == 0 {
		c.err = fmt.Errorf("%w in %s", ErrNoFonts, c.dir)
		return
	}
	Sort(fonts)
	c.fonts = fonts
	c.log.Info("font catalog ready", zap.String("dir", c.dir), zap.Int("fonts", len(fonts)))
}
