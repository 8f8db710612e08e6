package pipeline

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/memecap/internal/hasher"
)

// Source is one batch input.
type Source struct {
	// Location is what the loader resolves: a file path, a URL or a
	// composite reference.
	Location string
	// Key is the output key (relpath without extension, or a hash of
	// the reference for list entries).
	Key string
	// Format is the format implied by the file extension, if any.
	Format string
	// Size is the file size in bytes, 0 when unknown.
	Size int64
}

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// IsImage reports whether path has a recognized image extension.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ScanImages walks the input directory and returns all image sources.
// Hidden directories and skipDir (typically the output directory) are
// not descended into.
func ScanImages(inputDir, skipDir string) ([]Source, error) {
	var sources []Source

	skipAbs, _ := filepath.Abs(skipDir)
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != inputDir {
				return filepath.SkipDir
			}
			if abs, _ := filepath.Abs(path); skipDir != "" && abs == skipAbs && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsImage(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		sources = append(sources, Source{
			Location: path,
			Key:      KeyFor(relPath),
			Format:   formatFor(path),
			Size:     info.Size(),
		})
		return nil
	})

	return sources, err
}

// ReadSourceList reads one source reference per line. Blank lines and
// lines starting with # are ignored. Entries may be URLs or composite
// references; their keys are derived from the reference text.
func ReadSourceList(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sources []Source
	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		ref := strings.TrimSpace(sc.Text())
		if ref == "" || strings.HasPrefix(ref, "#") {
			continue
		}
		if seen[ref] {
			return nil, fmt.Errorf("%s:%d: duplicate source %q", path, line, ref)
		}
		seen[ref] = true
		sources = append(sources, Source{Location: ref, Key: hasher.SourceID(ref)})
	}
	return sources, sc.Err()
}

// KeyFor returns the output key for a path relative to the input
// directory: no extension, forward slashes.
func KeyFor(relPath string) string {
	return filepath.ToSlash(strings.TrimSuffix(relPath, filepath.Ext(relPath)))
}

func formatFor(path string) string {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch format {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return format
}
