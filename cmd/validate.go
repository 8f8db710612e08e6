package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/memecap/internal/hasher"
	"github.com/AnyUserName/memecap/internal/manifest"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a memecap manifest and check referenced files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestPath := args[0]

	m, err := manifest.ReadJSON(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	errs := validateManifest(m, filepath.Dir(manifestPath))
	if len(errs) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d images, %d files, all present\n", m.Stats.TotalImages, 2*m.Stats.TotalImages)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string
	seenPaths := map[string]string{}

	for key, img := range m.Images {
		if img.ID == "" {
			errs = append(errs, fmt.Sprintf("image %q: missing id", key))
		}
		if img.Frames < 1 {
			errs = append(errs, fmt.Sprintf("image %q: invalid frame count %d", key, img.Frames))
		}
		if img.Animated != (img.Frames > 1) {
			errs = append(errs, fmt.Sprintf("image %q: animated=%v with %d frames", key, img.Animated, img.Frames))
		}
		if img.Thumb.Width != img.Thumb.Height {
			errs = append(errs, fmt.Sprintf("image %q: thumbnail is not square (%dx%d)",
				key, img.Thumb.Width, img.Thumb.Height))
		}

		for _, o := range []struct {
			name string
			out  manifest.Output
		}{{"main", img.Main}, {"thumb", img.Thumb}} {
			errs = append(errs, validateOutput(key, o.name, o.out, baseDir, seenPaths)...)
		}
	}

	for key := range m.Failures {
		if _, ok := m.Images[key]; ok {
			errs = append(errs, fmt.Sprintf("image %q: listed as both processed and failed", key))
		}
	}

	// Verify stats consistency.
	if m.Stats.TotalImages != len(m.Images) {
		errs = append(errs, fmt.Sprintf("stats.total_images mismatch: %d != %d", m.Stats.TotalImages, len(m.Images)))
	}
	if m.Stats.Failed != len(m.Failures) {
		errs = append(errs, fmt.Sprintf("stats.failed mismatch: %d != %d", m.Stats.Failed, len(m.Failures)))
	}

	return errs
}

func validateOutput(key, name string, o manifest.Output, baseDir string, seen map[string]string) []string {
	var errs []string
	if o.ContentType == "" {
		errs = append(errs, fmt.Sprintf("image %q %s: empty content type", key, name))
	}
	if o.Width <= 0 || o.Height <= 0 {
		errs = append(errs, fmt.Sprintf("image %q %s: invalid dimensions %dx%d", key, name, o.Width, o.Height))
	}
	if o.Hash == "" {
		errs = append(errs, fmt.Sprintf("image %q %s: missing hash", key, name))
	}
	if o.Path == "" {
		return append(errs, fmt.Sprintf("image %q %s: missing path", key, name))
	}

	if owner, dup := seen[o.Path]; dup {
		errs = append(errs, fmt.Sprintf("image %q %s: duplicate path %q (also %s)", key, name, o.Path, owner))
	}
	seen[o.Path] = key + " " + name

	path := filepath.Join(baseDir, filepath.FromSlash(o.Path))
	info, err := os.Stat(path)
	if err != nil {
		return append(errs, fmt.Sprintf("image %q %s: file not found: %s", key, name, o.Path))
	}
	if o.Size > 0 && info.Size() != o.Size {
		errs = append(errs, fmt.Sprintf("image %q %s: size mismatch: manifest=%d, disk=%d",
			key, name, o.Size, info.Size()))
	}
	if o.Hash != "" {
		sum, err := fileHash(path, len(o.Hash))
		if err != nil {
			errs = append(errs, fmt.Sprintf("image %q %s: %v", key, name, err))
		} else if sum != o.Hash {
			errs = append(errs, fmt.Sprintf("image %q %s: hash mismatch: manifest=%s, disk=%s", key, name, o.Hash, sum))
		}
	}
	return errs
}

func fileHash(path string, hexLen int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return hasher.ContentHashReader(f, hexLen)
}
