//go:build ignore

// gen_fixtures creates a small source tree for a manual smoke run:
//
//	go run e2e/gen_fixtures.go /tmp/memes
//	memecap batch /tmp/memes -o /tmp/memes_out
//	memecap batch --list /tmp/memes/sources.txt -o /tmp/memes_out
//	memecap validate /tmp/memes_out/memecap.manifest.json
package main

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/memecap/internal/fixture"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(filepath.Join(dir, "panels"), 0o755); err != nil {
		fail(err)
	}

	files := map[string][]byte{
		// Landscape above the default 800px ceiling.
		"banner.jpg": fixture.JPEG(fixture.Gradient(1200, 675)),
		// Rotated 90° by EXIF; upright it is 300x400.
		"rotated.jpg": fixture.WithOrientation(fixture.JPEG(fixture.Gradient(400, 300)), 6),
		"logo.png":    fixture.PNG(fixture.AlphaGradient(100, 100)),
		"dance.gif":   fixture.AnimatedGIF(160, 120, 10, 20, 10),
	}
	for i := 1; i <= 3; i++ {
		shade := uint8(i * 60)
		name := filepath.Join("panels", fmt.Sprintf("panel-%d.png", i))
		files[name] = fixture.PNG(fixture.Solid(200+40*i, 150, color.NRGBA{shade, 255 - shade, 128, 255}))
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			fail(err)
		}
	}

	// Composite references for batch --list.
	panel := func(i int) string { return filepath.Join(dir, "panels", fmt.Sprintf("panel-%d.png", i)) }
	list := []string{
		"# vertical stack, horizontal row, and a row inside a stack",
		panel(1) + "|" + panel(2) + "|" + panel(3),
		panel(1) + "[]" + panel(2),
		panel(1) + "[]" + panel(2) + "|" + panel(3),
	}
	if err := os.WriteFile(filepath.Join(dir, "sources.txt"), []byte(strings.Join(list, "\n")+"\n"), 0o644); err != nil {
		fail(err)
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d fixtures in %s\n", len(files), dir)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "gen_fixtures: %v\n", err)
	os.Exit(1)
}
