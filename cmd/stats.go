package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/memecap/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a batch output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := args[0]

	// If path is a directory, look for manifest inside.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, manifest.FileName)
	}

	m, err := manifest.ReadJSON(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	printStats(m)
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", m.Profile)
	if b := m.BuildInfo; b != nil {
		fmt.Printf("  Workers:          %d\n", b.Workers)
		if b.Encoders != "" {
			fmt.Printf("  Encoders:         %s\n", b.Encoders)
		}
		if b.Watermark != "" {
			fmt.Printf("  Watermark:        %s\n", b.Watermark)
		}
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total images:     %d\n", s.TotalImages)
	fmt.Printf("  Animated:         %d\n", s.Animated)
	fmt.Printf("  Failed:           %d\n", s.Failed)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalInputBytes > 0 {
		ratio := float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
		fmt.Printf("  Compression:      %.1f%% of original\n", ratio)
	}
	fmt.Println()

	// Per-content-type breakdown.
	typeStats := map[string]struct {
		count int
		bytes int64
	}{}
	var skipped int
	for _, img := range m.Images {
		ts := typeStats[img.Main.ContentType]
		ts.count++
		ts.bytes += img.Main.Size + img.Thumb.Size
		typeStats[img.Main.ContentType] = ts
		if img.ShrinkSkipped {
			skipped++
		}
	}
	types := make([]string, 0, len(typeStats))
	for t := range typeStats {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Println("  Output breakdown:")
	for _, t := range types {
		ts := typeStats[t]
		fmt.Printf("    %-11s  %4d images  %s\n", t, ts.count, formatBytes(ts.bytes))
	}
	fmt.Println()

	// Main image size distribution by longer side.
	buckets := map[int]int{}
	for _, img := range m.Images {
		side := max(img.Main.Width, img.Main.Height)
		buckets[(side/100)*100]++
	}
	var sides []int
	for side := range buckets {
		sides = append(sides, side)
	}
	sort.Ints(sides)
	fmt.Println("  Longer side:")
	for _, side := range sides {
		fmt.Printf("    %4d-%4dpx  %4d images\n", side, side+99, buckets[side])
	}
	if skipped > 0 {
		fmt.Printf("  Animations kept at source size: %d\n", skipped)
	}
	fmt.Println()
}
