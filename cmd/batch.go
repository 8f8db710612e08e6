package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/AnyUserName/memecap/internal/manifest"
	"github.com/AnyUserName/memecap/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchOutDir  string
	batchWorkers int
	batchList    string
	batchMetrics string
)

var batchCmd = &cobra.Command{
	Use:   "batch <input_dir>",
	Short: "Process every image in a directory and write a manifest",
	Long: `Scans input directory for images (png, jpg, jpeg, webp, gif, bmp, tiff),
produces a watermarked main image and a square thumbnail for each, and
writes memecap.manifest.json next to the outputs.

With --list, sources are read from a file instead (one file path, URL
or composite reference per line) and <input_dir> is ignored.

Output filenames are content-addressed: <key>.<hash>.ext and
<key>.thumb.<hash>.ext`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "./memecap_out", "output directory")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	batchCmd.Flags().StringVarP(&batchList, "list", "l", "", "file with one source reference per line")
	batchCmd.Flags().StringVar(&batchMetrics, "metrics-file", "", "write Prometheus metrics to this file")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && batchList == "" {
		return fmt.Errorf("need <input_dir> or --list")
	}
	start := time.Now()
	log := newLogger()
	defer log.Sync() //nolint:errcheck

	absOutput, err := filepath.Abs(batchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	cfg := pipeline.BatchConfig{OutputDir: absOutput, Workers: batchWorkers}
	if batchList != "" {
		if cfg.Sources, err = pipeline.ReadSourceList(batchList); err != nil {
			return fmt.Errorf("read source list: %w", err)
		}
		cfg.InputDir = batchList
	} else {
		if cfg.InputDir, err = filepath.Abs(args[0]); err != nil {
			return fmt.Errorf("resolve input path: %w", err)
		}
	}

	a, err := newApp(log, false)
	if err != nil {
		return err
	}
	cfg.WatermarkName = a.watermarkName

	log.Debug("batch",
		zap.String("input", cfg.InputDir),
		zap.String("output", absOutput),
		zap.String("profile", a.policy.Name))

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	m, err := pipeline.NewBatch(a.proc, cfg, log.Named("batch")).Run(ctx)
	if mErr := a.writeMetrics(batchMetrics); mErr != nil {
		log.Warn("metrics", zap.Error(mErr))
	}
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printBatchReport(m, time.Since(start))
	return nil
}

func printBatchReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║             memecap batch complete               ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	stats := m.Stats
	ratio := float64(0)
	if stats.TotalInputBytes > 0 {
		ratio = float64(stats.TotalOutputBytes) / float64(stats.TotalInputBytes) * 100
	}

	fmt.Printf("  Images:      %d (%d animated)\n", stats.TotalImages, stats.Animated)
	if stats.Failed > 0 {
		fmt.Printf("  Failed:      %d\n", stats.Failed)
	}
	fmt.Printf("  Input size:  %s\n", formatBytes(stats.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(stats.TotalOutputBytes))
	fmt.Printf("  Ratio:       %.1f%% of original\n", ratio)
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:     %d\n", m.BuildInfo.Workers)
	}
	fmt.Println()

	if len(m.Images) > 0 {
		type imageSize struct {
			key        string
			inputSize  int64
			outputSize int64
		}
		var items []imageSize
		for key, img := range m.Images {
			items = append(items, imageSize{key, img.Source.Size, img.Main.Size + img.Thumb.Size})
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].inputSize != items[j].inputSize {
				return items[i].inputSize > items[j].inputSize
			}
			return items[i].key < items[j].key
		})
		n := min(len(items), 10)
		fmt.Printf("  Top %d heaviest (source → main+thumb):\n", n)
		for _, it := range items[:n] {
			fmt.Printf("    %-40s %8s → %8s\n",
				truncKey(it.key, 40),
				formatBytes(it.inputSize),
				formatBytes(it.outputSize),
			)
		}
		fmt.Println()
	}

	if len(m.Failures) > 0 {
		keys := make([]string, 0, len(m.Failures))
		for k := range m.Failures {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("  Failures:")
		for _, k := range keys {
			fmt.Printf("    %-30s %s\n", truncKey(k, 30), m.Failures[k])
		}
		fmt.Println()
	}

	data, _ := json.Marshal(m)
	fmt.Printf("  Manifest:    %s (%s)\n", manifest.FileName, formatBytes(int64(len(data))))
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
