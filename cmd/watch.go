package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/AnyUserName/memecap/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	watchOutDir   string
	watchDebounce string
	watchMetrics  string
)

var watchCmd = &cobra.Command{
	Use:   "watch <input_dir>",
	Short: "Process images as they appear in a directory",
	Long: `Watches <input_dir> and processes every image file that is created or
rewritten there, once it has been quiet for the debounce interval.
Stops on interrupt.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutDir, "out", "o", "./memecap_out", "output directory")
	watchCmd.Flags().StringVar(&watchDebounce, "debounce", pipeline.DefaultDebounce.String(), "quiet period before a file is processed")
	watchCmd.Flags().StringVar(&watchMetrics, "metrics-file", "", "write Prometheus metrics to this file on exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync() //nolint:errcheck

	inDir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	outDir, err := filepath.Abs(watchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	a, err := newApp(log, false)
	if err != nil {
		return err
	}

	w := pipeline.NewWatcher(a.proc, inDir, outDir, log.Named("watch"))
	if w.Debounce, err = parseDuration(watchDebounce); err != nil {
		return fmt.Errorf("--debounce: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil {
		return err
	}
	return a.writeMetrics(watchMetrics)
}
