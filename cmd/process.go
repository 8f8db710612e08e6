package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/AnyUserName/memecap/internal/caption"
	"github.com/AnyUserName/memecap/internal/hasher"
	"github.com/AnyUserName/memecap/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	processOutDir   string
	processCaptions []string
	processMetrics  string
)

var processCmd = &cobra.Command{
	Use:   "process <source>",
	Short: "Process one source into a main image and a thumbnail",
	Long: `Fetches and decodes <source>, which is a file path, an http(s) URL or a
composite: "a|b" stacks vertically, "a[]b" places side by side.

Writes <id>.<hash>.<ext> and <id>.thumb.<hash>.<ext> to the output
directory. With --caption the captions are drawn on the main image and
the thumbnail; each caption is "text" or "text@x,y,w,h" (fractions of
the image size).`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processOutDir, "out", "o", ".", "output directory")
	processCmd.Flags().StringArrayVarP(&processCaptions, "caption", "c", nil, "caption text, optionally text@x,y,w,h (repeatable)")
	processCmd.Flags().StringVar(&processMetrics, "metrics-file", "", "write Prometheus metrics to this file")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	source := args[0]
	log := newLogger()
	defer log.Sync() //nolint:errcheck

	caps := make([]caption.Caption, 0, len(processCaptions))
	for i, s := range processCaptions {
		c, err := caption.Parse(s, i)
		if err != nil {
			return err
		}
		caps = append(caps, c)
	}

	a, err := newApp(log, len(caps) > 0)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	start := time.Now()
	var res *pipeline.Result
	if len(caps) > 0 {
		res, err = a.proc.Generate(ctx, source, caps)
	} else {
		res, err = a.proc.Process(ctx, source)
	}
	if mErr := a.writeMetrics(processMetrics); mErr != nil && err == nil {
		err = mErr
	}
	if err != nil {
		return err
	}

	src := pipeline.Source{Location: source, Key: hasher.SourceID(source)}
	img, err := pipeline.WriteResult(processOutDir, src, res)
	if err != nil {
		return err
	}

	fmt.Printf("  Main:   %s  %dx%d  %s  %s\n",
		filepath.Join(processOutDir, img.Main.Path), res.Width, res.Height, res.ContentType, formatBytes(img.Main.Size))
	fmt.Printf("  Thumb:  %s  %dx%d  %s\n",
		filepath.Join(processOutDir, img.Thumb.Path), res.ThumbWidth, res.ThumbHeight, formatBytes(img.Thumb.Size))
	if res.Animated {
		note := ""
		if res.ShrinkSkipped {
			note = " (not resized: above animated shrink ceiling)"
		}
		fmt.Printf("  Frames: %d%s\n", res.Frames, note)
	}
	fmt.Printf("  Time:   %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
