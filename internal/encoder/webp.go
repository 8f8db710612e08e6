package encoder

import (
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/AnyUserName/memecap/internal/frames"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// WebPEncoder encodes the first frame to WebP by shelling out to cwebp.
// This approach avoids CGO; when cwebp is missing, WebP sources fall back
// to PNG output.
// Install: brew install webp / apt install webp
type WebPEncoder struct {
	once      sync.Once
	available bool
	cwebpPath string
}

func (e *WebPEncoder) Format() string      { return "webp" }
func (e *WebPEncoder) Extension() string   { return "webp" }
func (e *WebPEncoder) ContentType() string { return "image/webp" }

func (e *WebPEncoder) Available() bool {
	e.once.Do(func() {
		path, err := exec.LookPath("cwebp")
		if err == nil {
			e.available = true
			e.cwebpPath = path
		}
	})
	return e.available
}

func (e *WebPEncoder) Encode(seq *frames.Sequence, quality int) ([]byte, error) {
	if !e.Available() {
		return nil, fmt.Errorf("cwebp not found in PATH; install with: brew install webp")
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	// cwebp reads files; stage the frame as PNG so alpha survives.
	id := tempCounter.Add(1)
	src, err := os.CreateTemp("", fmt.Sprintf("memecap_src_%d_*.png", id))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath := src.Name()
	defer os.Remove(srcPath)

	if err := png.Encode(src, seq.Frames[0].Image); err != nil {
		src.Close()
		return nil, fmt.Errorf("encode temp png: %w", err)
	}
	if err := src.Close(); err != nil {
		return nil, fmt.Errorf("close temp: %w", err)
	}

	dst, err := os.CreateTemp("", fmt.Sprintf("memecap_dst_%d_*.webp", id))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dst.Name()
	dst.Close()
	defer os.Remove(dstPath)

	cmd := exec.Command(e.cwebpPath,
		"-q", fmt.Sprintf("%d", quality),
		"-m", "6", // compression method (0=fast, 6=best)
		"-metadata", "none",
		"-quiet",
		srcPath,
		"-o", dstPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("cwebp: %w: %s", err, string(out))
	}

	return os.ReadFile(dstPath)
}
