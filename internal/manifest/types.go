package manifest

// FileName is the manifest written next to batch outputs.
const FileName = "memecap.manifest.json"

// Manifest is the top-level output of a memecap batch run.
type Manifest struct {
	Version     int               `json:"version"`
	GeneratedAt string            `json:"generated_at"`
	Profile     string            `json:"profile"`
	BasePath    string            `json:"base_path"`
	BuildInfo   *BuildInfo        `json:"build_info,omitempty"`
	Images      map[string]Image  `json:"images"`
	Failures    map[string]string `json:"failures,omitempty"` // key -> error text
	Stats       Stats             `json:"stats"`
}

// BuildInfo captures run parameters for diagnostics.
type BuildInfo struct {
	Workers   int    `json:"workers"`
	Encoders  string `json:"encoders,omitempty"`
	Watermark string `json:"watermark,omitempty"` // "default" or a file path
}

// Image describes one processed source and its two outputs.
type Image struct {
	Source        SourceInfo `json:"source"`
	ID            string     `json:"id"` // xxhash64 of the main output
	Animated      bool       `json:"animated"`
	Frames        int        `json:"frames"`
	ShrinkSkipped bool       `json:"shrink_skipped,omitempty"`
	Main          Output     `json:"main"`
	Thumb         Output     `json:"thumb"`
}

// SourceInfo holds metadata about the input.
type SourceInfo struct {
	Location string `json:"location"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
}

// Output is one encoded file.
type Output struct {
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Size        int64  `json:"size"` // bytes on disk
	Hash        string `json:"hash"` // first 16 hex chars of xxhash64
	Path        string `json:"path"` // relative to base_path
}

// Stats aggregates batch totals.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalImages      int   `json:"total_images"`
	Animated         int   `json:"animated"`
	Failed           int   `json:"failed,omitempty"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
