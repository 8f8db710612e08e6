package profile

import "time"

// Policy holds the size limits applied to source images. It is read-only
// for the duration of a pipeline run.
type Policy struct {
	Name string

	MaxSourceSide int // longer side is reduced to this when exceeded
	MinSourceSide int // longer side below this qualifies for Enlarge
	EnlargedSide  int // longer side after Enlarge
	ThumbSide     int // thumbnails are ThumbSide × ThumbSide

	// MaxAnimatedShrinkBytes skips resizing animations whose encoded
	// source is larger. 0 means no ceiling.
	MaxAnimatedShrinkBytes int64
	// MaxSourceBytes rejects fetched sources larger than this. 0 means
	// no limit.
	MaxSourceBytes int64

	Quality      int           // encoding quality 1-100
	FetchTimeout time.Duration // per sub-image fetch
}

// Built-in profiles.
var profiles = map[string]Policy{
	"default": {
		Name:           "default",
		MaxSourceSide:  800,
		MinSourceSide:  400,
		EnlargedSide:   600,
		ThumbSide:      128,
		MaxSourceBytes: 10_000_000,
		Quality:        85,
		FetchTimeout:   10 * time.Second,
	},
	"compact": {
		Name:                   "compact",
		MaxSourceSide:          640,
		MinSourceSide:          320,
		EnlargedSide:           480,
		ThumbSide:              96,
		MaxAnimatedShrinkBytes: 5_000_000,
		MaxSourceBytes:         5_000_000,
		Quality:                78,
		FetchTimeout:           5 * time.Second,
	},
	"large": {
		Name:           "large",
		MaxSourceSide:  1280,
		MinSourceSide:  400,
		EnlargedSide:   800,
		ThumbSide:      256,
		MaxSourceBytes: 20_000_000,
		Quality:        90,
		FetchTimeout:   20 * time.Second,
	},
}

// Default returns the default policy.
func Default() Policy { return profiles["default"] }

// Get returns a profile by name. Falls back to default if unknown.
func Get(name string) Policy {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["default"]
	p.Name = name // preserve requested name
	return p
}

// Names lists the built-in profiles.
func Names() []string {
	return []string{"default", "compact", "large"}
}

// ShouldShrink reports whether an image of w×h exceeds MaxSourceSide.
func (p Policy) ShouldShrink(w, h int) bool {
	return p.MaxSourceSide > 0 && (w > p.MaxSourceSide || h > p.MaxSourceSide)
}

// ShouldEnlarge reports whether an image of w×h is small enough for
// Enlarge.
func (p Policy) ShouldEnlarge(w, h int) bool {
	return p.MinSourceSide > 0 && p.EnlargedSide > 0 && max(w, h) < p.MinSourceSide
}

// SkipAnimatedShrink reports whether an animation of srcBytes encoded
// bytes is above the shrink ceiling.
func (p Policy) SkipAnimatedShrink(srcBytes int64) bool {
	return p.MaxAnimatedShrinkBytes > 0 && srcBytes > p.MaxAnimatedShrinkBytes
}

// Fit scales w×h so the longer side equals side, preserving aspect ratio.
// Results are at least 1.
func Fit(w, h, side int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	if w >= h {
		nh := int(float64(h)*float64(side)/float64(w) + 0.5)
		return side, max(nh, 1)
	}
	nw := int(float64(w)*float64(side)/float64(h) + 0.5)
	return max(nw, 1), side
}
