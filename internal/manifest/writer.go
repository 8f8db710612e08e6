package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// New creates an empty manifest with defaults.
func New(profileName string) *Manifest {
	return &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
		BasePath:    "./",
		Images:      make(map[string]Image),
	}
}

// ComputeStats recalculates aggregate statistics from images.
func (m *Manifest) ComputeStats() {
	var s Stats
	s.TotalImages = len(m.Images)
	s.Failed = len(m.Failures)
	for _, img := range m.Images {
		s.TotalInputBytes += img.Source.Size
		s.TotalOutputBytes += img.Main.Size + img.Thumb.Size
		if img.Animated {
			s.Animated++
		}
	}
	m.Stats = s
}

// AddFailure records a source that produced no output.
func (m *Manifest) AddFailure(key string, err error) {
	if m.Failures == nil {
		m.Failures = make(map[string]string)
	}
	m.Failures[key] = err.Error()
}

// WriteJSON serializes the manifest to a JSON file with stable ordering.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a manifest and rejects unknown schema versions.
func ReadJSON(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Version != SupportedManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d (expected %d)", m.Version, SupportedManifestVersion)
	}
	return &m, nil
}
