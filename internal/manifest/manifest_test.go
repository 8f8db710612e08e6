package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestManifestRoundtrip(t *testing.T) {
	m := New("test-profile")
	m.BuildInfo = &BuildInfo{Workers: 4, Watermark: "default"}
	m.Images["cats/grumpy"] = Image{
		Source:   SourceInfo{Location: "cats/grumpy.gif", Format: "gif", Size: 100000},
		ID:       "abcd1234abcd1234",
		Animated: true,
		Frames:   3,
		Main: Output{ContentType: "image/gif", Width: 400, Height: 300, Size: 5000,
			Hash: "abcd1234abcd1234", Path: "cats/grumpy.abcd1234.gif"},
		Thumb: Output{ContentType: "image/gif", Width: 128, Height: 128, Size: 800,
			Hash: "0123456789abcdef", Path: "cats/grumpy.thumb.01234567.gif"},
	}
	m.AddFailure("broken", errors.New("decode: unsupported format"))

	path := filepath.Join(t.TempDir(), FileName)
	if err := WriteJSON(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	m2, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m2.Profile != "test-profile" {
		t.Errorf("profile: got %q", m2.Profile)
	}
	if m2.BuildInfo == nil || m2.BuildInfo.Workers != 4 {
		t.Fatal("build_info missing")
	}

	img, ok := m2.Images["cats/grumpy"]
	if !ok {
		t.Fatal("image cats/grumpy missing")
	}
	if img.Thumb.Width != 128 || img.Main.ContentType != "image/gif" {
		t.Errorf("outputs: got %+v / %+v", img.Main, img.Thumb)
	}
	if m2.Failures["broken"] == "" {
		t.Error("failure not recorded")
	}

	if m2.Stats.TotalImages != 1 || m2.Stats.Animated != 1 || m2.Stats.Failed != 1 {
		t.Errorf("stats: got %+v", m2.Stats)
	}
	if m2.Stats.TotalOutputBytes != 5800 {
		t.Errorf("total_output_bytes: got %d", m2.Stats.TotalOutputBytes)
	}
}

func TestManifestVersion(t *testing.T) {
	m := New("v-test")
	if m.Version != SupportedManifestVersion {
		t.Errorf("new manifest version: got %d, want %d", m.Version, SupportedManifestVersion)
	}

	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadJSON(path); err == nil {
		t.Error("expected version error")
	}
}

func TestManifestIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"version": 1,
		"generated_at": "2025-01-01T00:00:00Z",
		"profile": "test",
		"base_path": "./",
		"future_field": "should be ignored",
		"build_info": { "workers": 8, "new_flag": true },
		"images": {},
		"stats": { "total_input_bytes": 0, "total_output_bytes": 0, "total_images": 0, "animated": 0, "new_stat": 42 }
	}`

	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if m.BuildInfo == nil || m.BuildInfo.Workers != 8 {
		t.Error("build_info not parsed correctly")
	}
}
