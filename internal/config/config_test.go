package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies baseline defaults are present.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Engine.Backend != BackendOpenAIWhisper {
		t.Fatalf("backend = %q, want %q", cfg.Engine.Backend, BackendOpenAIWhisper)
	}
	if cfg.Tools.Downloader != "yt-dlp" {
		t.Fatalf("downloader = %q, want yt-dlp", cfg.Tools.Downloader)
	}
	if cfg.Engine.ModelDir == "" {
		t.Fatal("expected non-empty model dir")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

// TestYAMLStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestYAMLStoreLoadMissingReturnsDefaults(t *testing.T) {
	store := NewYAMLStore(filepath.Join(t.TempDir(), "missing", "config.yaml"))

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != DefaultConfig() {
		t.Fatalf("config = %+v, want defaults", got)
	}
}

// TestYAMLStoreLoadPartialKeepsDefaults checks that omitted keys fall back.
func TestYAMLStoreLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "engine:\n  backend: whisper.cpp\n  device: CPU\ntools:\n  downloader: \"  /opt/bin/yt-dlp \"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewYAMLStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Engine.Backend != BackendWhisperCPP {
		t.Fatalf("backend = %q", got.Engine.Backend)
	}
	if got.Engine.Device != DeviceCPU {
		t.Fatalf("device = %q, want cpu", got.Engine.Device)
	}
	if got.Tools.Downloader != "/opt/bin/yt-dlp" {
		t.Fatalf("downloader = %q", got.Tools.Downloader)
	}
	if got.Tools.Probe != "ffprobe" {
		t.Fatalf("probe = %q, want default ffprobe", got.Tools.Probe)
	}
}

// TestYAMLStoreLoadWhisperToolFollowsBackend checks the per-backend binary default.
func TestYAMLStoreLoadWhisperToolFollowsBackend(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "cpp", content: "engine:\n  backend: whisper.cpp\n", want: "whisper-cli"},
		{name: "openai", content: "engine:\n  backend: openai-whisper\n", want: "whisper"},
		{name: "explicit", content: "engine:\n  backend: whisper.cpp\ntools:\n  whisper: /opt/whisper.cpp/main\n", want: "/opt/whisper.cpp/main"},
	}

	for _, tc := range cases {
		path := filepath.Join(dir, tc.name+".yaml")
		if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		got, err := NewYAMLStore(path).Load()
		if err != nil {
			t.Fatalf("%s: Load() error = %v", tc.name, err)
		}
		if got.Tools.Whisper != tc.want {
			t.Fatalf("%s: whisper tool = %q, want %q", tc.name, got.Tools.Whisper, tc.want)
		}
	}
}

// TestYAMLStoreSaveAndLoadRoundTrip checks persisted config fidelity.
func TestYAMLStoreSaveAndLoadRoundTrip(t *testing.T) {
	store := NewYAMLStore(filepath.Join(t.TempDir(), "cfg", "config.yaml"))
	want := DefaultConfig()
	want.LogLevel = "debug"
	want.WorkDir = "/var/tmp/yt2text"
	want.Engine.Device = DeviceCUDA
	want.Probe.CacheSize = 8

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("config = %+v, want %+v", got, want)
	}
}

// TestYAMLStoreLoadRejectsUnknownBackend checks validation errors.
func TestYAMLStoreLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  backend: vosk\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewYAMLStore(path).Load(); err == nil {
		t.Fatal("expected validation error")
	}
}

// TestYAMLStoreLoadInvalidYAML checks parse error handling.
func TestYAMLStoreLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("engine: [not-a-map"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewYAMLStore(path).Load(); err == nil {
		t.Fatal("expected yaml parse error")
	}
}
