package config

import (
	"os"
	"path/filepath"
)

const (
	BackendOpenAIWhisper = "openai-whisper"
	BackendWhisperCPP    = "whisper.cpp"

	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"
)

// WhisperTool is the default engine binary for a backend.
func WhisperTool(backend string) string {
	if backend == BackendWhisperCPP {
		return "whisper-cli"
	}
	return "whisper"
}

// HomeDir is the per-user application directory.
func HomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".yt2text")
}

// DefaultPath is where the config file is looked up when no path is given.
func DefaultPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

// DefaultConfig returns baseline configuration for first launch.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		WorkDir:  "",
		Tools: ToolsConfig{
			Downloader: "yt-dlp",
			Probe:      "ffprobe",
			FFmpeg:     "ffmpeg",
			Whisper:    WhisperTool(BackendOpenAIWhisper),
			GPUQuery:   "nvidia-smi",
		},
		Engine: EngineConfig{
			Backend:  BackendOpenAIWhisper,
			ModelDir: filepath.Join(HomeDir(), "models"),
			Device:   DeviceAuto,
		},
		Download: DownloadConfig{
			AudioFormat: "mp3",
		},
		Probe: ProbeConfig{
			CacheSize: 64,
		},
	}
}
