package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds tool locations and engine options. Session choices are never stored here.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	WorkDir  string         `yaml:"work_dir"`
	Tools    ToolsConfig    `yaml:"tools"`
	Engine   EngineConfig   `yaml:"engine"`
	Download DownloadConfig `yaml:"download"`
	Probe    ProbeConfig    `yaml:"probe"`
}

type ToolsConfig struct {
	Downloader string `yaml:"downloader"`
	Probe      string `yaml:"probe"`
	FFmpeg     string `yaml:"ffmpeg"`
	Whisper    string `yaml:"whisper"`
	GPUQuery   string `yaml:"gpu_query"`
}

type EngineConfig struct {
	Backend  string `yaml:"backend"`
	ModelDir string `yaml:"model_dir"`
	Device   string `yaml:"device"`
}

type DownloadConfig struct {
	AudioFormat string `yaml:"audio_format"`
}

type ProbeConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// Normalize trims values and refills empty ones from defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	fill := func(dst *string, fallback string) {
		*dst = strings.TrimSpace(*dst)
		if *dst == "" {
			*dst = fallback
		}
	}

	fill(&c.LogLevel, def.LogLevel)
	c.WorkDir = strings.TrimSpace(c.WorkDir)
	fill(&c.Engine.Backend, def.Engine.Backend)
	fill(&c.Engine.ModelDir, def.Engine.ModelDir)
	fill(&c.Engine.Device, def.Engine.Device)
	c.Engine.Backend = strings.ToLower(c.Engine.Backend)
	c.Engine.Device = strings.ToLower(c.Engine.Device)
	fill(&c.Tools.Downloader, def.Tools.Downloader)
	fill(&c.Tools.Probe, def.Tools.Probe)
	fill(&c.Tools.FFmpeg, def.Tools.FFmpeg)
	fill(&c.Tools.Whisper, WhisperTool(c.Engine.Backend))
	fill(&c.Tools.GPUQuery, def.Tools.GPUQuery)
	fill(&c.Download.AudioFormat, def.Download.AudioFormat)
	if c.Probe.CacheSize <= 0 {
		c.Probe.CacheSize = def.Probe.CacheSize
	}
}

// Validate rejects values no component can act on.
func (c *Config) Validate() error {
	switch c.Engine.Backend {
	case BackendOpenAIWhisper, BackendWhisperCPP:
	default:
		return fmt.Errorf("engine.backend must be %q or %q, got %q", BackendOpenAIWhisper, BackendWhisperCPP, c.Engine.Backend)
	}
	switch c.Engine.Device {
	case DeviceAuto, DeviceCPU, DeviceCUDA:
	default:
		return fmt.Errorf("engine.device must be auto, cpu or cuda, got %q", c.Engine.Device)
	}
	return nil
}

// Store defines persistence operations for the config file.
type Store interface {
	Load() (Config, error)
	Save(Config) error
}

// YAMLStore reads and writes the config as a single YAML file.
type YAMLStore struct {
	path string
}

// NewYAMLStore creates a YAML-backed config store.
func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{path: path}
}

// Path returns the backing file.
func (s *YAMLStore) Path() string {
	return s.path
}

// Load reads config from disk or returns defaults when missing.
func (s *YAMLStore) Load() (Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}

	// The whisper binary name depends on the backend, so Normalize fills it.
	cfg := DefaultConfig()
	cfg.Tools.Whisper = ""
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate %s: %w", s.path, err)
	}
	return cfg, nil
}

// Save writes config as YAML and creates parent directories.
func (s *YAMLStore) Save(cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}
