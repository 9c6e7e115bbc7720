// Package transcribe adapts external speech-recognition engines to a single call.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yt2text/internal/command"
	"yt2text/internal/config"
	"yt2text/internal/domain"
)

// Request is one transcription call.
type Request struct {
	AudioPath string
	ModelSize domain.ModelSize
	Language  domain.Language
	Device    domain.Device
	OnStage   func(stage string)
	OnLog     func(log domain.CommandLog)
}

// Result holds the recognized text and the commands that produced it.
type Result struct {
	Text string
	Logs []domain.CommandLog
}

// Engine runs speech recognition over one audio file.
type Engine interface {
	Transcribe(ctx context.Context, req Request) (Result, error)
}

// fsOps are the filesystem calls engines make, swappable in tests.
type fsOps struct {
	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(path string) error
	stat      func(name string) (os.FileInfo, error)
	readFile  func(name string) ([]byte, error)
}

func osOps() fsOps {
	return fsOps{
		mkdirTemp: func(dir, pattern string) (string, error) {
			if dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return "", err
				}
			}
			return os.MkdirTemp(dir, pattern)
		},
		removeAll: os.RemoveAll,
		stat:      os.Stat,
		readFile:  os.ReadFile,
	}
}

// NewEngine builds the backend selected in config.
func NewEngine(cfg config.Config, runner command.Runner) (Engine, error) {
	switch cfg.Engine.Backend {
	case config.BackendOpenAIWhisper:
		return NewWhisperCLI(cfg.Tools.Whisper, cfg.Engine.ModelDir, cfg.WorkDir, runner), nil
	case config.BackendWhisperCPP:
		return NewWhisperCPP(cfg.Tools.FFmpeg, cfg.Tools.Whisper, cfg.Engine.ModelDir, cfg.WorkDir, runner), nil
	default:
		return nil, fmt.Errorf("unknown engine backend: %q", cfg.Engine.Backend)
	}
}

// emitStage forwards stage updates when callback is configured.
func emitStage(cb func(stage string), stage string) {
	if cb != nil {
		cb(stage)
	}
}

// validateRequest checks the audio file before any engine work starts.
func validateRequest(ops fsOps, req Request) error {
	if strings.TrimSpace(req.AudioPath) == "" {
		return &domain.PipelineError{
			Stage:   "transcribing",
			Message: "audio path is required",
			Kind:    domain.ErrTranscriptionFailed,
		}
	}
	if _, err := ops.stat(req.AudioPath); err != nil {
		return &domain.PipelineError{
			Stage:   "transcribing",
			Message: fmt.Sprintf("cannot access audio: %s", req.AudioPath),
			Kind:    domain.ErrTranscriptionFailed,
			Err:     err,
		}
	}
	if _, err := domain.ParseModelSize(string(req.ModelSize)); err != nil {
		return &domain.PipelineError{
			Stage:   "transcribing",
			Message: err.Error(),
			Kind:    domain.ErrTranscriptionFailed,
			Err:     err,
		}
	}
	return nil
}

// readTranscript loads the engine's .txt output. Engines write one segment per
// line; segments are joined into a single run of text.
func readTranscript(ops fsOps, path string, log domain.CommandLog) (string, error) {
	content, err := ops.readFile(path)
	if err != nil {
		return "", &domain.PipelineError{
			Stage:      "transcribing",
			Message:    fmt.Sprintf("engine completed but transcript file is missing: %s", filepath.Base(path)),
			Kind:       domain.ErrTranscriptionFailed,
			CommandLog: log,
			Err:        err,
		}
	}
	return joinSegments(string(content)), nil
}

func joinSegments(raw string) string {
	var segments []string
	for _, line := range strings.Split(raw, "\n") {
		if segment := strings.TrimSpace(line); segment != "" {
			segments = append(segments, segment)
		}
	}
	return strings.Join(segments, " ")
}

// transcriptBase names engine output after the audio file.
func transcriptBase(audioPath string) string {
	base := filepath.Base(audioPath)
	name := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "transcript"
	}
	return name
}
