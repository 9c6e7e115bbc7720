package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoInputProvided is returned when Start finds neither a URL nor a local file.
	ErrNoInputProvided = errors.New("no input provided: paste a URL or drop a file")
	// ErrInvalidInput is returned for local paths that do not exist.
	ErrInvalidInput = errors.New("input file does not exist")
	// ErrDownloadFailed marks failures of the external downloader.
	ErrDownloadFailed = errors.New("download failed")
	// ErrTranscriptionFailed marks failures of the speech engine.
	ErrTranscriptionFailed = errors.New("transcription failed")
	// ErrNothingToExport is returned when no transcript is held.
	ErrNothingToExport = errors.New("no transcript available to export")
)

// CommandLog captures one external command invocation result.
type CommandLog struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exitCode"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
}

// PipelineError is a stage-aware error with optional command context.
type PipelineError struct {
	Stage      string     `json:"stage"`
	Message    string     `json:"message"`
	Kind       error      `json:"-"`
	CommandLog CommandLog `json:"commandLog"`
	Trace      string     `json:"trace,omitempty"`
	Err        error      `json:"-"`
}

// Error formats pipeline failures for logs and UI.
func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	if e.CommandLog.Command == "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}

	return fmt.Sprintf(
		"%s: %s (cmd=%s exit=%d)",
		e.Stage,
		e.Message,
		e.CommandLog.Command,
		e.CommandLog.ExitCode,
	)
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause.
func (e *PipelineError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Detail renders the full diagnostic text for the log area.
func (e *PipelineError) Detail() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(e.Error())
	if e.Err != nil {
		fmt.Fprintf(&b, "\ncause: %v", e.Err)
	}
	if log := e.CommandLog; log.Command != "" {
		fmt.Fprintf(&b, "\ncommand: %s %s", log.Command, strings.Join(log.Args, " "))
		fmt.Fprintf(&b, "\nexit code: %d", log.ExitCode)
		if s := strings.TrimSpace(log.Stdout); s != "" {
			fmt.Fprintf(&b, "\nstdout:\n%s", s)
		}
		if s := strings.TrimSpace(log.Stderr); s != "" {
			fmt.Fprintf(&b, "\nstderr:\n%s", s)
		}
	}
	if e.Trace != "" {
		fmt.Fprintf(&b, "\n%s", e.Trace)
	}
	return b.String()
}

// ErrorDetail returns PipelineError.Detail when available, else err.Error().
func ErrorDetail(err error) string {
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return pErr.Detail()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
