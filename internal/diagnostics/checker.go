package diagnostics

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-version"

	"yt2text/internal/command"
	"yt2text/internal/config"
	"yt2text/internal/domain"
	"yt2text/internal/transcribe"
)

// MinDownloaderVersion is the oldest yt-dlp known to handle current sites.
const MinDownloaderVersion = "2023.03.04"

// Checker validates external tools and required filesystem paths.
type Checker struct {
	lookPath   func(string) (string, error)
	runner     command.Runner
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker(runner command.Runner) *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		runner:     runner,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(ctx context.Context, cfg config.Config, device domain.Device) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkTool("downloader", cfg.Tools.Downloader, "Install yt-dlp (https://github.com/yt-dlp/yt-dlp) to transcribe from URLs."),
		c.checkDownloaderVersion(ctx, cfg.Tools.Downloader),
		c.checkTool("probe", cfg.Tools.Probe, "Install ffmpeg, which ships ffprobe. Durations are informational only."),
		c.checkTool("whisper", cfg.Tools.Whisper, whisperHint(cfg.Engine.Backend)),
	}
	if cfg.Engine.Backend == config.BackendWhisperCPP {
		items = append(items,
			c.checkTool("ffmpeg", cfg.Tools.FFmpeg, "whisper.cpp needs ffmpeg to convert audio to 16 kHz WAV."),
			checkModels(cfg.Engine.ModelDir),
		)
	}
	items = append(items, c.checkWorkDir(cfg.WorkDir), checkDevice(device))

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Device:      device,
		Items:       items,
	}
}

func whisperHint(backend string) string {
	if backend == config.BackendWhisperCPP {
		return "Build whisper.cpp and put whisper-cli on PATH, or set tools.whisper in config.yaml."
	}
	return "Install openai-whisper (pip install -U openai-whisper) so the whisper command is on PATH."
}

// checkTool verifies a required CLI executable is on PATH.
func (c *Checker) checkTool(id, name, hint string) domain.DiagnosticItem {
	path, err := c.lookPath(name)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      "tool_" + id,
			Name:    name,
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("Tool not found in PATH: %s", name),
			Hint:    hint,
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_" + id,
		Name:    name,
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkDownloaderVersion warns when yt-dlp is older than MinDownloaderVersion.
func (c *Checker) checkDownloaderVersion(ctx context.Context, name string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "downloader_version",
		Name: name + " version",
	}

	result, err := c.runner.Run(ctx, name, "--version")
	if err != nil {
		item.Status = domain.DiagnosticStatusWarn
		item.Message = fmt.Sprintf("Cannot determine %s version: %v", name, err)
		return item
	}

	raw := strings.TrimSpace(result.Stdout)
	current, err := version.NewVersion(raw)
	if err != nil {
		item.Status = domain.DiagnosticStatusWarn
		item.Message = fmt.Sprintf("Unrecognized %s version %q", name, raw)
		return item
	}

	minimum := version.Must(version.NewVersion(MinDownloaderVersion))
	if current.LessThan(minimum) {
		item.Status = domain.DiagnosticStatusWarn
		item.Message = fmt.Sprintf("%s %s is older than %s", name, raw, MinDownloaderVersion)
		item.Hint = "Run `yt-dlp -U` to update; old releases often fail on current sites."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("%s %s", name, raw)
	return item
}

// checkModels reports which whisper.cpp tiers are present in modelDir.
func checkModels(modelDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "models",
		Name: "Whisper models",
	}

	var present, missing []string
	for _, model := range transcribe.ModelCatalog(modelDir) {
		if model.Downloaded {
			present = append(present, string(model.Size))
		} else {
			missing = append(missing, string(model.Size))
		}
	}

	switch {
	case len(present) == 0:
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("No model files found in: %s", modelDir)
		item.Hint = "Download at least one model tier from the model list."
	case len(missing) > 0:
		item.Status = domain.DiagnosticStatusWarn
		item.Message = fmt.Sprintf("Available: %s; missing: %s", strings.Join(present, ", "), strings.Join(missing, ", "))
	default:
		item.Status = domain.DiagnosticStatusPass
		item.Message = "All model tiers available"
	}
	return item
}

// checkWorkDir validates the temp directory downloads are written to.
func (c *Checker) checkWorkDir(workDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "work_dir",
		Name: "Work directory",
	}

	dir := workDir
	if strings.TrimSpace(dir) == "" {
		dir = os.TempDir()
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create work directory: %s", dir)
		item.Hint = "Choose a writable location for work_dir or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Work directory is not writable: %s", dir)
		item.Hint = "Choose a writable work_dir; downloaded audio is stored there during a run."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

func checkDevice(device domain.Device) domain.DiagnosticItem {
	return domain.DiagnosticItem{
		ID:      "device",
		Name:    "Compute device",
		Status:  domain.DiagnosticStatusPass,
		Message: device.Label(),
	}
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	runner command.Runner,
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		runner:     runner,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
