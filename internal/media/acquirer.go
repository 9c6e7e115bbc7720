package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/google/uuid"

	"yt2text/internal/command"
	"yt2text/internal/domain"
)

const downloadedBaseName = "audio"

// Artifact is the local audio file a run transcribes.
type Artifact struct {
	Path       string
	Downloaded bool
	dir        string
	removeAll  func(string) error
}

// Dir returns the per-run temp directory of a downloaded artifact.
func (a *Artifact) Dir() string {
	if a == nil {
		return ""
	}
	return a.dir
}

// Cleanup removes the per-run download directory. Local inputs are never touched.
func (a *Artifact) Cleanup() error {
	if a == nil || a.dir == "" {
		return nil
	}

	removeAll := a.removeAll
	if removeAll == nil {
		removeAll = os.RemoveAll
	}
	if err := removeAll(a.dir); err != nil {
		return fmt.Errorf("remove %s: %w", a.dir, err)
	}
	a.dir = ""
	return nil
}

// Acquirer turns a URL or a local path into a local audio file.
type Acquirer struct {
	downloaderPath string
	audioFormat    string
	workDir        string
	runner         command.Runner
	stat           func(name string) (os.FileInfo, error)
	mkdirAll       func(path string, perm os.FileMode) error
	removeAll      func(path string) error
	newID          func() string
}

// NewAcquirer constructs the production acquirer.
func NewAcquirer(downloaderPath, audioFormat, workDir string, runner command.Runner) *Acquirer {
	if audioFormat == "" {
		audioFormat = "mp3"
	}
	return &Acquirer{
		downloaderPath: downloaderPath,
		audioFormat:    audioFormat,
		workDir:        workDir,
		runner:         runner,
		stat:           os.Stat,
		mkdirAll:       os.MkdirAll,
		removeAll:      os.RemoveAll,
		newID:          uuid.NewString,
	}
}

// IsURL reports whether input carries a recognized remote scheme.
func IsURL(input string) bool {
	s := strings.ToLower(strings.TrimSpace(input))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Resolve downloads URL inputs and validates local ones.
func (a *Acquirer) Resolve(ctx context.Context, input string, onLog func(domain.CommandLog)) (*Artifact, error) {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return nil, domain.ErrNoInputProvided
	case IsURL(input):
		return a.Download(ctx, input, onLog)
	default:
		path, err := a.ValidateLocal(input)
		if err != nil {
			return nil, err
		}
		return &Artifact{Path: path}, nil
	}
}

// ValidateLocal returns path unchanged when it exists.
func (a *Acquirer) ValidateLocal(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", domain.ErrNoInputProvided
	}
	info, err := a.stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	return path, nil
}

// Download fetches best-quality audio into a fresh per-run directory.
func (a *Acquirer) Download(ctx context.Context, url string, onLog func(domain.CommandLog)) (*Artifact, error) {
	dir := a.runDir()
	if err := a.mkdirAll(dir, 0o755); err != nil {
		return nil, &domain.PipelineError{
			Stage:   "downloading",
			Message: "failed to create temporary workspace",
			Kind:    domain.ErrDownloadFailed,
			Err:     err,
		}
	}

	outPath := filepath.Join(dir, downloadedBaseName+"."+a.audioFormat)
	args := buildDownloadArgs(url, filepath.Join(dir, downloadedBaseName+".%(ext)s"), a.audioFormat)
	logger.Debugf(ctx, "downloading %s into %s", url, dir)

	log, err := command.RunLogged(ctx, a.runner, onLog, a.downloaderPath, args...)
	if err != nil {
		_ = a.removeAll(dir)
		return nil, &domain.PipelineError{
			Stage:      "downloading",
			Message:    "yt-dlp download failed",
			Kind:       domain.ErrDownloadFailed,
			CommandLog: log,
			Err:        err,
		}
	}

	if _, err := a.stat(outPath); err != nil {
		_ = a.removeAll(dir)
		return nil, &domain.PipelineError{
			Stage:      "downloading",
			Message:    "yt-dlp completed but audio file is missing",
			Kind:       domain.ErrDownloadFailed,
			CommandLog: log,
			Err:        err,
		}
	}

	return &Artifact{
		Path:       outPath,
		Downloaded: true,
		dir:        dir,
		removeAll:  a.removeAll,
	}, nil
}

// runDir is unique per call so repeated or overlapping runs never share files.
func (a *Acquirer) runDir() string {
	base := a.workDir
	if base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "yt2text-"+a.newID())
}

// buildDownloadArgs builds yt-dlp args for audio-only extraction.
func buildDownloadArgs(url, outputTemplate, audioFormat string) []string {
	return []string{
		"-f", "bestaudio",
		"-x",
		"--audio-format", audioFormat,
		"--no-playlist",
		"-o", outputTemplate,
		url,
	}
}

// NewAcquirerForTests creates an acquirer with injectable dependencies.
func NewAcquirerForTests(
	downloaderPath string,
	workDir string,
	runner command.Runner,
	newID func() string,
) *Acquirer {
	a := NewAcquirer(downloaderPath, "mp3", workDir, runner)
	a.newID = newID
	return a
}

// NewArtifactForTests creates a downloaded artifact with injectable removal.
func NewArtifactForTests(path, dir string, removeAll func(string) error) *Artifact {
	return &Artifact{
		Path:       path,
		Downloaded: true,
		dir:        dir,
		removeAll:  removeAll,
	}
}
