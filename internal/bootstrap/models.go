package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"

	"yt2text/internal/domain"
	"yt2text/internal/transcribe"
)

const modelDownloadTimeout = 45 * time.Minute

// GetWhisperModels returns the model tiers and whether each is already downloaded.
func (a *App) GetWhisperModels() []domain.WhisperModelOption {
	return transcribe.ModelCatalog(a.cfg.Engine.ModelDir)
}

// DownloadWhisperModel fetches the whisper.cpp model file for a tier into the
// configured model directory and refreshes diagnostics.
func (a *App) DownloadWhisperModel(size string) (domain.WhisperModelOption, error) {
	tier, err := domain.ParseModelSize(strings.TrimSpace(size))
	if err != nil {
		return domain.WhisperModelOption{}, err
	}

	model, found := transcribe.ModelForSize(tier)
	if !found {
		return domain.WhisperModelOption{}, fmt.Errorf("no downloadable model for tier %s", tier)
	}

	modelDir := strings.TrimSpace(a.cfg.Engine.ModelDir)
	if modelDir == "" {
		return domain.WhisperModelOption{}, fmt.Errorf("engine.model_dir is not configured")
	}

	ctx := a.loggerContext()
	targetPath := filepath.Join(modelDir, model.FileName)
	logger.Infof(ctx, "downloading %s to %s", model.URL, targetPath)
	if err := a.download(ctx, targetPath, model.URL); err != nil {
		return domain.WhisperModelOption{}, fmt.Errorf("download model %s: %w", model.Name, err)
	}

	a.RefreshDiagnostics()

	model.Downloaded = true
	model.LocalPath = targetPath
	return model, nil
}

// downloadURLToFile streams sourceURL into destinationPath via a temp file so
// an interrupted download never leaves a truncated model behind.
func downloadURLToFile(ctx context.Context, destinationPath string, sourceURL string) error {
	if err := os.MkdirAll(filepath.Dir(destinationPath), 0o755); err != nil {
		return fmt.Errorf("prepare destination directory: %w", err)
	}

	tmpPath := destinationPath + ".download"
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale temp file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, modelDownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "yt2text")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	_, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write destination file: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close destination file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destinationPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move downloaded file into place: %w", err)
	}
	return nil
}
