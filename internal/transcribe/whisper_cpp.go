package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/facebookincubator/go-belt/tool/logger"

	"yt2text/internal/command"
	"yt2text/internal/domain"
)

// WhisperCPP orchestrates ffmpeg preprocessing and whisper.cpp transcription.
type WhisperCPP struct {
	ffmpegPath  string
	whisperPath string
	modelDir    string
	workDir     string
	runner      command.Runner
	fs          fsOps
}

// NewWhisperCPP constructs the whisper.cpp backend.
func NewWhisperCPP(ffmpegPath, whisperPath, modelDir, workDir string, runner command.Runner) *WhisperCPP {
	return &WhisperCPP{
		ffmpegPath:  ffmpegPath,
		whisperPath: whisperPath,
		modelDir:    modelDir,
		workDir:     workDir,
		runner:      runner,
		fs:          osOps(),
	}
}

// Transcribe converts audio to 16 kHz mono WAV and runs whisper.cpp on it.
func (w *WhisperCPP) Transcribe(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(w.fs, req); err != nil {
		return Result{}, err
	}

	modelPath, err := w.resolveModelPath(req.ModelSize)
	if err != nil {
		return Result{}, &domain.PipelineError{
			Stage:   "transcribing",
			Message: err.Error(),
			Kind:    domain.ErrTranscriptionFailed,
			Err:     err,
		}
	}

	tempDir, err := w.fs.mkdirTemp(w.workDir, "yt2text-wav-*")
	if err != nil {
		return Result{}, &domain.PipelineError{
			Stage:   "preprocessing",
			Message: "failed to create temporary workspace",
			Kind:    domain.ErrTranscriptionFailed,
			Err:     err,
		}
	}
	defer func() {
		if err := w.fs.removeAll(tempDir); err != nil {
			logger.Warnf(ctx, "cannot remove %s: %v", tempDir, err)
		}
	}()

	wavPath := filepath.Join(tempDir, "preprocessed-16k-mono.wav")
	emitStage(req.OnStage, "preprocessing")
	ffmpegLog, err := command.RunLogged(ctx, w.runner, req.OnLog, w.ffmpegPath, buildFFmpegArgs(req.AudioPath, wavPath)...)
	if err != nil {
		return Result{}, &domain.PipelineError{
			Stage:      "preprocessing",
			Message:    "ffmpeg audio conversion failed",
			Kind:       domain.ErrTranscriptionFailed,
			CommandLog: ffmpegLog,
			Err:        err,
		}
	}
	if _, err := w.fs.stat(wavPath); err != nil {
		return Result{}, &domain.PipelineError{
			Stage:      "preprocessing",
			Message:    "ffmpeg completed but output file is missing",
			Kind:       domain.ErrTranscriptionFailed,
			CommandLog: ffmpegLog,
			Err:        err,
		}
	}

	textBase := filepath.Join(tempDir, transcriptBase(req.AudioPath))
	emitStage(req.OnStage, "transcribing")
	whisperArgs := buildWhisperCPPArgs(modelPath, wavPath, textBase, req.Language, req.Device)
	whisperLog, err := command.RunLogged(ctx, w.runner, req.OnLog, w.whisperPath, whisperArgs...)
	if err != nil {
		return Result{}, &domain.PipelineError{
			Stage:      "transcribing",
			Message:    "whisper.cpp transcription failed",
			Kind:       domain.ErrTranscriptionFailed,
			CommandLog: whisperLog,
			Err:        err,
		}
	}

	text, err := readTranscript(w.fs, textBase+".txt", whisperLog)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Text: text,
		Logs: []domain.CommandLog{ffmpegLog, whisperLog},
	}, nil
}

// resolveModelPath maps a tier to its ggml file inside the model directory.
func (w *WhisperCPP) resolveModelPath(size domain.ModelSize) (string, error) {
	model, ok := ModelForSize(size)
	if !ok {
		return "", fmt.Errorf("no whisper.cpp model for tier %q", size)
	}
	if w.modelDir == "" {
		return "", fmt.Errorf("model directory is required")
	}

	path := filepath.Join(w.modelDir, model.FileName)
	info, err := w.fs.stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("model file not found: %s (download the %s model first)", path, size)
		}
		return "", fmt.Errorf("cannot access model file: %s", path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("model path is a directory: %s", path)
	}
	return path, nil
}

// buildFFmpegArgs builds preprocessing CLI args for mono 16k PCM WAV output.
func buildFFmpegArgs(inputPath, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outPath,
	}
}

// buildWhisperCPPArgs builds whisper.cpp args for txt transcript export.
func buildWhisperCPPArgs(modelPath, audioPath, textBase string, language domain.Language, device domain.Device) []string {
	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"-of", textBase,
		"-otxt",
		"-l", language.Code(),
	}
	if !device.Accelerated() {
		args = append(args, "-ng")
	}
	return args
}
