package transcribe

import (
	"context"
	"path/filepath"

	"github.com/facebookincubator/go-belt/tool/logger"

	"yt2text/internal/command"
	"yt2text/internal/domain"
)

// WhisperCLI drives the openai-whisper command line tool, which loads the model
// by tier name and places it on the requested device itself.
type WhisperCLI struct {
	whisperPath string
	modelDir    string
	workDir     string
	runner      command.Runner
	fs          fsOps
}

// NewWhisperCLI constructs the openai-whisper backend.
func NewWhisperCLI(whisperPath, modelDir, workDir string, runner command.Runner) *WhisperCLI {
	return &WhisperCLI{
		whisperPath: whisperPath,
		modelDir:    modelDir,
		workDir:     workDir,
		runner:      runner,
		fs:          osOps(),
	}
}

// Transcribe runs one whisper invocation and returns its text output.
func (w *WhisperCLI) Transcribe(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(w.fs, req); err != nil {
		return Result{}, err
	}

	outDir, err := w.fs.mkdirTemp(w.workDir, "yt2text-whisper-*")
	if err != nil {
		return Result{}, &domain.PipelineError{
			Stage:   "transcribing",
			Message: "failed to create temporary workspace",
			Kind:    domain.ErrTranscriptionFailed,
			Err:     err,
		}
	}
	defer func() {
		if err := w.fs.removeAll(outDir); err != nil {
			logger.Warnf(ctx, "cannot remove %s: %v", outDir, err)
		}
	}()

	emitStage(req.OnStage, "transcribing")
	args := buildWhisperCLIArgs(req, w.modelDir, outDir)
	logger.Debugf(ctx, "running %s %v", w.whisperPath, args)

	log, err := command.RunLogged(ctx, w.runner, req.OnLog, w.whisperPath, args...)
	if err != nil {
		return Result{}, &domain.PipelineError{
			Stage:      "transcribing",
			Message:    "whisper transcription failed",
			Kind:       domain.ErrTranscriptionFailed,
			CommandLog: log,
			Err:        err,
		}
	}

	text, err := readTranscript(w.fs, filepath.Join(outDir, transcriptBase(req.AudioPath)+".txt"), log)
	if err != nil {
		return Result{}, err
	}

	return Result{Text: text, Logs: []domain.CommandLog{log}}, nil
}

// buildWhisperCLIArgs requests plain-text output; fp16 only on an accelerator.
func buildWhisperCLIArgs(req Request, modelDir, outDir string) []string {
	fp16 := "False"
	device := string(domain.DeviceCPU)
	if req.Device.Accelerated() {
		fp16 = "True"
		device = string(domain.DeviceCUDA)
	}

	args := []string{
		req.AudioPath,
		"--model", string(req.ModelSize),
		"--language", req.Language.Code(),
		"--task", "transcribe",
		"--device", device,
		"--fp16", fp16,
		"--output_format", "txt",
		"--output_dir", outDir,
		"--verbose", "False",
	}
	if modelDir != "" {
		args = append(args, "--model_dir", modelDir)
	}
	return args
}
