package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"yt2text/internal/command"
	"yt2text/internal/domain"
)

// TestWhisperCPPRunSuccess checks ffmpeg then whisper.cpp with tier model lookup.
func TestWhisperCPPRunSuccess(t *testing.T) {
	root := t.TempDir()
	audioPath := filepath.Join(root, "meeting.mp4")
	modelDir := filepath.Join(root, "models")
	mustWriteFile(t, audioPath, "media")
	mustWriteFile(t, filepath.Join(modelDir, "ggml-medium.bin"), "model")

	call := 0
	var whisperArgs []string
	var tempDir string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (command.Result, error) {
			call++
			switch call {
			case 1:
				if name != "ffmpeg-custom" {
					t.Fatalf("command 1 name = %q, want ffmpeg-custom", name)
				}
				outPath := args[len(args)-1]
				tempDir = filepath.Dir(outPath)
				mustWriteFile(t, outPath, "wav")
				return command.Result{Stdout: "ffmpeg ok"}, nil
			case 2:
				if name != "whisper-cli" {
					t.Fatalf("command 2 name = %q, want whisper-cli", name)
				}
				whisperArgs = append([]string{}, args...)
				mustWriteFile(t, argValue(args, "-of")+".txt", "hello world")
				return command.Result{Stdout: "whisper ok"}, nil
			default:
				t.Fatalf("unexpected command call: %d", call)
				return command.Result{}, nil
			}
		},
	}

	engine := NewWhisperCPP("ffmpeg-custom", "whisper-cli", modelDir, root, runner)
	var logs []domain.CommandLog
	result, err := engine.Transcribe(context.Background(), Request{
		AudioPath: audioPath,
		ModelSize: domain.ModelSizeMedium,
		Language:  domain.LanguageArabic,
		Device:    domain.Device{Kind: domain.DeviceCPU},
		OnLog:     func(log domain.CommandLog) { logs = append(logs, log) },
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if result.Text != "hello world" {
		t.Fatalf("text = %q", result.Text)
	}
	if len(result.Logs) != 2 || len(logs) != 2 {
		t.Fatalf("logs = %d/%d, want 2", len(result.Logs), len(logs))
	}
	if got := argValue(whisperArgs, "-m"); got != filepath.Join(modelDir, "ggml-medium.bin") {
		t.Fatalf("model = %q", got)
	}
	if got := argValue(whisperArgs, "-l"); got != "ar" {
		t.Fatalf("language = %q, want ar", got)
	}
	if !hasArg(whisperArgs, "-ng") {
		t.Fatalf("expected -ng on CPU: %v", whisperArgs)
	}
	if _, err := os.Stat(tempDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp dir should be removed, stat err = %v", err)
	}
}

// TestWhisperCPPMissingModel checks tier model validation.
func TestWhisperCPPMissingModel(t *testing.T) {
	root := t.TempDir()
	audioPath := filepath.Join(root, "clip.wav")
	mustWriteFile(t, audioPath, "wav")

	engine := NewWhisperCPP("ffmpeg", "whisper-cli", filepath.Join(root, "models"), root, &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (command.Result, error) {
			t.Fatalf("unexpected command %s", name)
			return command.Result{}, nil
		},
	})
	_, err := engine.Transcribe(context.Background(), Request{
		AudioPath: audioPath,
		ModelSize: domain.ModelSizeLarge,
		Language:  domain.LanguageEnglish,
	})
	if !errors.Is(err, domain.ErrTranscriptionFailed) {
		t.Fatalf("error = %v, want ErrTranscriptionFailed", err)
	}
}

// TestWhisperCPPFFmpegFailure checks conversion error path and cleanup.
func TestWhisperCPPFFmpegFailure(t *testing.T) {
	root := t.TempDir()
	audioPath := filepath.Join(root, "clip.mp4")
	modelDir := filepath.Join(root, "models")
	mustWriteFile(t, audioPath, "media")
	mustWriteFile(t, filepath.Join(modelDir, "ggml-small.bin"), "model")

	var tempDir string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (command.Result, error) {
			tempDir = filepath.Dir(args[len(args)-1])
			return command.Result{Stderr: "ffmpeg failed", ExitCode: 1}, errors.New("exit status 1")
		},
	}

	_, err := NewWhisperCPP("ffmpeg", "whisper-cli", modelDir, root, runner).Transcribe(context.Background(), Request{
		AudioPath: audioPath,
		ModelSize: domain.ModelSizeSmall,
		Language:  domain.LanguageEnglish,
	})

	var pErr *domain.PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *domain.PipelineError", err)
	}
	if pErr.Stage != "preprocessing" {
		t.Fatalf("stage = %s, want preprocessing", pErr.Stage)
	}
	if pErr.CommandLog.ExitCode != 1 {
		t.Fatalf("exit code = %d, want 1", pErr.CommandLog.ExitCode)
	}
	if _, statErr := os.Stat(tempDir); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("temp dir should be removed on failure, stat err = %v", statErr)
	}
}

// TestBuildFFmpegArgs verifies deterministic ffmpeg command arguments.
func TestBuildFFmpegArgs(t *testing.T) {
	args := buildFFmpegArgs("/in.mp4", "/tmp/out.wav")
	want := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", "/in.mp4",
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"/tmp/out.wav",
	}

	if len(args) != len(want) {
		t.Fatalf("args len = %d, want %d", len(args), len(want))
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

// TestBuildWhisperCPPArgsGPU verifies no -ng on an accelerator.
func TestBuildWhisperCPPArgsGPU(t *testing.T) {
	args := buildWhisperCPPArgs("/m.bin", "/a.wav", "/out/base", domain.LanguageEnglish, domain.Device{Kind: domain.DeviceCUDA})
	if hasArg(args, "-ng") {
		t.Fatalf("did not expect -ng in args: %v", args)
	}
	if got := argValue(args, "-l"); got != "en" {
		t.Fatalf("language arg = %q, want en", got)
	}
}

// TestModelCatalogMarksDownloaded verifies local model discovery.
func TestModelCatalogMarksDownloaded(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "ggml-small.bin"), "model")

	models := ModelCatalog(dir)
	if len(models) != len(domain.ModelSizes) {
		t.Fatalf("models = %d, want %d", len(models), len(domain.ModelSizes))
	}
	for _, m := range models {
		if m.Size == domain.ModelSizeSmall && !m.Downloaded {
			t.Fatal("small should be marked downloaded")
		}
		if m.Size != domain.ModelSizeSmall && m.Downloaded {
			t.Fatalf("%s should not be marked downloaded", m.Size)
		}
	}
}
