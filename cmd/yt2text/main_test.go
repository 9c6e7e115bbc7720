package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"yt2text/internal/command"
	"yt2text/internal/controller"
	"yt2text/internal/domain"
	"yt2text/internal/media"
	"yt2text/internal/transcribe"
)

type fixedEngine struct {
	text string
}

func (e fixedEngine) Transcribe(context.Context, transcribe.Request) (transcribe.Result, error) {
	return transcribe.Result{Text: e.text}, nil
}

func startController(t *testing.T, runner command.Runner, engine transcribe.Engine) *controller.Controller {
	t.Helper()
	ctrl := controller.New(controller.Options{
		Acquirer: media.NewAcquirer("yt-dlp", "mp3", t.TempDir(), runner),
		Engine:   engine,
		Device:   domain.Device{Kind: domain.DeviceCPU},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ctrl
}

func TestTranscribeOnceReturnsDownloadFailure(t *testing.T) {
	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Result, error) {
		return command.Result{ExitCode: 1, Stderr: "ERROR: Unsupported URL: https://example.com/video"}, errors.New("exit status 1")
	})
	ctrl := startController(t, runner, fixedEngine{text: "unused"})

	for i := 0; i < 3; i++ {
		_, err := transcribeOnce(context.Background(), ctrl, "https://example.com/video", domain.LanguageEnglish, domain.ModelSizeSmall)
		require.ErrorIs(t, err, domain.ErrDownloadFailed)
		require.NotErrorIs(t, err, domain.ErrTranscriptionFailed)
		require.Contains(t, domain.ErrorDetail(err), "ERROR: Unsupported URL")
	}
}

func TestTranscribeOnceReturnsTranscriptForLocalFile(t *testing.T) {
	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Result, error) {
		return command.Result{}, errors.New("downloader must not run for local files")
	})
	ctrl := startController(t, runner, fixedEngine{text: "مرحبا بكم"})

	input := filepath.Join(t.TempDir(), "my lecture.wav")
	require.NoError(t, os.WriteFile(input, []byte("wav"), 0o644))

	text, err := transcribeOnce(context.Background(), ctrl, input, domain.LanguageArabic, domain.ModelSizeMedium)
	require.NoError(t, err)
	require.Equal(t, "مرحبا بكم", text)
}
