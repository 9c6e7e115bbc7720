package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLanguageCode(t *testing.T) {
	require.Equal(t, "en", LanguageEnglish.Code())
	require.Equal(t, "ar", LanguageArabic.Code())
}

func TestParseLanguage(t *testing.T) {
	for raw, want := range map[string]Language{
		"English": LanguageEnglish,
		" en ":    LanguageEnglish,
		"ARABIC":  LanguageArabic,
		"ar":      LanguageArabic,
	} {
		got, err := ParseLanguage(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	_, err := ParseLanguage("fr")
	require.Error(t, err)
}

func TestParseModelSize(t *testing.T) {
	got, err := ParseModelSize(" Large ")
	require.NoError(t, err)
	require.Equal(t, ModelSizeLarge, got)

	_, err = ParseModelSize("tiny")
	require.Error(t, err)
}

func TestDeviceLabel(t *testing.T) {
	require.Equal(t, "Using CPU", Device{Kind: DeviceCPU}.Label())
	require.Equal(t, "Using GPU: RTX 4090", Device{Kind: DeviceCUDA, Name: "RTX 4090"}.Label())
	require.True(t, Device{Kind: DeviceCUDA}.Accelerated())
}

func TestPipelineErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := error(&PipelineError{
		Stage:   "downloading",
		Message: "yt-dlp failed",
		Kind:    ErrDownloadFailed,
		CommandLog: CommandLog{
			Command:  "yt-dlp",
			Args:     []string{"-x", "https://example.com/v"},
			ExitCode: 1,
			Stderr:   "ERROR: unsupported URL",
		},
		Err: cause,
	})

	require.ErrorIs(t, err, ErrDownloadFailed)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrTranscriptionFailed)
	require.Equal(t, "downloading: yt-dlp failed (cmd=yt-dlp exit=1)", err.Error())

	detail := ErrorDetail(err)
	require.Contains(t, detail, "ERROR: unsupported URL")
	require.Contains(t, detail, "command: yt-dlp -x https://example.com/v")
}
