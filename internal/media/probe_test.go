package media

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"yt2text/internal/command"
)

func TestProbeParsesBareNumber(t *testing.T) {
	var gotArgs []string
	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Result, error) {
		require.Equal(t, "ffprobe", name)
		gotArgs = args
		return command.Result{Stdout: "192.480000\n"}, nil
	})

	p := NewDurationProber("ffprobe", runner, 0)
	require.InDelta(t, 192.48, p.Probe(context.Background(), "/tmp/x.mp3"), 1e-9)
	require.Equal(t, "format=duration", argValue(gotArgs, "-show_entries"))
	require.Equal(t, "/tmp/x.mp3", gotArgs[len(gotArgs)-1])
}

func TestProbeReturnsZeroOnFailure(t *testing.T) {
	for name, runner := range map[string]command.RunnerFunc{
		"tool missing": func(ctx context.Context, name string, args ...string) (command.Result, error) {
			return command.Result{ExitCode: -1}, errors.New("executable file not found")
		},
		"non numeric": func(ctx context.Context, name string, args ...string) (command.Result, error) {
			return command.Result{Stdout: "N/A"}, nil
		},
		"empty": func(ctx context.Context, name string, args ...string) (command.Result, error) {
			return command.Result{}, nil
		},
		"nan": func(ctx context.Context, name string, args ...string) (command.Result, error) {
			return command.Result{Stdout: "NaN"}, nil
		},
	} {
		t.Run(name, func(t *testing.T) {
			p := NewDurationProber("ffprobe", runner, 4)
			require.Zero(t, p.Probe(context.Background(), "/tmp/x.mp3"))
		})
	}
}

func TestProbeCachesByFileIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	writeFile(t, path, "wav")

	calls := 0
	runner := command.RunnerFunc(func(ctx context.Context, name string, args ...string) (command.Result, error) {
		calls++
		return command.Result{Stdout: "12.5"}, nil
	})

	p := NewDurationProber("ffprobe", runner, 4)
	require.Equal(t, 12.5, p.Probe(context.Background(), path))
	require.Equal(t, 12.5, p.Probe(context.Background(), path))
	require.Equal(t, 1, calls)

	writeFile(t, path, "a longer wav payload")
	p.Probe(context.Background(), path)
	require.Equal(t, 2, calls)
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "3m12s", FormatDuration(192.4))
	require.Equal(t, "0s", FormatDuration(0))
}
