package command

import (
	"context"
	"errors"
	"testing"

	"yt2text/internal/domain"
)

// TestRunLoggedForwardsLog checks that command logs reach the callback.
func TestRunLoggedForwardsLog(t *testing.T) {
	runner := RunnerFunc(func(ctx context.Context, name string, args ...string) (Result, error) {
		return Result{Stdout: "ok", ExitCode: 0}, nil
	})

	var got []domain.CommandLog
	log, err := RunLogged(context.Background(), runner, func(l domain.CommandLog) {
		got = append(got, l)
	}, "tool", "-a", "b")
	if err != nil {
		t.Fatalf("RunLogged() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("callbacks = %d, want 1", len(got))
	}
	if log.Command != "tool" || len(log.Args) != 2 || log.Stdout != "ok" {
		t.Fatalf("unexpected log: %+v", log)
	}
}

// TestRunLoggedKeepsFailureContext checks exit code propagation.
func TestRunLoggedKeepsFailureContext(t *testing.T) {
	runner := RunnerFunc(func(ctx context.Context, name string, args ...string) (Result, error) {
		return Result{Stderr: "boom", ExitCode: 2}, errors.New("exit status 2")
	})

	log, err := RunLogged(context.Background(), runner, nil, "tool")
	if err == nil {
		t.Fatal("expected error")
	}
	if log.ExitCode != 2 || log.Stderr != "boom" {
		t.Fatalf("unexpected log: %+v", log)
	}
}

// TestExecRunnerMissingBinary reports -1 when the process never started.
func TestExecRunnerMissingBinary(t *testing.T) {
	result, err := NewExecRunner().Run(context.Background(), "yt2text-definitely-missing-binary")
	if err == nil {
		t.Fatal("expected error")
	}
	if result.ExitCode != -1 {
		t.Fatalf("exit code = %d, want -1", result.ExitCode)
	}
}
