package transcribe

import (
	"context"
	"errors"
	"testing"

	"yt2text/internal/command"
	"yt2text/internal/config"
	"yt2text/internal/domain"
)

// TestDetectDeviceAutoFindsGPU checks accelerator detection.
func TestDetectDeviceAutoFindsGPU(t *testing.T) {
	runner := &fakeRunner{run: func(ctx context.Context, name string, args ...string) (command.Result, error) {
		return command.Result{Stdout: "NVIDIA GeForce RTX 3060\n"}, nil
	}}

	got := DetectDevice(context.Background(), runner, "nvidia-smi", config.DeviceAuto)
	if got.Kind != domain.DeviceCUDA || got.Name != "NVIDIA GeForce RTX 3060" {
		t.Fatalf("device = %+v", got)
	}
}

// TestDetectDeviceAutoFallsBackToCPU checks missing tool fallback.
func TestDetectDeviceAutoFallsBackToCPU(t *testing.T) {
	runner := &fakeRunner{run: func(ctx context.Context, name string, args ...string) (command.Result, error) {
		return command.Result{ExitCode: -1}, errors.New("not found")
	}}

	got := DetectDevice(context.Background(), runner, "nvidia-smi", config.DeviceAuto)
	if got.Kind != domain.DeviceCPU {
		t.Fatalf("device = %+v, want cpu", got)
	}
}

// TestDetectDeviceForcedCPU never queries the GPU tool.
func TestDetectDeviceForcedCPU(t *testing.T) {
	runner := &fakeRunner{run: func(ctx context.Context, name string, args ...string) (command.Result, error) {
		t.Fatal("GPU query should not run")
		return command.Result{}, nil
	}}

	got := DetectDevice(context.Background(), runner, "nvidia-smi", config.DeviceCPU)
	if got.Kind != domain.DeviceCPU {
		t.Fatalf("device = %+v, want cpu", got)
	}
}
