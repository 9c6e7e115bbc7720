package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"

	"yt2text/internal/command"
	"yt2text/internal/config"
	"yt2text/internal/controller"
	"yt2text/internal/domain"
	"yt2text/internal/media"
	"yt2text/internal/transcribe"
)

// NewLogger returns a logrus-backed logger at the named level.
func NewLogger(levelName string) (logger.Logger, error) {
	level := logger.LevelInfo
	if name := strings.TrimSpace(levelName); name != "" {
		if err := level.Set(name); err != nil {
			return nil, fmt.Errorf("log level %q: %w", name, err)
		}
	}
	return logrus.Default().WithLevel(level), nil
}

// WithLogger attaches l to ctx and makes it the process default.
func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	logger.Default = func() logger.Logger {
		return l
	}
	return logger.CtxWithLogger(ctx, l)
}

// Services are the long-lived collaborators shared by the desktop and CLI front ends.
type Services struct {
	Config     config.Config
	Runner     command.Runner
	Device     domain.Device
	Controller *controller.Controller
}

// BuildServices detects the compute device and wires the controller for cfg.
// The device is fixed for the lifetime of the returned services.
func BuildServices(ctx context.Context, cfg config.Config, runner command.Runner) (*Services, error) {
	device := transcribe.DetectDevice(ctx, runner, cfg.Tools.GPUQuery, cfg.Engine.Device)

	engine, err := transcribe.NewEngine(cfg, runner)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	ctrl := controller.New(controller.Options{
		Acquirer: media.NewAcquirer(cfg.Tools.Downloader, cfg.Download.AudioFormat, cfg.WorkDir, runner),
		Prober:   media.NewDurationProber(cfg.Tools.Probe, runner, cfg.Probe.CacheSize),
		Engine:   engine,
		Device:   device,
	})

	return &Services{
		Config:     cfg,
		Runner:     runner,
		Device:     device,
		Controller: ctrl,
	}, nil
}
