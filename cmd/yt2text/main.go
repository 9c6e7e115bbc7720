package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"

	"yt2text/internal/bootstrap"
	"yt2text/internal/command"
	"yt2text/internal/config"
	"yt2text/internal/controller"
	"yt2text/internal/diagnostics"
	"yt2text/internal/domain"
	"yt2text/internal/jobs"
	"yt2text/internal/media"
)

func syntaxExit(message string) {
	fmt.Fprintf(os.Stderr, "syntax error: %s\n", message)
	pflag.Usage()
	os.Exit(2)
}

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level (overrides log_level from the config file)")
	configPath := pflag.String("config", config.DefaultPath(), "Path to config.yaml")
	languageFlag := pflag.String("language", string(domain.LanguageEnglish), "Spoken language: English or Arabic")
	modelFlag := pflag.String("model", string(domain.ModelSizeMedium), "Model size: small, medium or large")
	outputFlag := pflag.String("output", "", "Write the transcript to this file instead of stdout")
	writeConfigFlag := pflag.Bool("write-config", false, "Write the effective config to --config and exit")
	diagnoseFlag := pflag.Bool("diagnose", false, "Check external tools and exit")
	pflag.Parse()

	store := config.NewYAMLStore(*configPath)
	cfg, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	if !pflag.CommandLine.Changed("log-level") {
		if l, err = bootstrap.NewLogger(cfg.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = bootstrap.WithLogger(ctx, l)
	defer belt.Flush(ctx)

	if *writeConfigFlag {
		if err := store.Save(cfg); err != nil {
			logger.Fatal(ctx, err)
		}
		fmt.Println(store.Path())
		return
	}

	runner := command.NewExecRunner()
	services, err := bootstrap.BuildServices(ctx, cfg, runner)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	if *diagnoseFlag {
		report := diagnostics.NewChecker(runner).Run(ctx, cfg, services.Device)
		for _, item := range report.Items {
			fmt.Printf("[%s] %s: %s\n", item.Status, item.Name, item.Message)
			if item.Hint != "" {
				fmt.Printf("       %s\n", item.Hint)
			}
		}
		if report.HasFailures {
			os.Exit(1)
		}
		return
	}

	if pflag.NArg() != 1 {
		syntaxExit("expected one argument (URL or media file)")
	}
	language, err := domain.ParseLanguage(*languageFlag)
	if err != nil {
		syntaxExit(err.Error())
	}
	modelSize, err := domain.ParseModelSize(*modelFlag)
	if err != nil {
		syntaxExit(err.Error())
	}

	ctrl := services.Controller
	loopCtx, stopLoop := context.WithCancel(ctx)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = ctrl.Run(loopCtx)
	}()
	shutdown := func() {
		stopLoop()
		<-loopDone
		belt.Flush(ctx)
	}

	fmt.Fprintln(os.Stderr, services.Device.Label())
	text, err := transcribeOnce(ctx, ctrl, pflag.Arg(0), language, modelSize)
	if err != nil {
		shutdown()
		fmt.Fprintln(os.Stderr, domain.ErrorDetail(err))
		os.Exit(1)
	}

	if *outputFlag == "" {
		shutdown()
		fmt.Println(text)
		return
	}
	target, err := ctrl.Export(ctx, *outputFlag)
	shutdown()
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Transcript saved to %s\n", target)
}

// transcribeOnce drives a single run through a running controller loop and
// returns the transcript once the job settles. A failed run returns the run's
// own error, so callers can match it against the domain sentinels.
func transcribeOnce(
	ctx context.Context,
	ctrl *controller.Controller,
	input string,
	language domain.Language,
	modelSize domain.ModelSize,
) (string, error) {
	events, unsubscribe := ctrl.Events().Subscribe(1024)
	defer unsubscribe()

	if err := ctrl.SetLanguage(ctx, language); err != nil {
		return "", err
	}
	if err := ctrl.SetModelSize(ctx, modelSize); err != nil {
		return "", err
	}
	if media.IsURL(input) {
		if err := ctrl.SetURL(ctx, input); err != nil {
			return "", err
		}
	} else if _, err := ctrl.SelectFile(ctx, input); err != nil {
		return "", err
	}

	job, err := ctrl.Start(ctx)
	if err != nil {
		return "", err
	}

	// Subscribers can miss events under load, so the result is polled too.
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case event, ok := <-events:
			if !ok {
				return "", errors.New("event stream closed")
			}
			if event.JobID != job.ID {
				continue
			}
			if event.Type == jobs.EventTypeLog || event.Type == jobs.EventTypeWarning {
				logger.Infof(ctx, "%s", event.Message)
			}
		case <-ticker.C:
		}

		result, settled, err := ctrl.LastResult(ctx)
		if err != nil {
			return "", err
		}
		if !settled || result.JobID != job.ID {
			continue
		}
		return result.Transcript, result.Err
	}
}
