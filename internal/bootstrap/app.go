package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"yt2text/internal/command"
	"yt2text/internal/config"
	"yt2text/internal/controller"
	"yt2text/internal/diagnostics"
	"yt2text/internal/domain"
	"yt2text/internal/jobs"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// EventName is the runtime event carrying jobs.Event payloads to the frontend.
const EventName = "job:event"

var mediaDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Audio and video",
		Pattern:     "*.mp3;*.wav;*.m4a;*.flac;*.aac;*.ogg;*.opus;*.mp4;*.mov;*.mkv;*.avi;*.webm",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

var transcriptDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Text files",
		Pattern:     "*.txt",
	},
}

// App binds the controller to the Wails window: dialogs, file drops and
// event forwarding.
type App struct {
	Diagnostics domain.DiagnosticReport

	cfg      config.Config
	store    config.Store
	ctrl     *controller.Controller
	checker  *diagnostics.Checker
	log      logger.Logger
	assets   fs.FS
	shell    shell
	download func(ctx context.Context, destinationPath, sourceURL string) error

	mu          sync.Mutex
	runtimeCtx  context.Context
	stopLoop    context.CancelFunc
	loopDone    chan struct{}
	unsubscribe func()
}

// New builds the application with persisted config and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	store := config.NewYAMLStore(config.DefaultPath())
	cfg, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	l, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	ctx := WithLogger(context.Background(), l)

	runner := command.NewExecRunner()
	services, err := BuildServices(ctx, cfg, runner)
	if err != nil {
		return nil, err
	}

	app := newApp(services, store, diagnostics.NewChecker(runner), l, wailsShell{})
	app.assets = assets
	app.Diagnostics = app.checker.Run(ctx, cfg, services.Device)
	return app, nil
}

func newApp(services *Services, store config.Store, checker *diagnostics.Checker, l logger.Logger, sh shell) *App {
	return &App{
		cfg:      services.Config,
		store:    store,
		ctrl:     services.Controller,
		checker:  checker,
		log:      l,
		shell:    sh,
		download: downloadURLToFile,
	}
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "YT2text",
		Width:       960,
		Height:      720,
		AssetServer: assetOptions,
		DragAndDrop: &options.DragAndDrop{
			EnableFileDrop: true,
		},
		OnStartup:  a.Startup,
		OnShutdown: a.Shutdown,
		Bind:       []interface{}{a},
	})
}

// Startup starts the controller loop, forwards job events to the window and
// registers the file-drop hook.
func (a *App) Startup(ctx context.Context) {
	ctx = logger.CtxWithLogger(ctx, a.log)
	loopCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	events, unsubscribe := a.ctrl.Events().Subscribe(256)

	a.mu.Lock()
	a.runtimeCtx = ctx
	a.stopLoop = stop
	a.loopDone = done
	a.unsubscribe = unsubscribe
	a.mu.Unlock()

	go func() {
		defer close(done)
		if err := a.ctrl.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "controller loop: %v", err)
		}
	}()
	go a.forwardEvents(ctx, events)

	a.shell.OnFileDrop(ctx, func(_, _ int, paths []string) {
		a.handleFileDrop(paths)
	})
	logger.Infof(ctx, "started, %s", a.ctrl.Device().Label())
}

// Shutdown stops the controller loop and waits for in-flight runs to unwind.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	stop, done, unsubscribe := a.stopLoop, a.loopDone, a.unsubscribe
	a.runtimeCtx = nil
	a.stopLoop, a.loopDone, a.unsubscribe = nil, nil, nil
	a.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	<-done
	unsubscribe()
	belt.Flush(logger.CtxWithLogger(ctx, a.log))
}

// forwardEvents pushes every bus event to the window and raises an error
// dialog for failed runs. The dialog carries the short message; the full
// detail travels with the event to the log area.
func (a *App) forwardEvents(ctx context.Context, events <-chan jobs.Event) {
	for event := range events {
		a.shell.Emit(ctx, EventName, event)
		if event.Type != jobs.EventTypeError {
			continue
		}
		a.shell.Message(ctx, wailsruntime.MessageDialogOptions{
			Type:    wailsruntime.ErrorDialog,
			Title:   "Transcription failed",
			Message: event.Message,
		})
	}
}

func (a *App) handleFileDrop(paths []string) {
	if len(paths) == 0 {
		return
	}
	ctx := a.loggerContext()
	if _, err := a.ctrl.SelectFile(ctx, paths[0]); err != nil {
		logger.Warnf(ctx, "rejected drop %q: %v", paths[0], err)
		a.showMessage(wailsruntime.ErrorDialog, "Invalid file", err.Error())
	}
}

// GetState returns the current session snapshot.
func (a *App) GetState() (domain.Session, error) {
	return a.ctrl.Snapshot(a.loggerContext())
}

// SetURL records the URL entry; a non-empty URL replaces a dropped file.
func (a *App) SetURL(url string) error {
	return a.ctrl.SetURL(a.loggerContext(), url)
}

// SetLanguage selects the spoken language by display name.
func (a *App) SetLanguage(language string) error {
	parsed, err := domain.ParseLanguage(language)
	if err != nil {
		return err
	}
	return a.ctrl.SetLanguage(a.loggerContext(), parsed)
}

// SetModelSize selects the model tier.
func (a *App) SetModelSize(size string) error {
	parsed, err := domain.ParseModelSize(size)
	if err != nil {
		return err
	}
	return a.ctrl.SetModelSize(a.loggerContext(), parsed)
}

// SetShowProgress toggles the progress indicator.
func (a *App) SetShowProgress(show bool) error {
	return a.ctrl.SetShowProgress(a.loggerContext(), show)
}

// DropFile accepts a path delivered by the frontend's own drop handler.
func (a *App) DropFile(payload string) (string, error) {
	return a.ctrl.DropFile(a.loggerContext(), payload)
}

// PickInputFile opens a native file dialog and selects the chosen file.
// An empty result means the dialog was cancelled.
func (a *App) PickInputFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := a.shell.OpenFile(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select audio or video file",
		Filters: mediaDialogFilter,
	})
	if err != nil {
		return "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	return a.ctrl.SelectFile(ctx, path)
}

// StartTranscription launches a run over the active input. Missing or
// vanished input is reported with a warning dialog.
func (a *App) StartTranscription() (domain.Job, error) {
	job, err := a.ctrl.Start(a.loggerContext())
	switch {
	case errors.Is(err, domain.ErrNoInputProvided):
		a.showMessage(wailsruntime.WarningDialog, "No input", "Please provide a YouTube URL or drop a file.")
	case errors.Is(err, domain.ErrInvalidInput):
		a.showMessage(wailsruntime.WarningDialog, "Invalid input", err.Error())
	}
	return job, err
}

// ExportTranscript asks for a destination and writes the transcript there.
// It returns the written path, or "" when there was nothing to export or
// the dialog was cancelled.
func (a *App) ExportTranscript() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	has, err := a.ctrl.HasTranscript(ctx)
	if err != nil {
		return "", err
	}
	if !has {
		a.showMessage(wailsruntime.WarningDialog, "Nothing to export", "There is no transcript to export yet.")
		return "", nil
	}

	path, err := a.shell.SaveFile(ctx, wailsruntime.SaveDialogOptions{
		Title:           "Export transcript",
		DefaultFilename: "transcript.txt",
		Filters:         transcriptDialogFilter,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(path) == "" {
		return "", nil
	}

	target, err := a.ctrl.Export(ctx, path)
	if err != nil {
		a.showMessage(wailsruntime.ErrorDialog, "Export failed", err.Error())
		return "", err
	}
	a.showMessage(wailsruntime.InfoDialog, "Export complete", "Transcript saved to "+target)
	return target, nil
}

// Reset clears the session back to defaults.
func (a *App) Reset() error {
	return a.ctrl.Reset(a.loggerContext())
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.ctrl.Events().Since(sinceSeq)
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reruns dependency checks against the loaded config.
func (a *App) RefreshDiagnostics() domain.DiagnosticReport {
	report := a.checker.Run(a.loggerContext(), a.cfg, a.ctrl.Device())

	a.mu.Lock()
	a.Diagnostics = report
	a.mu.Unlock()
	return report
}

// ConfigPath reports where the config file lives.
func (a *App) ConfigPath() string {
	if yamlStore, ok := a.store.(*config.YAMLStore); ok {
		return yamlStore.Path()
	}
	return ""
}

func (a *App) showMessage(kind wailsruntime.DialogType, title, message string) {
	ctx, err := a.runtimeContext()
	if err != nil {
		logger.Warnf(a.loggerContext(), "%s: %s", title, message)
		return
	}
	a.shell.Message(ctx, wailsruntime.MessageDialogOptions{
		Type:    kind,
		Title:   title,
		Message: message,
	})
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// loggerContext returns the runtime context when available, else a
// background context carrying the app logger.
func (a *App) loggerContext() context.Context {
	if ctx, err := a.runtimeContext(); err == nil {
		return ctx
	}
	return logger.CtxWithLogger(context.Background(), a.log)
}
