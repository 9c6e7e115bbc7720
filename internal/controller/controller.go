// Package controller runs the application's event loop. Only the loop
// goroutine touches session state; background runs report back over a
// channel and through the job event bus.
package controller

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/google/uuid"

	"yt2text/internal/domain"
	"yt2text/internal/jobs"
	"yt2text/internal/media"
	"yt2text/internal/session"
	"yt2text/internal/transcribe"
)

// ErrStopped is returned by commands issued after the loop has exited.
var ErrStopped = errors.New("controller stopped")

// Acquirer resolves user input into a local audio file.
type Acquirer interface {
	Resolve(ctx context.Context, input string, onLog func(domain.CommandLog)) (*media.Artifact, error)
	ValidateLocal(path string) (string, error)
}

// Prober reports clip duration in seconds, 0 when unknown.
type Prober interface {
	Probe(ctx context.Context, path string) float64
}

// Options wires the controller's collaborators.
type Options struct {
	Acquirer Acquirer
	Prober   Prober
	Engine   transcribe.Engine
	Device   domain.Device
	Jobs     *jobs.Manager
	Events   *jobs.EventBus
	NewJobID func() string
}

// Controller dispatches user commands and owns the session.
type Controller struct {
	acquirer  Acquirer
	prober    Prober
	engine    transcribe.Engine
	device    domain.Device
	jobs      *jobs.Manager
	events    *jobs.EventBus
	newJobID  func() string
	removeAll func(string) error
	writeFile func(string, []byte, os.FileMode) error

	requests chan request
	outcomes chan outcome
	done     chan struct{}
	runOnce  sync.Once
	workers  sync.WaitGroup

	// Owned by the loop goroutine.
	state     *session.State
	leftovers []string
	runCtx    context.Context
	last      *RunResult
}

// RunResult is the settled outcome of one run. Err keeps the original error
// chain, so errors.Is matches the taxonomy sentinels.
type RunResult struct {
	JobID      string
	Transcript string
	Err        error
}

type request struct {
	fn    func() error
	reply chan error
}

type outcome struct {
	jobID    string
	text     string
	err      error
	leftover string
}

// New builds a controller. Call Run to start its loop.
func New(opts Options) *Controller {
	if opts.Jobs == nil {
		opts.Jobs = jobs.NewManager()
	}
	if opts.Events == nil {
		opts.Events = jobs.NewEventBus(1000)
	}
	if opts.NewJobID == nil {
		opts.NewJobID = uuid.NewString
	}

	return &Controller{
		acquirer:  opts.Acquirer,
		prober:    opts.Prober,
		engine:    opts.Engine,
		device:    opts.Device,
		jobs:      opts.Jobs,
		events:    opts.Events,
		newJobID:  opts.NewJobID,
		removeAll: os.RemoveAll,
		writeFile: os.WriteFile,
		requests:  make(chan request),
		outcomes:  make(chan outcome),
		done:      make(chan struct{}),
		state:     session.New(),
	}
}

// Run processes commands and run outcomes until ctx is done. In-flight runs
// are cancelled with ctx and waited for before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	started := false
	c.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("controller loop already started")
	}
	defer close(c.done)

	c.runCtx = ctx
	for {
		select {
		case <-ctx.Done():
			c.workers.Wait()
			c.removeLeftovers(context.WithoutCancel(ctx))
			return ctx.Err()
		case req := <-c.requests:
			req.reply <- req.fn()
		case out := <-c.outcomes:
			c.finish(ctx, out)
		}
	}
}

// Events exposes the job event stream for UI subscribers.
func (c *Controller) Events() *jobs.EventBus {
	return c.events
}

// Device returns the compute device fixed at startup.
func (c *Controller) Device() domain.Device {
	return c.device
}

// do runs fn on the loop goroutine and returns its error.
func (c *Controller) do(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	select {
	case c.requests <- request{fn: fn, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) publish(event jobs.Event) {
	c.events.Publish(event)
}
