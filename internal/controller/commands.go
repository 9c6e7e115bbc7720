package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"

	"yt2text/internal/domain"
	"yt2text/internal/jobs"
	"yt2text/internal/media"
)

// Snapshot returns a copy of the session for display.
func (c *Controller) Snapshot(ctx context.Context) (domain.Session, error) {
	var snap domain.Session
	err := c.do(ctx, func() error {
		snap = c.state.Snapshot(c.device, c.jobs.Current())
		return nil
	})
	return snap, err
}

// SetURL sets the URL text. A non-empty URL clears any dropped file.
func (c *Controller) SetURL(ctx context.Context, url string) error {
	return c.do(ctx, func() error {
		c.state.SetURL(url)
		return nil
	})
}

// SetLanguage changes the language used by the next run.
func (c *Controller) SetLanguage(ctx context.Context, language domain.Language) error {
	parsed, err := domain.ParseLanguage(string(language))
	if err != nil {
		return err
	}
	return c.do(ctx, func() error {
		c.state.SetLanguage(parsed)
		return nil
	})
}

// SetModelSize changes the model tier used by the next run.
func (c *Controller) SetModelSize(ctx context.Context, size domain.ModelSize) error {
	parsed, err := domain.ParseModelSize(string(size))
	if err != nil {
		return err
	}
	return c.do(ctx, func() error {
		c.state.SetModelSize(parsed)
		return nil
	})
}

// SetShowProgress toggles the progress indicator.
func (c *Controller) SetShowProgress(ctx context.Context, show bool) error {
	return c.do(ctx, func() error {
		c.state.SetShowProgress(show)
		return nil
	})
}

// DropFile cleans a raw drop payload and makes its first path the active input.
// On ErrInvalidInput the session is left unchanged.
func (c *Controller) DropFile(ctx context.Context, payload string) (string, error) {
	path := CleanDropPayload(payload)
	return path, c.selectFile(ctx, path)
}

// SelectFile makes an already separated path (native drop, file dialog,
// command line) the active input. Spaces in path are kept.
func (c *Controller) SelectFile(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	return path, c.selectFile(ctx, path)
}

func (c *Controller) selectFile(ctx context.Context, path string) error {
	return c.do(ctx, func() error {
		valid, err := c.acquirer.ValidateLocal(path)
		if err != nil {
			if path == "" {
				return fmt.Errorf("%w: empty drop", domain.ErrInvalidInput)
			}
			return err
		}
		c.state.SetLocalPath(valid)
		c.publish(jobs.Event{Type: jobs.EventTypeLog, Message: "File selected: " + valid})
		return nil
	})
}

// Start launches a background run over the active input.
func (c *Controller) Start(ctx context.Context) (domain.Job, error) {
	var job domain.Job
	err := c.do(ctx, func() error {
		input := c.state.ActiveInput()
		if input == "" {
			c.publish(jobs.Event{Type: jobs.EventTypeWarning, Message: domain.ErrNoInputProvided.Error()})
			return domain.ErrNoInputProvided
		}
		if !media.IsURL(input) {
			if _, err := c.acquirer.ValidateLocal(input); err != nil {
				c.publish(jobs.Event{Type: jobs.EventTypeWarning, Message: err.Error()})
				return err
			}
		}

		jobID := c.newJobID()
		if err := c.jobs.Start(jobID); err != nil {
			return err
		}

		c.state.SetTranscript("")
		c.state.SetRunning(true)
		c.last = nil
		run := runPlan{
			jobID:     jobID,
			input:     input,
			language:  c.state.Language(),
			modelSize: c.state.ModelSize(),
			device:    c.device,
		}
		c.publish(jobs.Event{
			JobID:   jobID,
			Type:    jobs.EventTypeStatus,
			Status:  domain.JobStatusAcquiring,
			Message: "Job started",
		})

		c.workers.Add(1)
		go c.work(c.runCtx, run)

		job = c.jobs.Current()
		return nil
	})
	return job, err
}

// LastResult returns the outcome of the most recent settled run. ok is false
// while a run is in flight, after Reset, or before any run.
func (c *Controller) LastResult(ctx context.Context) (result RunResult, ok bool, err error) {
	err = c.do(ctx, func() error {
		if c.last != nil {
			result, ok = *c.last, true
		}
		return nil
	})
	return result, ok, err
}

// HasTranscript reports whether Export has anything to write.
func (c *Controller) HasTranscript(ctx context.Context) (bool, error) {
	var has bool
	err := c.do(ctx, func() error {
		has = c.state.Transcript() != ""
		return nil
	})
	return has, err
}

// Export writes the held transcript to path as UTF-8 text and returns the
// final path (".txt" is appended when path has no extension).
func (c *Controller) Export(ctx context.Context, path string) (string, error) {
	var text string
	err := c.do(ctx, func() error {
		text = c.state.Transcript()
		return nil
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", domain.ErrNothingToExport
	}

	target, err := writeTranscript(c.writeFile, path, text)
	if err != nil {
		return "", err
	}
	logger.Infof(ctx, "transcript exported to %s", target)
	c.publish(jobs.Event{Type: jobs.EventTypeLog, Message: "Transcript exported: " + target})
	return target, nil
}

// Reset restores session defaults and removes leftover downloads.
// Removal failures are reported as warnings, never returned.
func (c *Controller) Reset(ctx context.Context) error {
	return c.do(ctx, func() error {
		if err := c.jobs.Reset(); err != nil {
			return err
		}
		c.state.Reset()
		c.last = nil
		c.removeLeftovers(ctx)
		c.publish(jobs.Event{Type: jobs.EventTypeSession, Message: "Reset complete"})
		return nil
	})
}

// removeLeftovers retries deletion of download dirs whose cleanup failed.
func (c *Controller) removeLeftovers(ctx context.Context) {
	var mErr *multierror.Error
	var remaining []string
	for _, dir := range c.leftovers {
		if err := c.removeAll(dir); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("remove %s: %w", dir, err))
			remaining = append(remaining, dir)
			continue
		}
		c.publish(jobs.Event{Type: jobs.EventTypeLog, Message: "Removed old download: " + dir})
	}
	c.leftovers = remaining

	if err := mErr.ErrorOrNil(); err != nil {
		logger.Warnf(ctx, "cleanup: %v", err)
		c.publish(jobs.Event{Type: jobs.EventTypeWarning, Message: "Could not delete temporary files", Detail: err.Error()})
	}
}
