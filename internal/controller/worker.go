package controller

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/facebookincubator/go-belt/tool/logger"

	"yt2text/internal/domain"
	"yt2text/internal/jobs"
	"yt2text/internal/media"
	"yt2text/internal/transcribe"
)

// runPlan is the immutable copy of session choices a worker runs with.
type runPlan struct {
	jobID     string
	input     string
	language  domain.Language
	modelSize domain.ModelSize
	device    domain.Device
}

// work executes one run and hands the outcome to the loop.
func (c *Controller) work(ctx context.Context, run runPlan) {
	defer c.workers.Done()

	out := outcome{jobID: run.jobID}
	func() {
		defer func() {
			if r := recover(); r != nil {
				out.err = &domain.PipelineError{
					Stage:   "transcribing",
					Message: fmt.Sprintf("internal error: %v", r),
					Kind:    domain.ErrTranscriptionFailed,
					Trace:   string(debug.Stack()),
				}
			}
		}()
		out.text, out.err = c.pipeline(ctx, run, &out.leftover)
	}()

	select {
	case c.outcomes <- out:
	case <-ctx.Done():
		logger.Warnf(ctx, "job %s finished after shutdown: %v", run.jobID, out.err)
	}
}

// pipeline acquires media, probes it, and transcribes it. The downloaded
// artifact is removed on every path, panics included; a dir that cannot be
// removed is stored in leftover.
func (c *Controller) pipeline(ctx context.Context, run runPlan, leftover *string) (string, error) {
	onLog := func(log domain.CommandLog) {
		c.publish(jobs.Event{
			JobID:    run.jobID,
			Type:     jobs.EventTypeLog,
			Message:  "Command completed",
			Command:  log.Command,
			Args:     log.Args,
			ExitCode: log.ExitCode,
			Stdout:   log.Stdout,
			Stderr:   log.Stderr,
		})
	}

	if media.IsURL(run.input) {
		c.logLine(ctx, run.jobID, "Downloading audio...")
	} else {
		c.logLine(ctx, run.jobID, "Using dropped file: "+run.input)
	}

	artifact, err := c.acquirer.Resolve(ctx, run.input, onLog)
	if err != nil {
		return "", err
	}
	defer func() {
		if !artifact.Downloaded {
			return
		}
		dir := artifact.Dir()
		if cleanupErr := artifact.Cleanup(); cleanupErr != nil {
			logger.Warnf(ctx, "cleanup temporary files: %v", cleanupErr)
			c.publish(jobs.Event{
				JobID:   run.jobID,
				Type:    jobs.EventTypeWarning,
				Message: fmt.Sprintf("cleanup temporary files: %v", cleanupErr),
			})
			*leftover = dir
			return
		}
		c.logLine(ctx, run.jobID, "Deleted temporary file: "+artifact.Path)
	}()

	if c.prober != nil {
		if seconds := c.prober.Probe(ctx, artifact.Path); seconds > 0 {
			c.logLine(ctx, run.jobID, "Duration: "+media.FormatDuration(seconds))
		}
	}

	if err := c.jobs.Transition(domain.JobStatusTranscribing); err == nil {
		c.publish(jobs.Event{
			JobID:   run.jobID,
			Type:    jobs.EventTypeStatus,
			Status:  domain.JobStatusTranscribing,
			Message: "Running transcribing stage",
		})
	}
	c.logLine(ctx, run.jobID, "Selected model: "+string(run.modelSize))
	c.logLine(ctx, run.jobID, "Transcribing...")

	result, err := c.engine.Transcribe(ctx, transcribe.Request{
		AudioPath: artifact.Path,
		ModelSize: run.modelSize,
		Language:  run.language,
		Device:    run.device,
		OnLog:     onLog,
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// finish applies a run outcome on the loop goroutine.
func (c *Controller) finish(ctx context.Context, out outcome) {
	c.state.SetRunning(false)
	if out.leftover != "" {
		c.leftovers = append(c.leftovers, out.leftover)
	}

	c.last = &RunResult{JobID: out.jobID, Transcript: out.text, Err: out.err}
	if out.err != nil {
		c.last.Transcript = ""
		logger.Errorf(ctx, "job %s failed: %s", out.jobID, domain.ErrorDetail(out.err))
		_ = c.jobs.Transition(domain.JobStatusFailed)
		c.publish(jobs.Event{
			JobID:   out.jobID,
			Type:    jobs.EventTypeStatus,
			Status:  domain.JobStatusFailed,
			Message: "Job failed",
		})
		c.publish(jobs.Event{
			JobID:   out.jobID,
			Type:    jobs.EventTypeError,
			Status:  domain.JobStatusFailed,
			Message: out.err.Error(),
			Detail:  domain.ErrorDetail(out.err),
		})
		return
	}

	c.state.SetTranscript(out.text)
	if err := c.jobs.Transition(domain.JobStatusDone); err == nil {
		c.publish(jobs.Event{
			JobID:   out.jobID,
			Type:    jobs.EventTypeStatus,
			Status:  domain.JobStatusDone,
			Message: "Job completed",
		})
	}
	c.publish(jobs.Event{
		JobID:      out.jobID,
		Type:       jobs.EventTypeResult,
		Status:     domain.JobStatusDone,
		Message:    "Transcription complete",
		Transcript: out.text,
	})
}

// logLine writes to the process log and the user-visible event stream.
func (c *Controller) logLine(ctx context.Context, jobID, message string) {
	logger.Infof(ctx, "job %s: %s", jobID, message)
	c.publish(jobs.Event{JobID: jobID, Type: jobs.EventTypeLog, Message: message})
}
