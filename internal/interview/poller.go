package interview

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/resolvelab/coach/internal/telemetry"
	"github.com/resolvelab/coach/provider"
)

// Poller waits for submitted runs to reach a terminal state at a fixed
// cadence. No backoff: a session is driven by a single caller, so there is
// nothing to thunder against.
type Poller struct {
	Provider provider.Provider
	Interval time.Duration
	Metrics  *telemetry.Metrics
	Logger   *log.Logger
}

// AwaitRun polls the run until it completes, then returns the newest message
// text from the thread. A run that requires action is acknowledged with an
// empty tool-output set and polling continues; no tools are ever registered,
// so this is a placeholder bridge for future tool support.
func (p *Poller) AwaitRun(ctx context.Context, threadID, runID string, maxWait time.Duration) (string, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}
	start := time.Now()

	for {
		if time.Since(start) > maxWait {
			p.Metrics.ObserveRun("timeout", time.Since(start))
			return "", fmt.Errorf("run %s: %w", runID, ErrRunTimeout)
		}

		run, err := p.Provider.GetRun(ctx, threadID, runID)
		if err != nil {
			return "", err
		}

		switch run.Status {
		case provider.StatusCompleted:
			p.Metrics.ObserveRun("completed", time.Since(start))
			return p.newestMessage(ctx, threadID)
		case provider.StatusRequiresAction:
			if p.Logger != nil {
				p.Logger.Printf("run %s requires action, submitting empty tool outputs", runID)
			}
			if err := p.Provider.SubmitToolOutputs(ctx, threadID, runID, nil); err != nil {
				return "", err
			}
		case provider.StatusFailed:
			p.Metrics.ObserveRun("failed", time.Since(start))
			ferr := &RunFailedError{Code: "unknown", Message: "run failed"}
			if run.LastError != nil {
				ferr.Code = run.LastError.Code
				ferr.Message = run.LastError.Message
			}
			return "", ferr
		case provider.StatusCancelled, provider.StatusExpired:
			p.Metrics.ObserveRun("terminated", time.Since(start))
			return "", &RunTerminatedError{Status: run.Status}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (p *Poller) newestMessage(ctx context.Context, threadID string) (string, error) {
	msgs, err := p.Provider.ListMessages(ctx, threadID)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", ErrNoMessages
	}
	return msgs[0].Content, nil
}
