// Package runner executes a conversion off the caller's goroutine and relays
// its progress back in order.
//
// Events are delivered on a buffered channel sized for every stage, so the
// worker never blocks on a slow consumer. The events channel is closed before
// the outcome is published; a consumer that drains Events and then reads
// Outcome sees every progress event followed by exactly one terminal result.
package runner

import (
	"context"

	"github.com/nconklindev/jsonxl/internal/converter"
	"github.com/nconklindev/jsonxl/internal/types"
)

// Task is the unit of work a Handle runs. *converter.Task satisfies it.
type Task interface {
	Run(ctx context.Context, req types.ConversionRequest, events chan<- types.ProgressEvent) types.Outcome
}

type Handle struct {
	events  chan types.ProgressEvent
	outcome chan types.Outcome
	cancel  context.CancelFunc
	done    chan struct{}
	result  types.Outcome
}

// Start runs task on a new goroutine. The request is copied, so the caller may
// reuse its own value immediately.
func Start(ctx context.Context, task Task, req types.ConversionRequest) *Handle {
	ctx, cancel := context.WithCancel(ctx)

	h := &Handle{
		events:  make(chan types.ProgressEvent, converter.StageCount),
		outcome: make(chan types.Outcome, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer cancel()

		outcome := task.Run(ctx, req, h.events)
		close(h.events)

		h.result = outcome
		close(h.done)
		h.outcome <- outcome
		close(h.outcome)
	}()

	return h
}

// Events yields progress in emission order and is closed when the task ends.
func (h *Handle) Events() <-chan types.ProgressEvent {
	return h.events
}

// Outcome yields the terminal outcome once.
func (h *Handle) Outcome() <-chan types.Outcome {
	return h.outcome
}

// Cancel stops the download or write in flight. The task still reports a
// terminal outcome.
func (h *Handle) Cancel() {
	h.cancel()
}

// Wait blocks until the task has finished and returns its outcome.
func (h *Handle) Wait() types.Outcome {
	<-h.done
	return h.result
}
