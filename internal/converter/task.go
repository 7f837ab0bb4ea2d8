package converter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nconklindev/jsonxl/internal/types"

	"github.com/google/uuid"
)

const DefaultTimeout = 60 * time.Second

// Progress reported by a Task, in the order it is emitted.
var (
	StageConnecting  = types.ProgressEvent{Percent: 5, Stage: "Connecting"}
	StageDownloading = types.ProgressEvent{Percent: 35, Stage: "Downloading"}
	StageProcessing  = types.ProgressEvent{Percent: 65, Stage: "Processing JSON"}
	StageWriting     = types.ProgressEvent{Percent: 85, Stage: "Writing spreadsheet"}
	StageDone        = types.ProgressEvent{Percent: 100, Stage: "Done"}
)

// StageCount is the number of progress events a successful run emits.
const StageCount = 5

var ErrInvalidRequest = errors.New("invalid conversion request")

type Options struct {
	// Client performs the download. When nil a client with Timeout is used.
	Client    *http.Client
	Timeout   time.Duration
	SheetName string
}

// Task converts one JSON endpoint into one spreadsheet. It is not reusable.
type Task struct {
	ID   string
	opts Options
	ran  atomic.Bool
}

func NewTask(opts Options) *Task {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	return &Task{ID: uuid.NewString(), opts: opts}
}

// Run executes connect, download, flatten and write in order, sending a
// progress event on events as each stage starts. The first failure ends the
// run. Run never sends on events after it returns.
func (t *Task) Run(ctx context.Context, req types.ConversionRequest, events chan<- types.ProgressEvent) types.Outcome {
	if !t.ran.CompareAndSwap(false, true) {
		return types.Outcome{Err: ErrTaskReused}
	}

	result, err := t.run(ctx, req, events)
	if err != nil {
		log.Printf("task %s: failed (%s): %v", t.ID, KindOf(err), err)
		return types.Outcome{Err: err}
	}

	log.Printf("task %s: wrote %d rows, %d columns to %s", t.ID, result.Rows, len(result.Columns), result.OutputFile)
	return types.Outcome{Result: result}
}

func (t *Task) run(ctx context.Context, req types.ConversionRequest, events chan<- types.ProgressEvent) (*types.ConversionResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	t.emit(ctx, events, StageConnecting)
	body, err := download(ctx, t.opts.Client, req.URL)
	if err != nil {
		return nil, err
	}

	t.emit(ctx, events, StageDownloading)
	value, err := decode(body)
	if err != nil {
		return nil, err
	}

	t.emit(ctx, events, StageProcessing)
	ds, err := Flatten(value)
	if err != nil {
		return nil, err
	}

	t.emit(ctx, events, StageWriting)
	if err := WriteWorkbook(ctx, ds, req.OutputPath, WriteOptions{SheetName: t.opts.SheetName, TempID: t.ID}); err != nil {
		return nil, err
	}

	t.emit(ctx, events, StageDone)

	return &types.ConversionResult{
		URL:        req.URL,
		OutputFile: req.OutputPath,
		Columns:    ds.Columns,
		Rows:       len(ds.Records),
	}, nil
}

func (t *Task) emit(ctx context.Context, events chan<- types.ProgressEvent, ev types.ProgressEvent) {
	log.Printf("task %s: %d%% %s", t.ID, ev.Percent, ev.Stage)
	if events == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

func validate(req types.ConversionRequest) error {
	if strings.TrimSpace(req.URL) == "" {
		return fmt.Errorf("%w: URL is empty", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalidRequest)
	}
	return nil
}
