// Package headless runs a single conversion without the interactive UI,
// drawing progress on a terminal bar.
package headless

import (
	"context"
	"fmt"
	"io"

	"github.com/nconklindev/jsonxl/internal/runner"
	"github.com/nconklindev/jsonxl/internal/types"

	"github.com/schollz/progressbar/v3"
)

// Run converts req with task, rendering progress to progressOut and the
// success line to out. The returned error carries the failure message.
func Run(ctx context.Context, task runner.Task, req types.ConversionRequest, out, progressOut io.Writer) error {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(progressOut),
		progressbar.OptionSetDescription("Starting"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	h := runner.Start(ctx, task, req)
	for ev := range h.Events() {
		bar.Describe(ev.Stage)
		bar.Set(ev.Percent)
	}

	outcome := <-h.Outcome()
	if !outcome.Succeeded() {
		bar.Exit()
		fmt.Fprintln(progressOut)
		return fmt.Errorf("failed to generate the file: %w", outcome.Err)
	}

	bar.Finish()
	fmt.Fprintf(out, "File generated successfully: %s (%d rows, %d columns)\n",
		outcome.Result.OutputFile, outcome.Result.Rows, len(outcome.Result.Columns))
	return nil
}
