package cli

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/teamcutter/patches/internal/domain"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// withSpinner draws a spinner on w until stop is called or ctx is done. stop
// returns only after the drawing goroutine has exited.
func withSpinner(ctx context.Context, w io.Writer, desc string) (stop func()) {
	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				spinner.Add(1)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-exited
			spinner.Finish()
		})
	}
}

// statusLine renders one detection the way scan and history print it.
func statusLine(d domain.Detection) string {
	label := bold(d.Package.Name() + "-" + d.Package.Version().String())
	switch {
	case d.Failed():
		return red("✗") + " " + label + " " + red(d.Error)
	case d.Installed:
		return green("✓") + " " + label + " " + dim("installed")
	default:
		return dim("○") + " " + label + " " + dim("not installed")
	}
}
