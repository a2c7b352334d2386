// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosuri/uilive"
)

// ManualProgressBar implement progress bar functionality that must
// be manually managed. That is, the Display() function must be called
// whenever an updated progress bar should be printed to the screen.
// Each call to Display() overwrites the previously displayed bar.
//
// If the maximum progress is 0, the amount of work is unknown, and only
// the progress counter is displayed.
type ManualProgressBar struct {
	width           float64
	maxProgress     float64
	currentProgress float64
	message         string
	bar             strings.Builder
	startTime       time.Time

	writer  *uilive.Writer
	started bool
}

// NewManualProgressBar returns a new ManualProgressBar which writes to
// out
func NewManualProgressBar(out io.Writer, width, max int) *ManualProgressBar {
	writer := uilive.New()
	writer.Out = out

	return &ManualProgressBar{
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
		writer:      writer,
	}
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ManualProgressBar) Increment() {
	if p.maxProgress == 0 || p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// SetMessage sets the message displayed below the progress bar
func (p *ManualProgressBar) SetMessage(format string, a ...interface{}) {
	p.message = fmt.Sprintf(format, a...)
}

// Display displays the progress bar on the screen, replacing the
// previously displayed progress bar
func (p *ManualProgressBar) Display() {
	if !p.started {
		p.writer.Start()
		p.started = true
	}

	p.bar.Reset()
	elapsed := time.Since(p.startTime).Truncate(time.Second)
	if p.maxProgress == 0 {
		p.bar.WriteString(fmt.Sprintf("[%v | elapsed: %v]",
			p.currentProgress, elapsed))
	} else {
		p.bar.WriteString("|")
		currentProg := p.currentProgress / p.maxProgress * p.width
		for i := 0.0; i < currentProg; i++ {
			p.bar.WriteString("█")
		}
		for i := currentProg; i < p.width; i++ {
			p.bar.WriteString(" ")
		}
		p.bar.WriteString(fmt.Sprintf("| [%.2f%v | elapsed: %v]",
			p.currentProgress/p.maxProgress*100, "%", elapsed))
	}

	if p.message != "" {
		p.bar.WriteString("\n")
		p.bar.WriteString(p.message)
	}

	fmt.Fprintln(p.writer, p.bar.String())
	p.writer.Flush()
}

// Close stops updating the progress bar. The last displayed progress
// bar remains on the screen.
func (p *ManualProgressBar) Close() {
	if p.started {
		p.writer.Stop()
		p.started = false
	}
}
