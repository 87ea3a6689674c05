package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Indicator reports a long running step. On a terminal it animates a
// spinner; elsewhere it prints one line when the step starts and one when
// it ends, so logs stay readable.
type Indicator struct {
	w       io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	spin    *spinner.Spinner
	message string
	started time.Time
	now     func() time.Time
}

// NewIndicator returns an Indicator writing to w.
func NewIndicator(w io.Writer, caps TerminalCapabilities) *Indicator {
	return &Indicator{w: w, caps: caps, symbols: SelectSymbols(caps), now: time.Now}
}

// Start begins the step described by message.
func (i *Indicator) Start(message string) {
	i.message = message
	i.started = i.now()

	if !i.caps.IsTTY {
		fmt.Fprintf(i.w, "%s...\n", message)
		return
	}

	i.spin = spinner.New(spinner.CharSets[i.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(i.w))
	i.spin.Suffix = " " + message
	if !i.caps.SupportsColor {
		i.spin.Color("reset")
	}
	i.spin.Start()
}

// Stop ends the step, marking it as succeeded or failed.
func (i *Indicator) Stop(success bool) {
	if i.spin != nil {
		i.spin.Stop()
		i.spin = nil
	}

	mark := i.symbols.Checkmark
	if !success {
		mark = i.symbols.Failure
	}
	elapsed := i.now().Sub(i.started).Round(time.Second)
	fmt.Fprintf(i.w, "%s %s (%s)\n", mark, i.message, elapsed)
}
