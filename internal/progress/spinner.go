package progress

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// NewSpinner creates a stderr spinner with the given message, using the
// symbol set appropriate for the current terminal. Returns nil when stderr
// is not a terminal; callers treat a nil spinner as a no-op.
func NewSpinner(message string) *spinner.Spinner {
	caps := DetectTerminalCapabilities()
	if !caps.IsTTY {
		return nil
	}

	symbols := SelectSymbols(caps)
	s := spinner.New(spinner.CharSets[symbols.SpinnerSet], 100*time.Millisecond,
		spinner.WithWriter(os.Stderr),
		spinner.WithSuffix(" "+message))
	if caps.SupportsColor {
		_ = s.Color("cyan")
	}
	return s
}

// StartSpinner starts s when non-nil.
func StartSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Start()
	}
}

// StopSpinner stops s when non-nil.
func StopSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Stop()
	}
}
