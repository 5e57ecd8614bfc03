//go:build windows

package launcher

import (
	"os"

	"github.com/oshokin/typr-dist/internal/logger"
)

// signalBufferSize is enough to hold a burst of console events during spawn.
const signalBufferSize = 4

// handledSignals are intercepted while the child runs. The console delivers
// Ctrl+C to the child as well, so the launcher only swallows it.
//
//nolint:gochecknoglobals // Fixed signal set.
var handledSignals = []os.Signal{os.Interrupt}

// isForwarded reports whether sig is sent on to the child. Windows processes
// cannot receive signals, so nothing is forwarded.
func isForwarded(os.Signal) bool {
	return false
}

// terminationOf reads the exit code. Windows has no signal deaths.
func terminationOf(state *os.ProcessState) *Termination {
	code := state.ExitCode()
	if code < 0 {
		code = 0
	}

	return &Termination{ExitCode: code}
}

// Relay exits with the child's exit code. It never returns.
func Relay(termination *Termination) {
	logger.Sync()
	os.Exit(termination.ExitCode)
}

// SignalName returns the name of sig.
func SignalName(sig os.Signal) string {
	return sig.String()
}
