//go:build !windows

package launcher

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/oshokin/typr-dist/internal/logger"
)

const (
	// signalBufferSize is enough to hold a burst of termination requests during spawn.
	signalBufferSize = 4

	// signalExitBase is added to a signal number when it cannot be re-raised,
	// matching what POSIX shells report for a signal death.
	signalExitBase = 128

	// raiseGracePeriod is how long Relay waits for a re-raised signal to take effect.
	raiseGracePeriod = time.Second
)

// handledSignals are intercepted while the child runs.
//
//nolint:gochecknoglobals // Fixed signal set.
var handledSignals = []os.Signal{unix.SIGINT, unix.SIGQUIT, unix.SIGTERM, unix.SIGHUP}

// isForwarded reports whether sig is sent on to the child. SIGINT and SIGQUIT
// typed at the terminal already reach the whole foreground process group, so
// they are only forwarded when the launcher is not in that group.
func isForwarded(sig os.Signal) bool {
	switch sig {
	case unix.SIGTERM, unix.SIGHUP:
		return true
	case unix.SIGINT, unix.SIGQUIT:
		return !inForegroundGroup(int(os.Stdin.Fd()))
	default:
		return false
	}
}

// inForegroundGroup reports whether fd is a terminal whose foreground
// process group is the launcher's own.
func inForegroundGroup(fd int) bool {
	pgrp, err := unix.IoctlGetInt(fd, unix.TIOCGPGRP)
	if err != nil {
		return false
	}

	return pgrp == unix.Getpgrp()
}

// terminationOf reads the exit code or the fatal signal from the wait status.
// A state that is neither exited nor signaled maps to exit code 0.
func terminationOf(state *os.ProcessState) *Termination {
	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		return &Termination{ExitCode: state.ExitCode()}
	}

	switch {
	case status.Signaled():
		return &Termination{Signal: status.Signal()}
	case status.Exited():
		return &Termination{ExitCode: status.ExitStatus()}
	default:
		return &Termination{}
	}
}

// Relay ends the current process the way the child ended. It never returns.
func Relay(termination *Termination) {
	sig, ok := termination.Signal.(syscall.Signal)
	if !ok {
		logger.Sync()
		os.Exit(termination.ExitCode)
	}

	raise(sig)
}

// SignalName returns the conventional name of sig, e.g. "SIGTERM".
func SignalName(sig os.Signal) string {
	if s, ok := sig.(syscall.Signal); ok {
		if name := unix.SignalName(s); name != "" {
			return name
		}
	}

	return sig.String()
}
