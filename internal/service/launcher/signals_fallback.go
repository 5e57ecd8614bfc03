//go:build !windows && !linux

package launcher

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/oshokin/typr-dist/internal/logger"
)

// reraisable are the signals whose default Go runtime action is to die by that signal.
//
//nolint:gochecknoglobals // Fixed signal set.
var reraisable = map[syscall.Signal]struct{}{
	unix.SIGHUP:  {},
	unix.SIGINT:  {},
	unix.SIGTERM: {},
	unix.SIGKILL: {},
}

// raise kills the current process with sig. Signals the Go runtime does not
// turn into a plain signal death end the process with 128+signo instead.
func raise(sig syscall.Signal) {
	logger.Sync()

	if _, exact := reraisable[sig]; exact {
		signal.Reset(sig)

		_ = unix.Kill(unix.Getpid(), sig)

		time.Sleep(raiseGracePeriod)
	}

	os.Exit(signalExitBase + int(sig))
}
