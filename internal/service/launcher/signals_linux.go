//go:build linux

package launcher

import (
	"os"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/oshokin/typr-dist/internal/logger"
)

// kernelSigsetSize is the sigset size expected by rt_sigaction and rt_sigprocmask.
const kernelSigsetSize = 8

// kernelSigaction covers struct sigaction on every Linux ABI.
// The zero value is SIG_DFL with no flags and an empty mask.
type kernelSigaction [4]uint64

// raise kills the current process with sig. The disposition is reset to the
// kernel default behind the Go runtime's back, so core-dump signals and the
// ones the runtime would ignore end the process the same way they ended the
// child. Signals whose default action is to ignore fall back to 128+signo.
func raise(sig syscall.Signal) {
	logger.Sync()

	// Unblock and deliver on the same thread.
	runtime.LockOSThread()

	if sig == unix.SIGKILL || resetToDefault(sig) == nil {
		unblock(sig)

		_ = unix.Tgkill(unix.Getpid(), unix.Gettid(), sig)

		time.Sleep(raiseGracePeriod)
	}

	os.Exit(signalExitBase + int(sig))
}

// resetToDefault installs SIG_DFL for sig.
func resetToDefault(sig syscall.Signal) error {
	var action kernelSigaction

	_, _, errno := unix.RawSyscall6(unix.SYS_RT_SIGACTION, uintptr(sig),
		uintptr(unsafe.Pointer(&action)), 0, kernelSigsetSize, 0, 0)
	if errno != 0 {
		return errno
	}

	return nil
}

// unblock removes sig from the calling thread's signal mask.
func unblock(sig syscall.Signal) {
	set := uint64(1) << (uint(sig) - 1)

	_, _, _ = unix.RawSyscall6(unix.SYS_RT_SIGPROCMASK, unix.SIG_UNBLOCK,
		uintptr(unsafe.Pointer(&set)), 0, kernelSigsetSize, 0, 0)
}
