//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-ps"
)

// RunningProcesses returns the PIDs of processes, other than the current one,
// whose executable name matches executableName. The match ignores case so that
// "typr.exe" and "TYPR.EXE" are treated alike on Windows.
func RunningProcesses(executableName string) ([]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	var pids []int

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if !strings.EqualFold(process.Executable(), executableName) {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids, nil
}
