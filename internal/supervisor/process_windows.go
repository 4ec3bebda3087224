//go:build windows

package supervisor

import (
	"os"
	"os/exec"

	"golang.org/x/sys/windows"
)

// gracefulSignals returns the OS signals to capture for graceful
// shutdown. Windows only reliably delivers os.Interrupt; SIGTERM does
// not exist here.
func gracefulSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// sendGracefulStop terminates the process on Windows. There is no
// SIGTERM equivalent, so Kill() (TerminateProcess) is the only option.
func sendGracefulStop(proc *os.Process) error {
	return proc.Kill()
}

type waitStatus struct {
	code uint32
	ok   bool
}

func (w waitStatus) signaled() bool    { return false }
func (w waitStatus) signalNumber() int { return 0 }
func (w waitStatus) exitStatus() int   { return int(w.code) }

func exitStatus(err *exec.ExitError) (waitStatus, bool) {
	handle, openErr := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(err.Pid()))
	if openErr != nil {
		return waitStatus{}, false
	}
	defer windows.CloseHandle(handle)

	var code uint32
	if getErr := windows.GetExitCodeProcess(handle, &code); getErr != nil {
		return waitStatus{}, false
	}
	return waitStatus{code: code, ok: true}, true
}
