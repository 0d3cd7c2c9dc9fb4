//go:build !windows

package speech

import (
	"os/exec"
	"syscall"
)

// suspendProcess pauses a running espeak process with SIGSTOP.
func suspendProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(syscall.SIGSTOP)
}

// resumeProcess continues a suspended espeak process with SIGCONT.
func resumeProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(syscall.SIGCONT)
}
