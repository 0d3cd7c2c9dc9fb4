//go:build windows

package speech

import (
	"fmt"
	"os/exec"
)

// Windows has no process suspend signal; pause is unsupported for the
// espeak backend there.
func suspendProcess(_ *exec.Cmd) error {
	return fmt.Errorf("pause not supported for espeak on windows")
}

func resumeProcess(_ *exec.Cmd) error {
	return fmt.Errorf("resume not supported for espeak on windows")
}
