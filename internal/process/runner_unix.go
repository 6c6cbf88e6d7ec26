//go:build unix

package process

import (
	"context"
	"os/exec"
	"strings"
	"syscall"
)

// Quote wraps s in single quotes for a POSIX shell. Embedded single quotes
// close the quote, emit an escaped quote and reopen it.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// shellCommand runs line through /bin/sh in its own process group so a
// context kill also reaches the tool the shell started.
func shellCommand(ctx context.Context, line string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", line)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative pid targets the whole group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	return cmd
}

// isStartFailure matches the POSIX shell statuses for "not executable" (126)
// and "not found" (127).
func isStartFailure(code int) bool {
	return code == 126 || code == 127
}
