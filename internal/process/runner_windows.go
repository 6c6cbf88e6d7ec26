//go:build windows

package process

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Quote wraps s in double quotes for cmd.exe. Paths on Windows cannot contain
// double quotes, so embedded ones are doubled rather than escaped.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// shellCommand runs line through cmd.exe. The raw command line is set
// directly because Go's argument escaping does not match cmd.exe quoting;
// /S makes cmd strip exactly the outer pair of quotes.
func shellCommand(ctx context.Context, line string) *exec.Cmd {
	comspec := os.Getenv("COMSPEC")
	if comspec == "" {
		comspec = "cmd.exe"
	}
	cmd := exec.CommandContext(ctx, comspec)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		// CmdLine replaces the whole line, argv[0] included.
		CmdLine: Quote(comspec) + ` /S /C "` + line + `"`,
	}
	return cmd
}

// isStartFailure matches cmd.exe's status for an unknown command.
func isStartFailure(code int) bool {
	return code == 9009
}
