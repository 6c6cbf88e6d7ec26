package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/Iron-Ham/smali2java/internal/logging"
	"github.com/Iron-Ham/smali2java/internal/util"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	levelStyles = map[string]lipgloss.Style{
		logging.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		logging.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		logging.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		logging.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

// painter renders styles only when writing to a terminal, so piped output
// and test buffers stay plain.
type painter struct {
	enabled bool
	width   int // terminal columns, 0 when unknown
}

func newPainter(w io.Writer) painter {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return painter{}
	}
	p := painter{enabled: true}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil {
		p.width = width
	}
	return p
}

// fit truncates s to the columns left after used, keeping it whole when the
// width is unknown.
func (p painter) fit(s string, used int) string {
	if p.width == 0 {
		return s
	}
	return util.Truncate(s, max(p.width-used, 8))
}

// fitPath is fit for paths, dropping leading characters instead.
func (p painter) fitPath(path string, used int) string {
	if p.width == 0 {
		return path
	}
	return util.TruncatePath(path, max(p.width-used, 8))
}

func (p painter) paint(style lipgloss.Style, s string) string {
	if !p.enabled {
		return s
	}
	return style.Render(s)
}

func (p painter) level(level string) string {
	style, ok := levelStyles[strings.ToUpper(level)]
	if !ok {
		return level
	}
	return p.paint(style, level)
}
