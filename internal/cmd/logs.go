package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Iron-Ham/smali2java/internal/config"
	"github.com/Iron-Ham/smali2java/internal/errors"
	"github.com/Iron-Ham/smali2java/internal/logging"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View decompile logs",
	Long: `View and filter smali2java logs, including rotated backups.

Examples:
  # Show the last 50 entries
  smali2java logs

  # Show every warning or error for one package
  smali2java logs -n 0 --level warn --class com/example

  # Show one decompile call
  smali2java logs --request 3f2a...

  # Show logs from the last hour as CSV
  smali2java logs --since 1h --format csv`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsTail    int
	logsLevel   string
	logsSince   string
	logsClass   string
	logsBackend string
	logsRequest string
	logsGrep    string
	logsFormat  string
	logsOutput  string
	logsDir     string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsClass, "class", "", "Filter by class or package (e.g., com/example/Foo or com/example)")
	logsCmd.Flags().StringVar(&logsBackend, "backend", "", "Filter by decompiler backend")
	logsCmd.Flags().StringVar(&logsRequest, "request", "", "Filter by request id")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter by message substring")
	logsCmd.Flags().StringVar(&logsFormat, "format", "text", "Output format: "+strings.Join(logging.ExportFormats(), ", "))
	logsCmd.Flags().StringVarP(&logsOutput, "output", "o", "", "Write to this file instead of stdout")
	logsCmd.Flags().StringVar(&logsDir, "dir", "", "Log directory (default: user cache dir)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	dir := logsDir
	if dir == "" {
		dir = config.LogDir()
	}

	filter := logging.LogFilter{
		Backend:         logsBackend,
		Class:           logsClass,
		RequestID:       logsRequest,
		MessageContains: logsGrep,
	}
	if logsLevel != "" {
		filter.Level = logging.ParseLevel(logsLevel)
	}
	if logsSince != "" {
		duration, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid duration format: %w", err)
		}
		filter.StartTime = time.Now().Add(-duration)
	}

	out := cmd.OutOrStdout()
	entries, err := logging.AggregateLogs(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "No logs found in %s\n", dir)
			return nil
		}
		return err
	}

	entries = logging.FilterLogs(entries, filter)

	// Apply tail limit
	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	if logsOutput != "" {
		if err := logging.ExportLogEntries(entries, logsOutput, logsFormat); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d entries to %s\n", len(entries), logsOutput)
		return nil
	}

	p := newPainter(out)
	if strings.ToLower(logsFormat) == "text" && p.enabled {
		for _, entry := range entries {
			fmt.Fprintln(out, formatLogEntry(p, entry))
		}
	} else if err := logging.WriteLogEntries(out, entries, logsFormat); err != nil {
		return err
	}

	if len(entries) == 0 && strings.ToLower(logsFormat) == "text" {
		fmt.Fprintln(out, "No matching log entries found.")
	}
	return nil
}

// formatLogEntry formats a log entry for terminal output
func formatLogEntry(p painter, entry logging.LogEntry) string {
	var sb strings.Builder

	sb.WriteString(p.paint(dimStyle, "["+entry.Timestamp.Format("15:04:05.000")+"]"))
	sb.WriteString(" ")
	sb.WriteString("[" + p.level(entry.Level) + "]")
	sb.WriteString(" ")
	sb.WriteString(entry.Message)

	field := func(key, value string) {
		if value == "" {
			return
		}
		sb.WriteString(" ")
		sb.WriteString(p.paint(keyStyle, key+"="))
		sb.WriteString(value)
	}
	field(logging.KeyBackend, entry.Backend)
	field(logging.KeyClass, entry.Class)
	field(logging.KeyRequestID, entry.RequestID)

	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		field(k, attrString(entry.Attrs[k]))
	}

	return sb.String()
}

func attrString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return "null"
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
