package logging

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogEntry represents a parsed log entry with all structured fields.
type LogEntry struct {
	Timestamp time.Time      `json:"time"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Backend   string         `json:"backend,omitempty"`
	Class     string         `json:"class,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// LogFilter defines criteria for filtering log entries.
// Zero-valued fields do not filter.
type LogFilter struct {
	// Level keeps entries at or above this level (DEBUG < INFO < WARN < ERROR)
	Level string

	StartTime time.Time
	EndTime   time.Time

	Backend   string
	Class     string
	RequestID string

	// MessageContains keeps entries whose message contains this substring
	MessageContains string
}

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// AggregateLogs reads smali2java.log in dir together with its rotated
// backups (plain or gzipped) and returns every entry sorted by timestamp.
// Lines that are not valid JSON are skipped.
func AggregateLogs(dir string) ([]LogEntry, error) {
	current := filepath.Join(dir, FileName)
	if _, err := os.Stat(current); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no log file found in %s: %w", dir, err)
		}
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	backups, err := filepath.Glob(current + ".*")
	if err != nil {
		return nil, fmt.Errorf("failed to list rotated logs: %w", err)
	}

	var entries []LogEntry
	for _, path := range append(backups, current) {
		fileEntries, err := readLogFile(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fileEntries...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	return entries, nil
}

// readLogFile parses one log file, transparently decompressing .gz backups.
func readLogFile(path string) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed log %s: %w", path, err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	return parseLogLines(r)
}

func parseLogLines(r io.Reader) ([]LogEntry, error) {
	scanner := bufio.NewScanner(r)

	// Tool output is logged verbatim at debug level, so lines can be long
	const maxScanTokenSize = 4 * 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	var entries []LogEntry
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := parseLogEntry(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}
	return entries, nil
}

// parseLogEntry parses a single JSON log line into a LogEntry.
func parseLogEntry(line string) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	entry := LogEntry{Attrs: make(map[string]any)}

	for k, v := range raw {
		s, isString := v.(string)
		switch {
		case k == "time" && isString:
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				entry.Timestamp = t
			}
		case k == "level" && isString:
			entry.Level = s
		case k == "msg" && isString:
			entry.Message = s
		case k == KeyBackend && isString:
			entry.Backend = s
		case k == KeyClass && isString:
			entry.Class = s
		case k == KeyRequestID && isString:
			entry.RequestID = s
		default:
			entry.Attrs[k] = v
		}
	}

	return entry, nil
}

// FilterLogs returns the entries matching every criterion in filter.
func FilterLogs(entries []LogEntry, filter LogFilter) []LogEntry {
	if filter == (LogFilter{}) {
		return entries
	}

	var filtered []LogEntry
	for _, entry := range entries {
		if matchesFilter(entry, filter) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func matchesFilter(entry LogEntry, filter LogFilter) bool {
	if filter.Level != "" {
		want, okWant := levelOrder[strings.ToUpper(filter.Level)]
		got, okGot := levelOrder[entry.Level]
		if okWant && okGot && got < want {
			return false
		}
	}

	if !filter.StartTime.IsZero() && entry.Timestamp.Before(filter.StartTime) {
		return false
	}
	if !filter.EndTime.IsZero() && entry.Timestamp.After(filter.EndTime) {
		return false
	}

	if filter.Backend != "" && entry.Backend != filter.Backend {
		return false
	}
	// Class matches either the full name or a package prefix
	if filter.Class != "" && entry.Class != filter.Class && !strings.HasPrefix(entry.Class, strings.TrimSuffix(filter.Class, "/")+"/") {
		return false
	}
	if filter.RequestID != "" && entry.RequestID != filter.RequestID {
		return false
	}

	if filter.MessageContains != "" && !strings.Contains(entry.Message, filter.MessageContains) {
		return false
	}

	return true
}

// ExportFormats returns the formats accepted by WriteLogEntries.
func ExportFormats() []string {
	return []string{"text", "json", "csv"}
}

// WriteLogEntries writes entries to w as "text", "json" or "csv".
func WriteLogEntries(w io.Writer, entries []LogEntry, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return exportJSON(w, entries)
	case "", "text":
		return exportText(w, entries)
	case "csv":
		return exportCSV(w, entries)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: %s)", format, strings.Join(ExportFormats(), ", "))
	}
}

// ExportLogEntries writes entries to a new file at outputPath.
func ExportLogEntries(entries []LogEntry, outputPath string, format string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := WriteLogEntries(file, entries, format); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func exportJSON(w io.Writer, entries []LogEntry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if entries == nil {
		entries = []LogEntry{}
	}
	return encoder.Encode(entries)
}

// exportText writes one line per entry:
// [TIMESTAMP] LEVEL - MESSAGE (context) {attrs}
func exportText(w io.Writer, entries []LogEntry) error {
	for _, entry := range entries {
		parts := []string{
			fmt.Sprintf("[%s]", entry.Timestamp.Format("2006-01-02 15:04:05.000")),
			entry.Level,
			"-",
			entry.Message,
		}

		var context []string
		if entry.Backend != "" {
			context = append(context, "backend="+entry.Backend)
		}
		if entry.Class != "" {
			context = append(context, "class="+entry.Class)
		}
		if entry.RequestID != "" {
			context = append(context, "request="+entry.RequestID)
		}
		if len(context) > 0 {
			parts = append(parts, "("+strings.Join(context, ", ")+")")
		}

		if len(entry.Attrs) > 0 {
			attrsJSON, _ := json.Marshal(entry.Attrs)
			parts = append(parts, string(attrsJSON))
		}

		if _, err := io.WriteString(w, strings.Join(parts, " ")+"\n"); err != nil {
			return fmt.Errorf("failed to write text entry: %w", err)
		}
	}
	return nil
}

func exportCSV(w io.Writer, entries []LogEntry) error {
	writer := csv.NewWriter(w)

	headers := []string{"timestamp", "level", "message", "backend", "class", "request_id", "attrs"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range entries {
		attrsJSON := ""
		if len(entry.Attrs) > 0 {
			if b, err := json.Marshal(entry.Attrs); err == nil {
				attrsJSON = string(b)
			}
		}

		record := []string{
			entry.Timestamp.Format(time.RFC3339Nano),
			entry.Level,
			entry.Message,
			entry.Backend,
			entry.Class,
			entry.RequestID,
			attrsJSON,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
