// Package logging provides structured logging for smali2java.
//
// Logs are JSON lines written with log/slog to smali2java.log inside the
// log directory (by default the smali2java config directory). Every decompile
// call gets its own child logger carrying the backend name, the class being
// decompiled and a request id, so a single call can be traced through the
// file after the fact:
//
//	logger, err := logging.NewLogger(dir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	reqLog := logger.WithBackend("jadx").WithClass("com/example/Foo").WithRequest()
//	reqLog.Info("decompile started", "input", path)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"decompile started","backend":"jadx","class":"com/example/Foo","request_id":"3f0c...","input":"/src/Foo.smali"}
//
// The decompiler's captured stdout and stderr are logged at DEBUG level.
//
// # Rotation
//
// [RotatingWriter] rotates the file once it would exceed MaxSizeMB, keeping
// MaxBackups numbered backups that are optionally gzip-compressed.
// It works over any afero filesystem.
//
// # Reading logs back
//
// [AggregateLogs] reads the current file and its backups, [FilterLogs]
// narrows the result by level, time, backend, class or request id, and
// [WriteLogEntries] renders entries as text, JSON or CSV. The "smali2java logs"
// command is built on these.
//
// All types in this package are safe for concurrent use.
package logging
