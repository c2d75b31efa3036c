// Package logging provides structured logging for snapstore.
//
// # Overview
//
// The logging package provides a structured logging interface with support for:
//
//   - Multiple log levels (debug, info, warn, error)
//   - Text and JSON output formats
//   - Snapshot id tagging for store events
//   - Field-based contextual logging
//
// # Creating a Logger
//
// Create a logger with configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "/var/log/snapstore.log",
//	})
//
// Or use defaults:
//
//	logger := logging.NewDefault() // Info level, text format, stderr
//
// For testing, use a no-op logger:
//
//	logger := logging.NewNop()
//
// # Log Levels
//
// Four log levels are supported:
//
//	logger.Debug("detailed debugging info", "key", "value")
//	logger.Info("informational message", "key", "value")
//	logger.Warn("warning message", "key", "value")
//	logger.Error("error message", "key", "value")
//
// Parse level from string:
//
//	level := logging.ParseLevel("debug") // Returns LevelDebug
//
// # Structured Logging
//
// Add key-value pairs to log entries:
//
//	logger.Info("version published",
//	    "kind", "transaction",
//	    "version", 12,
//	    "tables", []string{"gates", "pins"},
//	)
//
// Output (JSON format):
//
//	{
//	    "ts": "2026-02-18T10:30:00Z",
//	    "level": "info",
//	    "msg": "version published",
//	    "kind": "transaction",
//	    "version": 12,
//	    "tables": ["gates", "pins"]
//	}
//
// # Snapshot Tagging
//
// Every store snapshot logs through its own tagged logger:
//
//	snapLogger := logger.WithSnapshot(id.String())
//	snapLogger.Debug("transaction started") // Includes snapshot field
//
// # Contextual Fields
//
// Create loggers with persistent fields:
//
//	runLogger := logger.WithFields(
//	    "script", path,
//	)
//
// Text output sorts fields by key so runs can be compared line by line.
//
// # Output Formats
//
// Text format (human-readable):
//
//	2026-02-18T10:30:00Z [info] version published kind=transaction tables=[gates pins] version=12
//
// JSON format (machine-parseable):
//
//	{"ts":"2026-02-18T10:30:00Z","level":"info","msg":"version published",...}
//
// # Output Destinations
//
// Configure output destination:
//
//	logging.Config{Output: "stderr"}                 // Standard error (default)
//	logging.Config{Output: "stdout"}                 // Standard output
//	logging.Config{Output: "/var/log/snapstore.log"} // File path
package logging
