package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

var logFile *os.File

// InitLogger sets up the process-wide logger. With verbose enabled it
// writes debug-level records to a date-stamped file under /tmp so the TUI
// screen stays clean; otherwise records are discarded.
func InitLogger(verbose bool) *slog.Logger {
	if !verbose {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(logger)
		return logger
	}

	name := fmt.Sprintf("/tmp/monodo_%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating log file: %v\n", err)
		return slog.Default()
	}
	logFile = f

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
	logger.Debug("verbose logging enabled")
	return logger
}

// CloseLogger closes the log file if it's open
func CloseLogger() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
