// Package racebots drives a running keyrace server with scripted players.
package racebots

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/keyrace/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends logs to stdout and to logFile. An empty logFile gets a
// timestamped name.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "race_log_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return nil
}
