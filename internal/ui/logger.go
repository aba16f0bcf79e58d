package ui

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/esp8266-setup/esp8266-setup/internal/branding"
)

// NewLogger returns the progress logger. Output goes to w without
// timestamps, prefixed with the CLI name. verbose enables debug messages.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          branding.CLIName(),
		ReportTimestamp: false,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
