package errors

import (
	"fmt"
	"os"
)

// LogHandler is a Handler that logs errors to stderr.
type LogHandler struct {
	// Verbose enables detailed output including timestamps.
	Verbose bool
}

// HandleError logs a BindError to stderr.
func (h *LogHandler) HandleError(err *BindError) {
	if err == nil {
		return
	}
	if h.Verbose {
		fmt.Fprintf(os.Stderr, "[databind %s] %s %s: %v\n", err.Kind, err.Timestamp.Format("15:04:05.000"), err.Op, err.Err)
	} else {
		fmt.Fprintf(os.Stderr, "[databind %s] %s: %v\n", err.Kind, err.Op, err.Err)
	}
}
