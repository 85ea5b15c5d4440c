// Package utils holds small helpers shared across the search pipeline.
package utils

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// DefaultMaxStringLength is the default maximum length for truncated strings.
const DefaultMaxStringLength = 500

// CloseWithLog closes c and logs a warning on failure instead of returning
// the error, so it is safe to use in defer statements without shadowing the
// primary error of the surrounding function.
func CloseWithLog(c io.Closer, log *zap.Logger) {
	if err := c.Close(); err != nil && log != nil {
		log.Warn("failed to close body", zap.Error(err))
	}
}

// TruncateString shortens s to at most maxLen characters, appending a suffix
// that records the original total length so callers know data was omitted.
// If maxLen is zero or negative, [DefaultMaxStringLength] is used instead.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}
