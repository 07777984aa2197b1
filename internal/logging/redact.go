package logging

// This file implements token redaction for log output.
//
// REDACTION RULES:
//   - Empty tokens print as <empty>
//   - INFO and above keep the first 10 characters
//   - DEBUG keeps the first 16 characters
//   - Tokens no longer than the kept prefix are masked entirely

import "github.com/charmbracelet/log"

const (
	// redactedPrefixLen is how many leading token characters stay visible in
	// INFO and above.
	redactedPrefixLen = 10

	// debugPrefixLen is used when DEBUG is enabled, to tell apart tokens that
	// share a prefix.
	debugPrefixLen = 16
)

// Redact shortens a bearer token for log output. The full token is never
// written, not even at DEBUG level.
func Redact(token string) string {
	if token == "" {
		return "<empty>"
	}

	n := redactedPrefixLen
	_, errOut := loggers()
	if errOut.GetLevel() <= log.DebugLevel {
		n = debugPrefixLen
	}

	if len(token) <= n {
		// Short tokens are fully masked
		return "***"
	}
	return token[:n] + "..."
}
