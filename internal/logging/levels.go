package logging

// This file holds the level names shared by the daemon flags, the FANOUT_*
// environment and the CLI. SUCCESS is an output style, not a level, and is
// not accepted here.

import (
	"fmt"
	"strings"
)

// ValidLogLevels is the set of level names accepted by --log-level,
// FANOUT_LOG_LEVEL and the fanoutctl global flag. Names are upper case.
var ValidLogLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// IsValidLogLevel reports whether level is a supported level name.
func IsValidLogLevel(level string) bool {
	return ValidLogLevels[level]
}

// ValidateLogLevel returns an error naming the accepted levels when level is
// not one of them.
func ValidateLogLevel(level string) error {
	if !IsValidLogLevel(level) {
		return fmt.Errorf("invalid log level: %s (must be one of DEBUG, INFO, WARN, ERROR)", level)
	}
	return nil
}

// NormalizeLogLevel upper-cases and trims a user supplied level name.
func NormalizeLogLevel(level string) string {
	return strings.ToUpper(strings.TrimSpace(level))
}
