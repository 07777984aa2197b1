// Package logging provides structured, colorful logging for the fanout daemon
// and CLI, keeping log output consistent across the dispatch engine, the HTTP
// front end and the third-party libraries wired into them.
//
// Log levels follow Unix conventions: INFO and SUCCESS go to stdout, while
// WARN, ERROR and DEBUG go to stderr. When a log file is configured every level
// is written to that file instead.
//
// LOGGING FEATURES:
//   - Color-coded levels: DEBUG (purple), INFO (blue), WARN (yellow), ERROR (red), SUCCESS (green)
//   - Level writers: adapt io.Writer based libraries (gin) to the unified logger
//   - Resty adapter: routes HTTP client diagnostics through the same pipeline
//   - Output control: log file redirection and suppression for CLI tools
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	stdlog "log"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	mu sync.RWMutex

	// INFO/SUCCESS messages
	stdoutLogger = newLogger(os.Stdout)

	// WARN/ERROR/DEBUG messages
	stderrLogger = newLogger(os.Stderr)

	// Set once a CLI tool has taken control of log output
	cliConfigured = false

	// Destination used by Success, which builds its own styled logger
	successOutput io.Writer = os.Stdout
)

// newLogger creates a timestamped logger with the shared level styles.
func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	l.SetStyles(levelStyles())
	return l
}

// levelStyles returns the color scheme for each log level. Colors were picked
// to stay readable on both light and dark terminals.
func levelStyles() *log.Styles {
	styles := log.DefaultStyles()

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Foreground(lipgloss.Color("#7F6DFF"))

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Foreground(lipgloss.Color("#42E7FF"))

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Foreground(lipgloss.Color("#FFE763"))

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Foreground(lipgloss.Color("#FF4473"))

	return styles
}

func loggers() (*log.Logger, *log.Logger) {
	mu.RLock()
	defer mu.RUnlock()
	return stdoutLogger, stderrLogger
}

// Info logs informational messages about requests, dispatches and startup.
func Info(format string, v ...any) {
	out, _ := loggers()
	out.Info(fmt.Sprintf(format, v...))
}

// Warn logs non-fatal conditions such as an unreadable pool file or an
// unreliable counter reading.
func Warn(format string, v ...any) {
	_, errOut := loggers()
	errOut.Warn(fmt.Sprintf(format, v...))
}

// Error logs failures that need operator attention.
func Error(format string, v ...any) {
	_, errOut := loggers()
	errOut.Error(fmt.Sprintf(format, v...))
}

// Debug logs per-call detail, including individual dispatch outcomes.
func Debug(format string, v ...any) {
	_, errOut := loggers()
	errOut.Debug(fmt.Sprintf(format, v...))
}

// Success logs a completed operation in green. It is an INFO level message
// with a SUCCESS label, so it is filtered out together with INFO.
func Success(format string, v ...any) {
	out, _ := loggers()
	if out.GetLevel() > log.InfoLevel {
		return
	}

	mu.RLock()
	w := successOutput
	mu.RUnlock()

	styles := levelStyles()
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("SUCCESS").
		Foreground(lipgloss.Color("#60F281"))

	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	l.SetStyles(styles)
	l.Info(fmt.Sprintf(format, v...))
}

// parseLevel maps a level name to a charmbracelet level, defaulting to INFO.
func parseLevel(level string) log.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return log.DebugLevel
	case "INFO":
		return log.InfoLevel
	case "WARN":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// SetLevel sets the minimum level on both loggers. Unknown levels fall back
// to INFO; callers validate user input with ValidateLogLevel first.
func SetLevel(level string) {
	lvl := parseLevel(level)
	out, errOut := loggers()
	out.SetLevel(lvl)
	errOut.SetLevel(lvl)
}

// SetOutput redirects all levels to a single file, or suppresses all output
// when w is nil. The current level is preserved.
func SetOutput(w *os.File) {
	out, _ := loggers()
	lvl := out.GetLevel()

	mu.Lock()
	defer mu.Unlock()

	if w == nil {
		stdoutLogger.SetLevel(log.FatalLevel + 1)
		stderrLogger.SetLevel(log.FatalLevel + 1)
		return
	}

	stdoutLogger = newLogger(w)
	stderrLogger = newLogger(w)
	stdoutLogger.SetLevel(lvl)
	stderrLogger.SetLevel(lvl)
	successOutput = w
}

// SuppressOutput hides everything below ERROR. Used by fanoutctl so that
// tables and JSON output are not interleaved with log lines.
func SuppressOutput() {
	out, errOut := loggers()
	out.SetLevel(log.ErrorLevel)
	errOut.SetLevel(log.ErrorLevel)

	mu.Lock()
	cliConfigured = true
	mu.Unlock()
}

// RestoreOutput resets both loggers to stdout/stderr at INFO level.
func RestoreOutput() {
	mu.Lock()
	defer mu.Unlock()

	stdoutLogger = newLogger(os.Stdout)
	stderrLogger = newLogger(os.Stderr)
	stdoutLogger.SetLevel(log.InfoLevel)
	stderrLogger.SetLevel(log.InfoLevel)
	successOutput = os.Stdout
	cliConfigured = true
}

// IsConfiguredByCLI reports whether a CLI tool has taken over log output.
func IsConfiguredByCLI() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cliConfigured
}

// ============================================================================
// LIBRARY INTEGRATION
// ============================================================================

// LevelWriter forwards each written line to a fixed log level with an
// optional prefix. Used for gin's DefaultWriter and DefaultErrorWriter.
type LevelWriter struct {
	level  string
	prefix string
}

// NewLevelWriter creates a writer that logs each line at level with prefix.
// Valid levels: DEBUG, INFO, WARN, ERROR.
func NewLevelWriter(level, prefix string) io.Writer {
	return &LevelWriter{level: strings.ToUpper(level), prefix: prefix}
}

// Write splits p into lines and logs every non-empty line.
func (w *LevelWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		msg := line
		if w.prefix != "" {
			msg = w.prefix + ": " + line
		}
		switch w.level {
		case "DEBUG":
			Debug("%s", msg)
		case "WARN":
			Warn("%s", msg)
		case "ERROR":
			Error("%s", msg)
		default:
			Info("%s", msg)
		}
	}
	return len(p), nil
}

// RestyLogger implements resty.Logger so the remote transport and the CLI
// API client log through this package.
type RestyLogger struct{}

// Errorf logs resty errors at ERROR level.
func (RestyLogger) Errorf(format string, v ...any) { Error(format, v...) }

// Warnf logs resty warnings at WARN level.
func (RestyLogger) Warnf(format string, v ...any) { Warn(format, v...) }

// Debugf logs resty debug output at DEBUG level.
func (RestyLogger) Debugf(format string, v ...any) { Debug(format, v...) }

// RedirectStandardLog points the standard library logger at w, or discards
// its output when w is nil.
func RedirectStandardLog(w io.Writer) {
	if w == nil {
		stdlog.SetOutput(io.Discard)
		return
	}
	stdlog.SetOutput(w)
}
