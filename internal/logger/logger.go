// Package logger holds the process-wide zerolog logger used by every
// component of a netclip node.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	mu   sync.RWMutex
	log  zerolog.Logger
	node string
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log = newLogger(os.Stdout, FormatConsole)
}

func newLogger(w io.Writer, format string) zerolog.Logger {
	if format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).
		With().
		Timestamp().
		Logger()
}

// SetOutput replaces the process logger. Loggers already handed out by
// Component keep writing to the previous output.
func SetOutput(w io.Writer, format string) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(w, format)
}

// SetNode tags every subsequent Component logger with the node id.
func SetNode(id string) {
	mu.Lock()
	defer mu.Unlock()
	node = id
}

func GetLogger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	ctx := log.With().Str("component", name)
	if node != "" {
		ctx = ctx.Str("node", node)
	}
	return ctx.Logger()
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func SetLevel(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
}

func Debug() *zerolog.Event {
	l := GetLogger()
	return l.Debug()
}

func Info() *zerolog.Event {
	l := GetLogger()
	return l.Info()
}

func Warn() *zerolog.Event {
	l := GetLogger()
	return l.Warn()
}

func Error() *zerolog.Event {
	l := GetLogger()
	return l.Error()
}

// Preview shortens s for log lines, appending "..." when cut.
func Preview(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
