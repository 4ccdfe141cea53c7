package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"manga-translator/internal/domain"
)

// Level controls which messages a logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// AppLogger is a leveled key/value logger implementing domain.Logger.
// Safe for concurrent use.
type AppLogger struct {
	level Level

	mu  sync.Mutex
	out io.Writer
}

// NewLogger creates a logger writing to stdout at the given level.
// Unknown level strings default to info.
func NewLogger(levelStr string) domain.Logger {
	return &AppLogger{level: parseLevel(levelStr), out: os.Stdout}
}

func (l *AppLogger) Debug(msg string, fields ...interface{}) {
	l.emit(LevelDebug, msg, fields)
}

func (l *AppLogger) Info(msg string, fields ...interface{}) {
	l.emit(LevelInfo, msg, fields)
}

func (l *AppLogger) Warn(msg string, fields ...interface{}) {
	l.emit(LevelWarn, msg, fields)
}

func (l *AppLogger) Error(msg string, err error, fields ...interface{}) {
	l.emit(LevelError, msg, append([]interface{}{"error", err}, fields...))
}

func (l *AppLogger) emit(lvl Level, msg string, fields []interface{}) {
	if lvl < l.level {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(" [")
	b.WriteString(levelNames[lvl])
	b.WriteString("] ")
	b.WriteString(msg)
	// Fields come in key/value pairs; a trailing odd key is dropped.
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, b.String())
}

func parseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
