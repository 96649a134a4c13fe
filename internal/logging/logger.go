// Package logging provides the structured logging interface shared by the
// acceleration server and command-line front end. The zerolog backend is the
// default; a standard library adapter renders the same records as logfmt
// lines for callers that already hold a *log.Logger.
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the leveled, structured logger used across the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	// Error logs msg with err attached under the "error" key.
	Error(msg string, err error, fields ...Field)
}

// Field is one key-value pair of a log record.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an integer field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Uint64 creates a uint64 field.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// Float64 creates a float64 field.
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

// Bool creates a boolean field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Problem names the catalogue entry a record refers to.
func Problem(name string) Field { return String("problem", name) }

// Runner names the runner a record refers to.
func Runner(name string) Field { return String("runner", name) }

// Terms records a number of terms consumed.
func Terms(n uint64) Field { return Uint64("terms", n) }

// ─── zerolog backend ────────────────────────────────────────────────────────

// ZerologAdapter writes records as zerolog JSON lines.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a Logger backed by logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewDefaultLogger logs to stderr with timestamps.
func NewDefaultLogger() *ZerologAdapter {
	return NewZerologAdapter(zerolog.New(os.Stderr).With().Timestamp().Logger())
}

// NewLogger logs to w, tagging every record with component.
func NewLogger(w io.Writer, component string) *ZerologAdapter {
	return NewZerologAdapter(zerolog.New(w).With().Str("component", component).Timestamp().Logger())
}

// With returns a child logger that attaches fields to every record.
func (z *ZerologAdapter) With(fields ...Field) *ZerologAdapter {
	ctx := z.logger.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return NewZerologAdapter(ctx.Logger())
}

func (z *ZerologAdapter) Debug(msg string, fields ...Field) { emit(z.logger.Debug(), fields).Msg(msg) }
func (z *ZerologAdapter) Info(msg string, fields ...Field)  { emit(z.logger.Info(), fields).Msg(msg) }
func (z *ZerologAdapter) Warn(msg string, fields ...Field)  { emit(z.logger.Warn(), fields).Msg(msg) }

func (z *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	emit(z.logger.Error().Err(err), fields).Msg(msg)
}

// emit adds fields to event with their typed zerolog encoders.
func emit(event *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event = event.Str(f.Key, v)
		case int:
			event = event.Int(f.Key, v)
		case uint64:
			event = event.Uint64(f.Key, v)
		case float64:
			event = event.Float64(f.Key, v)
		case bool:
			event = event.Bool(f.Key, v)
		case time.Duration:
			event = event.Dur(f.Key, v)
		case error:
			event = event.AnErr(f.Key, v)
		default:
			event = event.Interface(f.Key, v)
		}
	}
	return event
}

// ─── standard library backend ───────────────────────────────────────────────

// StdLoggerAdapter writes records as logfmt lines through a *log.Logger,
// e.g. `level=info msg="request completed" runner=aitken terms=56`.
type StdLoggerAdapter struct {
	logger *stdlog.Logger
}

// NewStdLoggerAdapter creates a Logger backed by logger.
func NewStdLoggerAdapter(logger *stdlog.Logger) *StdLoggerAdapter {
	return &StdLoggerAdapter{logger: logger}
}

func (s *StdLoggerAdapter) Debug(msg string, fields ...Field) { s.write("debug", msg, fields) }
func (s *StdLoggerAdapter) Info(msg string, fields ...Field)  { s.write("info", msg, fields) }
func (s *StdLoggerAdapter) Warn(msg string, fields ...Field)  { s.write("warn", msg, fields) }

func (s *StdLoggerAdapter) Error(msg string, err error, fields ...Field) {
	s.write("error", msg, append([]Field{{Key: "error", Value: err}}, fields...))
}

func (s *StdLoggerAdapter) write(level, msg string, fields []Field) {
	var b strings.Builder
	b.WriteString("level=")
	b.WriteString(level)
	b.WriteString(" msg=")
	b.WriteString(logfmtValue(msg))
	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(logfmtValue(fmt.Sprint(f.Value)))
	}
	s.logger.Println(b.String())
}

// logfmtValue quotes v when it is empty or holds spaces, quotes or '='.
func logfmtValue(v string) string {
	if v == "" || strings.ContainsAny(v, " \"=\t\n") {
		return strconv.Quote(v)
	}
	return v
}
