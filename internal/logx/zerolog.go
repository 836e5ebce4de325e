package logx

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologOptions configures NewZerolog.
type ZerologOptions struct {
	ServiceName string
	Level       string
	Console     bool
	Output      io.Writer
}

// ZerologAdapter adapts zerolog.Logger to the logx.Logger interface.
type ZerologAdapter struct {
	l zerolog.Logger
}

// NewZerolog builds a zerolog-backed Logger.
func NewZerolog(opts ZerologOptions) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	ctx := zerolog.New(out).Level(ParseZerologLevel(opts.Level)).With().Timestamp()
	if opts.ServiceName != "" {
		ctx = ctx.Str("service", opts.ServiceName)
	}
	return &ZerologAdapter{l: ctx.Logger()}
}

// ParseZerologLevel maps a textual level to zerolog; unknown values fall back to info.
func ParseZerologLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (z *ZerologAdapter) Debug(msg string, fields ...Field) { withFields(z.l.Debug(), fields).Msg(msg) }
func (z *ZerologAdapter) Info(msg string, fields ...Field)  { withFields(z.l.Info(), fields).Msg(msg) }
func (z *ZerologAdapter) Warn(msg string, fields ...Field)  { withFields(z.l.Warn(), fields).Msg(msg) }
func (z *ZerologAdapter) Error(msg string, fields ...Field) { withFields(z.l.Error(), fields).Msg(msg) }

// With returns a child logger carrying the fields.
func (z *ZerologAdapter) With(fields ...Field) Logger {
	ctx := z.l.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologAdapter{l: ctx.Logger()}
}

// Sync is a no-op; zerolog writes synchronously.
func (z *ZerologAdapter) Sync() error { return nil }

func withFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		e = e.Interface(f.Key, f.Value)
	}
	return e
}

var _ Logger = (*ZerologAdapter)(nil)
