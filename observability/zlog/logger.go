// Package zlog adapts core.Logger to rs/zerolog.
package zlog

import (
	"io"
	"os"

	"github.com/StillLYOU/IL2235-lab1/core"
	"github.com/rs/zerolog"
)

// Logger implements core.Logger on top of a zerolog.Logger.
type Logger struct {
	zl zerolog.Logger
}

var _ core.Logger = (*Logger)(nil)

// New returns a console logger writing to w (os.Stdout when nil).
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}

	consoleWriter := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	zl := zerolog.New(consoleWriter).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl}
}

// Wrap adapts an existing zerolog.Logger.
func Wrap(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

func (l *Logger) Debug(msg string, fields ...core.Field) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...core.Field) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...core.Field) {
	l.emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...core.Field) {
	l.emit(l.zl.Error(), msg, fields)
}

func (l *Logger) emit(ev *zerolog.Event, msg string, fields []core.Field) {
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}
