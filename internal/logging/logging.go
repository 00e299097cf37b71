// Package logging wires the structured logger the rest of the firmware
// core writes through (spec.md ambient stack addition). The original
// firmware writes human-readable lines to a UART, gated by a compile-time
// log level; this build has no level gate, structures each line with
// zerolog, and adds a rate limiter so a stuck polling loop can't flood the
// host console the way repeated serial writes would (grounded on
// joeycumines-go-utilpkg's catrate, used there for exactly this purpose:
// bounding how often a noisy event is logged).
package logging

import (
	"io"
	"os"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/rs/zerolog"
)

// Logger is the serial-console-equivalent every component logs through.
type Logger struct {
	log     zerolog.Logger
	limiter *catrate.Limiter
}

// New creates a Logger writing to w in human-readable console form,
// suitable for a development host; a production build would instead write
// newline-delimited JSON directly to the UART.
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return &Logger{
		log: zerolog.New(console).With().Timestamp().Logger(),
		limiter: catrate.NewLimiter(map[time.Duration]int{
			time.Second: 5,
			time.Minute: 60,
		}),
	}
}

// Info logs an informational line unconditionally, mirroring the
// original's info()/debug() calls for one-shot startup and transition
// messages.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.event(l.log.Info(), fields).Msg(msg)
}

// Error logs an error line unconditionally.
func (l *Logger) Error(msg string, fields map[string]any) {
	l.event(l.log.Error(), fields).Msg(msg)
}

// RateLimited logs msg under category at Warn level, but drops repeats of
// the same category beyond the configured budget. Use this for anything
// driven by the poll loop that could otherwise repeat every iteration
// (e.g. a wakeup source misbehaving, a client sending malformed requests).
func (l *Logger) RateLimited(category string, msg string, fields map[string]any) {
	if _, ok := l.limiter.Allow(category); !ok {
		return
	}
	l.event(l.log.Warn(), fields).Str("category", category).Msg(msg)
}

func (l *Logger) event(e *zerolog.Event, fields map[string]any) *zerolog.Event {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	return e
}
