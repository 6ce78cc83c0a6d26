// Package cli implements the gtrends command-line interface.
//
// The CLI wraps the trends client: each API endpoint has a command that
// prints the reshaped response as indented JSON on stdout. Configuration
// comes from defaults, an optional file, an optional .env file, GTRENDS_
// environment variables and flags, in that order.
//
// # Commands
//
// The main commands are:
//   - trending, related, compare, suggestions, opportunities, growth, geo:
//     query the API
//   - health: check the API status
//   - config: show or validate the effective configuration
//   - cache: manage the response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// shows client reconfiguration. Loggers are passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger: timestamped records with a short
// wall-clock stamp ("14:32:01.45") at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one API command from client creation to decoded result.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time as a structured field, e.g.
// "Fetched trending searches elapsed=312ms".
func (p *progress) done(msg string) {
	p.logger.Info(msg, "elapsed", time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

// withLogger attaches l to ctx for the command's RunE.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger set by the root command, or
// log.Default() when a command runs outside it (as in unit tests).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
