// Package sessionlog provides an injectable logger plus one-shot warning
// deduplication: write to an injected *log.Logger, falling back to the
// default system log, with dailylogger's daily-rotating file writer
// available as an alternate sink.
package sessionlog

import (
	"fmt"
	"log"

	"github.com/goblimey/go-tools/dailylogger"
)

// Logger wraps a *log.Logger, adding per-kind one-shot suppression for
// repeated warnings that would otherwise flood the log (unknown signal
// code, missing time).
type Logger struct {
	logger *log.Logger
	warned map[string]bool
}

// New wraps an existing *log.Logger. A nil logger falls back to the
// default system log, matching makeLogEntry's nil-check.
func New(logger *log.Logger) *Logger {
	return &Logger{logger: logger, warned: make(map[string]bool)}
}

// NewDailyFile returns a Logger writing to a daily-rotating file in
// directory, named prefix.<date>.log, via dailylogger - the same
// rotation scheme rtcmlogger.go wires up for its event log.
func NewDailyFile(directory, prefix string) *Logger {
	writer := dailylogger.New(directory, prefix, ".log")
	return New(log.New(writer, prefix, log.LstdFlags|log.Lshortfile))
}

// Printf writes a log entry, unconditionally.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.print(fmt.Sprintf(format, args...))
}

func (l *Logger) print(s string) {
	if l.logger == nil {
		log.Print(s)
		return
	}
	l.logger.Print(s)
}

// WarnOnce logs a warning identified by kind at most once per Logger
// lifetime (or until Reset), per §7's "one-shot warning per code kind" /
// "suppress per-session repeated warnings" policies for unknown signal
// codes and missing-time failures.
func (l *Logger) WarnOnce(kind, format string, args ...interface{}) {
	if l.warned[kind] {
		return
	}
	l.warned[kind] = true
	l.print(fmt.Sprintf(format, args...))
}

// Reset clears one-shot warning state, for session reset semantics.
func (l *Logger) Reset() {
	l.warned = make(map[string]bool)
}
