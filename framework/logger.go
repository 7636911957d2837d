package framework

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Printf(message string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(message, args...))
}

// SlogLogger adapts a structured logger to the Logger interface. Messages are logged at
// debug level.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return nullLogger{}
	}
	return slogLogger{logger: logger}
}

// DebugEntry is one line of debug output recorded while an example ran.
type DebugEntry struct {
	Time    time.Time
	Message string
}

// DebugLog is the debug output of one example, oldest entry first.
type DebugLog []DebugEntry

// debugRecorder is the Logger each Context writes its debug output to.
type debugRecorder struct {
	entries []DebugEntry
	lock    sync.Mutex
}

func (r *debugRecorder) Printf(message string, args ...interface{}) {
	entry := DebugEntry{Time: time.Now(), Message: fmt.Sprintf(message, args...)}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *debugRecorder) log() DebugLog {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append(DebugLog(nil), r.entries...)
}

// Dump writes one line per entry, stamped with the time elapsed since the first entry.
// Continuation lines of a multi-line message are indented to line up under the message.
func (l DebugLog) Dump(dest io.Writer, prefix string) {
	if len(l) == 0 {
		return
	}
	start := l[0].Time
	for _, entry := range l {
		stamp := fmt.Sprintf("+%.3fs ", entry.Time.Sub(start).Seconds())
		indent := strings.Repeat(" ", len(stamp))
		for i, line := range strings.Split(strings.TrimRight(entry.Message, "\n"), "\n") {
			if i == 0 {
				fmt.Fprintf(dest, "%s%s%s\n", prefix, stamp, line)
			} else {
				fmt.Fprintf(dest, "%s%s%s\n", prefix, indent, line)
			}
		}
	}
}
