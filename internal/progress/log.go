// Package progress writes the append-only stage log: one
// "<timestamp> : <message>" line per event.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// TimestampLayout renders as Year-Monthname-Day-Hour:Minute:Second.
const TimestampLayout = "2006-Jan-02-15:04:05"

type lineFormatter struct{}

func (lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	return []byte(e.Time.Format(TimestampLayout) + " : " + e.Message + "\n"), nil
}

// Log is a scoped handle on the progress destination. A nil *Log discards.
// Write failures never surface to callers.
type Log struct {
	logger *logrus.Logger
	closer io.Closer
}

// Open appends to path, creating it when missing.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress log %q: %w", path, err)
	}
	l := New(f)
	l.closer = f
	return l, nil
}

func New(w io.Writer) *Log {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(lineFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	return &Log{logger: logger}
}

func Discard() *Log { return New(io.Discard) }

func (l *Log) Log(message string) {
	if l == nil {
		return
	}
	l.logger.Info(message)
}

func (l *Log) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

func (l *Log) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	l.logger.SetOutput(io.Discard)
	return err
}
