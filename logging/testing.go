package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

type testAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender that writes console lines through tb.Log, keeping log
// output attached to the test that produced it.
func NewTestAppender(tb testing.TB) Appender {
	return testAppender{tb}
}

func (app testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	app.tb.Helper()
	line, err := consoleLine(entry, fields)
	app.tb.Log(line)
	return err
}

func (app testAppender) Sync() error {
	return nil
}
