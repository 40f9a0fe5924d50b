package testutils

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

// testOutput makes the test a valid io.Writer for logs and CLI output.
type testOutput struct{ testing.TB }

func (to testOutput) Write(p []byte) (n int, err error) {
	to.Logf("%s", p)

	return len(p), nil
}

// NewTestOutput returns a simple io.Writer implementation that uses the test's
// logger as an output.
func NewTestOutput(t testing.TB) io.Writer {
	return testOutput{t}
}

// NewLogger returns a logger writing to t.Logf, with every level enabled
// and hook, if not nil, attached.
func NewLogger(t testing.TB, hook ...logrus.Hook) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(NewTestOutput(t))
	l.SetLevel(logrus.TraceLevel)
	for _, h := range hook {
		l.AddHook(h)
	}

	return l
}
