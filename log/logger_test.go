package log

import (
	"io"
	"regexp"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/flakerun/lib/testutils"
)

func newHookedLogger(t *testing.T, filter *regexp.Regexp) (*Logger, *testutils.SimpleLogrusHook) {
	t.Helper()

	hook := testutils.NewLogHook()
	lg := logrus.New()
	lg.SetOutput(io.Discard)
	lg.SetLevel(logrus.DebugLevel)
	lg.AddHook(hook)

	return New(lg, filter), hook
}

func TestLoggerSequence(t *testing.T) {
	t.Parallel()

	l, hook := newHookedLogger(t, nil)
	run := l.ForRun(2)

	run.Infof("step", "first")
	run.Debugf("action", "second")
	run.Tracef("action", "dropped by level")

	entries := hook.Drain()
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(1), entries[0].Data["seq"])
	assert.Equal(t, uint64(2), entries[1].Data["seq"])
	assert.Equal(t, 2, entries[0].Data["run"])
	assert.Equal(t, "step", entries[0].Data["category"])
	assert.Equal(t, uint64(2), run.Seq())

	// a new run starts counting from scratch
	next := l.ForRun(3)
	next.Infof("step", "again")
	entries = hook.Drain()
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(1), entries[0].Data["seq"])
	assert.Equal(t, 3, entries[0].Data["run"])
}

func TestLoggerCategoryFilter(t *testing.T) {
	t.Parallel()

	l, hook := newHookedLogger(t, regexp.MustCompile(`^step$`))
	l.Infof("step", "kept")
	l.Infof("action", "filtered")

	assert.Equal(t, []string{"kept"}, hook.Lines())
	assert.Equal(t, uint64(1), l.Seq())
}

func TestLoggerWithFields(t *testing.T) {
	t.Parallel()

	l, hook := newHookedLogger(t, nil)
	child := l.WithFields(logrus.Fields{"batch": "b1"}).ForRun(1)
	child.Warnf("run", "hello %s", "world")

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "hello world", last.Message)
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, "b1", last.Data["batch"])
	assert.Equal(t, 1, last.Data["run"])
}

func TestNilLogger(t *testing.T) {
	t.Parallel()

	var l *Logger
	assert.NotPanics(t, func() { l.Infof("x", "y") })
	assert.Nil(t, l.WithFields(logrus.Fields{"a": 1}))

	nl := NewNullLogger()
	assert.NotPanics(t, func() { nl.Errorf("x", "y") })
	assert.False(t, nl.DebugMode())
	require.NoError(t, nl.SetLevel("debug"))
	assert.True(t, nl.DebugMode())
	require.Error(t, nl.SetLevel("loud"))
}
