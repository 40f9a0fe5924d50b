package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/flakerun/chromium"
	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/log"
)

func TestNewChromiumLauncher(t *testing.T) {
	t.Parallel()

	conf := newConfigDefaults()
	conf.ExecutablePath = null.StringFrom("/opt/chromium/chrome")
	l, err := newChromiumLauncher(nil, conf, log.NewNullLogger())
	require.NoError(t, err)
	bt, ok := l.(*chromium.BrowserType)
	require.True(t, ok)
	assert.Equal(t, "chromium", bt.Name())
	assert.Equal(t, "/opt/chromium/chrome", bt.ExecutablePath())
}

func TestLaunchOptionsKeepDefaultTimeout(t *testing.T) {
	t.Parallel()

	conf := newConfigDefaults()
	conf.Timeout = null.StringFrom("100ms")
	conf.NavigationTimeout = null.StringFrom("50ms")
	conf.WindowWidth = null.IntFrom(800)

	opts := launchOptionsFromConfig(conf)
	assert.Equal(t, common.DefaultTimeout, opts.Timeout)
	assert.Equal(t, int64(800), opts.WindowWidth)
}
