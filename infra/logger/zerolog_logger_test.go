package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargecast/config"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestConfigure_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chargecast.log")
	closer, err := Configure(config.LoggingConfig{Level: "warn", File: path, MaxSizeMB: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Configure(config.LoggingConfig{Level: "info"}) })

	l := New("fit")
	l.Infof("filtered")
	l.Warnf("kept %d", 7)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `"message":"kept 7"`), out)
	assert.True(t, strings.Contains(out, `"component":"fit"`), out)
	assert.False(t, strings.Contains(out, "filtered"))
}

func TestConfigure_Levels(t *testing.T) {
	t.Cleanup(func() { _, _ = Configure(config.LoggingConfig{Level: "info"}) })
	for _, lvl := range []string{"debug", "INFO", "disabled", ""} {
		_, err := Configure(config.LoggingConfig{Level: lvl})
		assert.NoError(t, err, lvl)
	}
	_, err := Configure(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
