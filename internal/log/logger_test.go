package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/ctfdec/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		l, closer, err := New(config.LogConfig{Level: "debug", Format: "text"}, nil)
		require.NoError(t, err)
		require.NoError(t, closer.Close())
		require.Equal(t, logrus.DebugLevel, l.GetLevel())
		require.IsType(t, &logrus.TextFormatter{}, l.Formatter)
	})

	t.Run("json with file", func(t *testing.T) {
		var console bytes.Buffer
		path := filepath.Join(t.TempDir(), "ctfdump.log")
		l, closer, err := New(config.LogConfig{
			Level:  "info",
			Format: "json",
			File:   config.FileConfig{Enabled: true, Path: path, MaxSizeMB: 1},
		}, &console)
		require.NoError(t, err)
		require.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

		l.WithField("stream", "chan0").Info("stream decoded")
		require.NoError(t, closer.Close())
		require.Contains(t, console.String(), `"stream":"chan0"`)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(data), `"stream":"chan0"`)
		require.Contains(t, string(data), `"msg":"stream decoded"`)
	})

	t.Run("errors", func(t *testing.T) {
		_, _, err := New(config.LogConfig{Level: "loud", Format: "text"}, nil)
		require.Error(t, err)

		_, _, err = New(config.LogConfig{Level: "info", Format: "xml"}, nil)
		require.Error(t, err)

		_, _, err = New(config.LogConfig{Level: "info", Format: "text", File: config.FileConfig{Enabled: true}}, nil)
		require.Error(t, err)
	})
}
