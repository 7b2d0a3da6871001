package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"user-admin-console/internal/core/config"
)

func TestFromConfigWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := FromConfig(config.Log{Level: "info", JSON: true}, &buf)
	l.Debug("hidden")
	l.Info("shown")
	cleanup()

	out := buf.String()
	assert.Contains(t, out, `"msg":"shown"`)
	assert.NotContains(t, out, "hidden")
}

func TestFromConfigRotatesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	var buf bytes.Buffer
	l, cleanup := FromConfig(config.Log{
		Level:  "debug",
		Rotate: config.Rotate{Enable: true, Filename: file, MaxSizeMB: 1},
	}, &buf)
	l.Info("to both")
	cleanup()

	assert.FileExists(t, file)
	assert.Contains(t, buf.String(), "to both")
}

func TestToWriter(t *testing.T) {
	var buf bytes.Buffer
	lb, done := FromConfig(config.Log{Level: "debug", JSON: true}, &buf)
	w := ToWriter(lb, zapcore.InfoLevel)
	_, err := w.Write([]byte("from gin\n"))
	done()
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"from gin"`)
}
