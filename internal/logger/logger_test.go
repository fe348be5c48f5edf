package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, logrus.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, logrus.InfoLevel, ParseLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("verbose"))
}

func TestConfigure_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure("info", &buf)
	t.Cleanup(func() { Configure("info", &bytes.Buffer{}) })

	WithField("mode", "complete").Info("report exported")
	Debug("hidden at info level")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "report exported", entry["msg"])
	assert.Equal(t, "complete", entry["mode"])
	assert.Equal(t, "info", entry["level"])
}
