package utils

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLogger(t *testing.T) {
	t.Run("text prefixes the service once", func(t *testing.T) {
		var buf bytes.Buffer
		l := logrus.New()
		ConfigureLogger(l, LogOptions{App: "hostel-test", Out: &buf})
		ConfigureLogger(l, LogOptions{App: "hostel-test", Out: &buf})

		l.Info("room 301 booked")
		assert.Contains(t, buf.String(), "[hostel-test] room 301 booked")
		assert.Equal(t, 1, strings.Count(buf.String(), "[hostel-test]"))
		assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	})

	t.Run("json carries the service as a field", func(t *testing.T) {
		var buf bytes.Buffer
		l := logrus.New()
		ConfigureLogger(l, LogOptions{App: "hostel-test", Format: "JSON", Level: "debug", Out: &buf})

		l.WithField("room_number", 301).Debug("webhook applied")
		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "hostel-test", line["service"])
		assert.Equal(t, "webhook applied", line["msg"])
		assert.Equal(t, float64(301), line["room_number"])
		assert.Equal(t, "debug", line["level"])
	})

	t.Run("bad level falls back to info with a warning", func(t *testing.T) {
		var buf bytes.Buffer
		l := logrus.New()
		ConfigureLogger(l, LogOptions{App: "hostel-test", Level: "chatty", Out: &buf})

		assert.Equal(t, logrus.InfoLevel, l.GetLevel())
		assert.Contains(t, buf.String(), `Invalid LOG_LEVEL \"chatty\"`)
	})
}
