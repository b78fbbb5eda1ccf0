package rest

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLevelForVerbosity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, logrus.ErrorLevel, LevelForVerbosity(0))
	assert.Equal(t, logrus.WarnLevel, LevelForVerbosity(1))
	assert.Equal(t, logrus.InfoLevel, LevelForVerbosity(2))
	assert.Equal(t, logrus.DebugLevel, LevelForVerbosity(3))
	assert.Equal(t, logrus.DebugLevel, LevelForVerbosity(7))
}

func TestLogrusLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := NewLogrusLoggerWithOutput(1, &buf)

	logger.Debug("hidden debug", nil)
	logger.Info("hidden info", nil)
	logger.Warn("Retrying request", map[string]interface{}{"attempt": 2})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Retrying request")
	assert.Contains(t, out, "attempt=2")
}
