package ctu

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLogStepEmitsOneLinePerStep(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.Out = &buf
	log.Formatter = &logrus.TextFormatter{DisableColors: true}

	observe := LogStep(log, 2)
	g := uniformGrid(t, 4, 4, 1, Features{MHD: true})

	require.NoError(t, observe(g, 1, 0.01, 0.01))
	require.Contains(t, buf.String(), "step complete")
	require.NotContains(t, buf.String(), "max_div_b")

	buf.Reset()
	require.NoError(t, observe(g, 2, 0.02, 0.01))
	require.Contains(t, buf.String(), "max_div_b")
}

func TestNewLoggerLevel(t *testing.T) {
	require.Equal(t, logrus.InfoLevel, NewLogger(false).Level)
	require.Equal(t, logrus.DebugLevel, NewLogger(true).Level)
}
