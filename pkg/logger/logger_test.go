package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, WARNING, false)

	l.Infof("hidden %d", 1)
	require.Empty(t, buf.String())

	l.Warnf("shown %d", 2)
	require.Contains(t, buf.String(), "shown 2")
}

func TestLogger_WithJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, DEBUG, true).With("instruction", "enter_lottery")

	l.Debugf("accepted")
	require.Contains(t, buf.String(), `"instruction":"enter_lottery"`)
	require.Contains(t, buf.String(), `"msg":"accepted"`)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, DEBUG, ParseLevel("debug"))
	require.Equal(t, ERROR, ParseLevel("error"))
	require.Equal(t, INFO, ParseLevel("whatever"))
}
