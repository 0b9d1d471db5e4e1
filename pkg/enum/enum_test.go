package enum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type roundPhase string

type retryPolicy int

var (
	openPhase    = New(roundPhase("open"), "open")
	drawingPhase = New(roundPhase("drawing"), "drawing")

	noRetry    = New(retryPolicy(0), "never")
	retryLater = New(retryPolicy(2), "later")
)

func TestToEnum(t *testing.T) {
	v, err := ToEnum[roundPhase]("drawing")
	require.NoError(t, err)
	require.Equal(t, drawingPhase, v)

	_, err = ToEnum[roundPhase]("Drawing")
	require.Error(t, err)

	p, err := ToEnum[retryPolicy]("later")
	require.NoError(t, err)
	require.Equal(t, retryLater, p)

	type unregistered string
	_, err = ToEnum[unregistered]("open")
	require.Error(t, err)
}

func TestToString(t *testing.T) {
	require.Equal(t, "open", ToString(openPhase))
	require.Equal(t, "never", ToString(noRetry))
	require.Equal(t, "", ToString(roundPhase("resolved")))
	require.Equal(t, "", ToString(retryPolicy(7)))
}
