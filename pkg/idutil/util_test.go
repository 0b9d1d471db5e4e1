package idutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerator(t *testing.T) {
	g, err := NewGenerator(1)
	require.NoError(t, err)

	before := time.Now().Add(-time.Second)
	a := g.Next()
	b := g.Next()
	require.Greater(t, b, a)
	require.True(t, TimeOf(a).After(before))
}

func TestNewGenerator_InvalidNode(t *testing.T) {
	_, err := NewGenerator(-1)
	require.Error(t, err)
}

func TestNewRequestID(t *testing.T) {
	require.NotEqual(t, NewRequestID(), NewRequestID())
	require.Len(t, NewRequestID(), 36)
}
