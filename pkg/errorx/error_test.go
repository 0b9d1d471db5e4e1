package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	err := New(RoundClosed, "Round #%d is closed", 3)
	require.Equal(t, "Round #3 is closed", err.Error())
	require.ErrorIs(t, err, New(RoundClosed, ""))
	require.NotErrorIs(t, err, New(DuplicateEntry, ""))

	wrapped := fmt.Errorf("submit: %w", err)
	require.ErrorIs(t, wrapped, New(RoundClosed, "other message"))
	require.Equal(t, RoundClosed, CodeOf(wrapped))
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      Category
		retryable bool
	}{
		{name: "round closed", err: New(RoundClosed, ""), want: CategoryState, retryable: true},
		{name: "duplicate entry", err: New(DuplicateEntry, ""), want: CategoryDoubleSubmission},
		{name: "wrong signer", err: New(UnauthorizedAuthority, ""), want: CategoryAuthorization},
		{name: "bad fee", err: New(InvalidPlatformFee, ""), want: CategoryConfiguration},
		{name: "overflow", err: New(Overflow, ""), want: CategoryArithmetic},
		{name: "locked", err: New(AccountInUse, ""), want: CategoryTransient, retryable: true},
		{name: "plain error", err: errors.New("boom"), want: CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CategoryOf(tt.err))
			require.Equal(t, tt.retryable, Retryable(tt.err))
		})
	}
}
