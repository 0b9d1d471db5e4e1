package oracle

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/internal/testutil"
	"github.com/questx-lab/settlement/pkg/errorx"
	"github.com/questx-lab/settlement/pkg/pubsub"
	"github.com/stretchr/testify/require"
)

type fixedSource uint64

func (s fixedSource) Index(ctx context.Context, lotteryID, participants uint64) (uint64, error) {
	return uint64(s), nil
}

type flakySubmitter struct {
	inner    *testutil.Settlement
	failures int
	calls    int
}

func (s *flakySubmitter) Submit(
	ctx context.Context, ins *model.SubmitInstructionRequest,
) (*model.SubmitInstructionResponse, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errorx.New(errorx.AccountInUse, "Account is in use")
	}

	return s.inner.Executor.Submit(ctx, ins)
}

func drawRequested(t *testing.T, s *testutil.Settlement) *pubsub.Pack {
	s.Clock.Advance(time.Hour)
	resp := s.MustSubmit(s.Builder.RequestDraw(s.Authority))
	require.Len(t, resp.Events, 1)

	b, err := json.Marshal(resp.Events[0])
	require.NoError(t, err)
	return &pubsub.Pack{Key: []byte(resp.Events[0].Type), Msg: b}
}

func TestOracle_Subscribe(t *testing.T) {
	s := testutil.NewSettlement(t)
	s.Enter()
	winner := s.Enter()

	o := New(s.Executor, s.Builder, fixedSource(1), s.Oracle)
	o.Subscribe(s.Ctx, drawRequested(t, s), time.Now())

	status := s.Status()
	require.False(t, status.IsDrawing)
	require.Equal(t, uint64(2), status.Winner)
	require.Equal(t, s.AddressOf(winner).Hex(), status.WinnerAddress)
}

func TestOracle_Subscribe_IgnoresOtherEvents(t *testing.T) {
	s := testutil.NewSettlement(t)

	resp, err := s.Lottery.GetSettlementStatus(s.Ctx, &model.GetSettlementStatusRequest{})
	require.NoError(t, err)

	b, err := json.Marshal(model.Event{Type: model.EntryAcceptedEvent, LotteryID: 1, TotalParticipants: 1})
	require.NoError(t, err)

	submitter := &flakySubmitter{inner: s}
	o := New(submitter, s.Builder, fixedSource(0), s.Oracle)
	o.Subscribe(s.Ctx, &pubsub.Pack{Msg: b}, time.Now())
	o.Subscribe(s.Ctx, &pubsub.Pack{Msg: []byte("not json")}, time.Now())

	require.Equal(t, 0, submitter.calls)
	require.Equal(t, resp.SettlementStatus, *s.Status())
}

func TestOracle_Resolve_NoParticipants(t *testing.T) {
	s := testutil.NewSettlement(t)
	submitter := &flakySubmitter{inner: s}

	o := New(submitter, s.Builder, fixedSource(0), s.Oracle)
	require.NoError(t, o.Resolve(s.Ctx, 1, 0))
	require.Equal(t, 0, submitter.calls)
}

func TestOracle_Resolve_RetryAccountInUse(t *testing.T) {
	s := testutil.NewSettlement(t)
	s.Enter()
	drawRequested(t, s)

	submitter := &flakySubmitter{inner: s, failures: 2}
	o := New(submitter, s.Builder, fixedSource(0), s.Oracle)
	require.NoError(t, o.Resolve(s.Ctx, 1, 1))
	require.Equal(t, 3, submitter.calls)
	require.Equal(t, uint64(1), s.Status().Winner)
}

func TestOracle_Resolve_GiveUp(t *testing.T) {
	s := testutil.NewSettlement(t)
	s.Enter()
	drawRequested(t, s)

	submitter := &flakySubmitter{inner: s, failures: maxSubmitAttempts}
	o := New(submitter, s.Builder, fixedSource(0), s.Oracle)

	err := o.Resolve(s.Ctx, 1, 1)
	require.Equal(t, errorx.AccountInUse, errorx.CodeOf(err))
	require.Equal(t, maxSubmitAttempts, submitter.calls)
	require.True(t, s.Status().IsDrawing)
}

func TestOracle_Resolve_NotRetried(t *testing.T) {
	s := testutil.NewSettlement(t)
	s.Enter()

	// The draw was never requested.
	submitter := &flakySubmitter{inner: s}
	o := New(submitter, s.Builder, fixedSource(0), s.Oracle)

	err := o.Resolve(s.Ctx, 1, 1)
	require.Equal(t, errorx.DrawNotRequested, errorx.CodeOf(err))
	require.Equal(t, 1, submitter.calls)
}

func TestRandomSource(t *testing.T) {
	source := NewRandomSource()

	for i := 0; i < 100; i++ {
		index, err := source.Index(context.Background(), 1, 3)
		require.NoError(t, err)
		require.Less(t, index, uint64(3))
	}

	_, err := source.Index(context.Background(), 1, 0)
	require.Error(t, err)
}
