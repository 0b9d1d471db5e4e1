package cron

import (
	"testing"
	"time"

	"github.com/questx-lab/settlement/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestDrawKeeperCronJob_Do(t *testing.T) {
	s := testutil.NewSettlement(t)
	job := NewDrawKeeperCronJob(s.Executor, s.Lottery, s.Builder, s.Authority, time.Minute)

	// The round is still open.
	job.Do(s.Ctx)
	require.Equal(t, uint64(1), s.Status().LotteryID)
	require.False(t, s.Status().IsDrawing)

	// An ended round without entries rolls over.
	s.Clock.Advance(time.Hour)
	job.Do(s.Ctx)
	status := s.Status()
	require.Equal(t, uint64(2), status.LotteryID)
	require.Equal(t, s.Clock.Now().Add(time.Hour).Unix(), status.LotteryEndtime)

	user := s.Enter()
	s.Clock.Advance(time.Hour)
	job.Do(s.Ctx)
	require.True(t, s.Status().IsDrawing)

	// Waiting for the oracle.
	job.Do(s.Ctx)
	require.True(t, s.Status().IsDrawing)

	s.MustSubmit(s.Builder.ResolveDraw(s.Oracle, 2, 0))
	job.Do(s.Ctx)

	status = s.Status()
	require.Equal(t, uint64(3), status.LotteryID)
	require.Equal(t, uint64(0), status.PotBalance)
	require.Equal(t, uint64(495_000_000), s.Balance(s.AddressOf(user)))
	require.Equal(t, uint64(5_000_000), s.Balance(s.PlatformWallet))
}

func TestDrawKeeperCronJob_Do_StalledDraw(t *testing.T) {
	s := testutil.NewSettlement(t)
	job := NewDrawKeeperCronJob(s.Executor, s.Lottery, s.Builder, s.Authority, time.Minute)

	s.Enter()
	s.Clock.Advance(time.Hour)
	job.Do(s.Ctx)
	require.True(t, s.Status().IsDrawing)

	// Nobody resolves the draw.
	job.Do(s.Ctx)
	s.Clock.Advance(stalledDrawIntervals*time.Minute - time.Second)
	job.Do(s.Ctx)
	require.True(t, s.Status().IsDrawing)

	s.Clock.Advance(time.Second)
	job.Do(s.Ctx)
	status := s.Status()
	require.False(t, status.IsDrawing)
	require.Equal(t, uint64(1), status.LotteryID)
	require.Equal(t, uint64(1), status.TotalParticipants)

	// The next run requests the draw again.
	s.Clock.Advance(time.Minute)
	job.Do(s.Ctx)
	require.True(t, s.Status().IsDrawing)

	published := s.Publisher.Published()
	require.Equal(t, "draw_requested", string(published[len(published)-1].Key))

	s.MustSubmit(s.Builder.ResolveDraw(s.Oracle, 1, 0))
	job.Do(s.Ctx)
	require.Equal(t, uint64(2), s.Status().LotteryID)
}

func TestDrawKeeperCronJob_Schedule(t *testing.T) {
	job := NewDrawKeeperCronJob(nil, nil, nil, nil, time.Minute)
	require.True(t, job.RunNow())
	require.WithinDuration(t, time.Now().Add(time.Minute), job.Next(), time.Second)
}
