package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/internal/testutil"
	"github.com/questx-lab/settlement/pkg/pubsub"
	pkgtestutil "github.com/questx-lab/settlement/pkg/testutil"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func TestCache_Subscribe(t *testing.T) {
	s := testutil.NewSettlement(t)
	redisClient := pkgtestutil.NewMockRedisClient()
	cache := NewCache(s.Lottery, redisClient)

	s.Enter()
	cache.Subscribe(s.Ctx, &pubsub.Pack{}, time.Now())

	var cached model.SettlementStatus
	require.NoError(t, redisClient.GetObj(s.Ctx, xcontext.Configs(s.Ctx).Redis.StatusKey, &cached))
	require.Equal(t, uint64(1), cached.TotalParticipants)
	require.Equal(t, testutil.TicketPrice, cached.PotBalance)
}

func TestCache_GetSettlementStatus(t *testing.T) {
	s := testutil.NewSettlement(t)
	redisClient := pkgtestutil.NewMockRedisClient()
	cache := NewCache(s.Lottery, redisClient)

	// A miss is filled from the settlement.
	resp, err := cache.GetSettlementStatus(s.Ctx, &model.GetSettlementStatusRequest{})
	require.NoError(t, err)
	require.True(t, resp.Initialized)
	require.Equal(t, uint64(0), resp.TotalParticipants)

	// The snapshot is served until the next refresh.
	user := s.Enter()
	resp, err = cache.GetSettlementStatus(s.Ctx, &model.GetSettlementStatusRequest{})
	require.NoError(t, err)
	require.Equal(t, uint64(0), resp.TotalParticipants)

	_, err = cache.Refresh(s.Ctx)
	require.NoError(t, err)
	resp, err = cache.GetSettlementStatus(s.Ctx, &model.GetSettlementStatusRequest{})
	require.NoError(t, err)
	require.Equal(t, uint64(1), resp.TotalParticipants)

	// User requests always read the settlement.
	resp, err = cache.GetSettlementStatus(s.Ctx, &model.GetSettlementStatusRequest{
		User: s.AddressOf(user).Hex(),
	})
	require.NoError(t, err)
	require.True(t, resp.HasEntered)
	require.Equal(t, uint64(0), *resp.UserSequenceNumber)
}

func TestCache_RedisDown(t *testing.T) {
	s := testutil.NewSettlement(t)
	redisClient := pkgtestutil.NewMockRedisClient()
	redisClient.SetObjFunc = func(context.Context, string, any, time.Duration) error {
		return errors.New("connection refused")
	}
	cache := NewCache(s.Lottery, redisClient)

	resp, err := cache.GetSettlementStatus(s.Ctx, &model.GetSettlementStatusRequest{})
	require.NoError(t, err)
	require.True(t, resp.Initialized)

	_, err = cache.Refresh(s.Ctx)
	require.Error(t, err)
}
