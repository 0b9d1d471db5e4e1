// Package status keeps a snapshot of the settlement status in Redis for the
// profile backend.
package status

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/settlement/internal/client"
	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/pkg/pubsub"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/questx-lab/settlement/pkg/xredis"
)

type Cache struct {
	reader      client.StatusReader
	redisClient xredis.Client
}

func NewCache(reader client.StatusReader, redisClient xredis.Client) *Cache {
	return &Cache{reader: reader, redisClient: redisClient}
}

// Subscribe refreshes the snapshot on every settlement event.
func (c *Cache) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	if _, err := c.Refresh(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot refresh settlement status: %v", err)
	}
}

func (c *Cache) Refresh(ctx context.Context) (*model.SettlementStatus, error) {
	resp, err := c.reader.GetSettlementStatus(ctx, &model.GetSettlementStatusRequest{})
	if err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx).Redis
	if err := c.redisClient.SetObj(ctx, cfg.StatusKey, resp.SettlementStatus, cfg.StatusTTL.Duration); err != nil {
		return nil, err
	}

	return &resp.SettlementStatus, nil
}

// GetSettlementStatus serves the round-wide snapshot from Redis. Requests for
// a user need the receipt and go to the reader.
func (c *Cache) GetSettlementStatus(
	ctx context.Context, req *model.GetSettlementStatusRequest,
) (*model.GetSettlementStatusResponse, error) {
	if req.User != "" {
		return c.reader.GetSettlementStatus(ctx, req)
	}

	var status model.SettlementStatus
	err := c.redisClient.GetObj(ctx, xcontext.Configs(ctx).Redis.StatusKey, &status)
	if err == nil {
		return &model.GetSettlementStatusResponse{SettlementStatus: status}, nil
	}

	if !errors.Is(err, xredis.ErrNotFound) {
		xcontext.Logger(ctx).Warnf("Cannot get cached settlement status: %v", err)
	}

	resp, err := c.reader.GetSettlementStatus(ctx, req)
	if err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx).Redis
	if err := c.redisClient.SetObj(ctx, cfg.StatusKey, resp.SettlementStatus, cfg.StatusTTL.Duration); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache settlement status: %v", err)
	}

	return resp, nil
}
