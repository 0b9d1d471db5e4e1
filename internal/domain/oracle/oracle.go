// Package oracle answers draw requests with a winning index.
package oracle

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/questx-lab/settlement/internal/client"
	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/pkg/crypto"
	"github.com/questx-lab/settlement/pkg/errorx"
	"github.com/questx-lab/settlement/pkg/pubsub"
	"github.com/questx-lab/settlement/pkg/xcontext"
)

const (
	maxSubmitAttempts = 5
	retryDelay        = 200 * time.Millisecond
)

// IndexSource picks the winning ticket of a round. The settlement validates
// the index, it does not trust it.
type IndexSource interface {
	Index(ctx context.Context, lotteryID, participants uint64) (uint64, error)
}

type randomSource struct{}

func NewRandomSource() *randomSource {
	return &randomSource{}
}

func (randomSource) Index(ctx context.Context, lotteryID, participants uint64) (uint64, error) {
	if participants == 0 {
		return 0, errors.New("no participants")
	}

	return crypto.RandUint64n(participants), nil
}

type Oracle struct {
	submitter client.Submitter
	builder   *client.InstructionBuilder
	source    IndexSource
	key       *ecdsa.PrivateKey
}

func New(
	submitter client.Submitter,
	builder *client.InstructionBuilder,
	source IndexSource,
	key *ecdsa.PrivateKey,
) *Oracle {
	return &Oracle{
		submitter: submitter,
		builder:   builder,
		source:    source,
		key:       key,
	}
}

// Subscribe is the pubsub.SubscribeHandler of the oracle.
func (o *Oracle) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var ev model.Event
	if err := json.Unmarshal(pack.Msg, &ev); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal event: %v", err)
		return
	}

	if ev.Type != model.DrawRequestedEvent {
		return
	}

	if err := o.Resolve(ctx, ev.LotteryID, ev.TotalParticipants); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve lottery #%d: %v", ev.LotteryID, err)
	}
}

// Resolve submits a ResolveDraw for the round. A round without participants
// cannot be resolved and is left to the operator.
func (o *Oracle) Resolve(ctx context.Context, lotteryID, participants uint64) error {
	if participants == 0 {
		xcontext.Logger(ctx).Warnf("Lottery #%d has no participants, skip resolving", lotteryID)
		return nil
	}

	index, err := o.source.Index(ctx, lotteryID, participants)
	if err != nil {
		return fmt.Errorf("cannot get winning index: %w", err)
	}

	ins, err := o.builder.ResolveDraw(o.key, lotteryID, index)
	if err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		_, err = o.submitter.Submit(ctx, ins)
		if err == nil {
			xcontext.Logger(ctx).Infof("Resolved lottery #%d with ticket %d", lotteryID, index)
			return nil
		}

		if errorx.CodeOf(err) != errorx.AccountInUse || attempt >= maxSubmitAttempts {
			return err
		}

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
