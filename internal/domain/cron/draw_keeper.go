package cron

import (
	"context"
	"crypto/ecdsa"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/settlement/internal/client"
	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/pkg/xcontext"
)

// stalledDrawIntervals is how many keeper intervals a draw may stay pending
// before the keeper requests it again.
const stalledDrawIntervals = 10

// DrawKeeperCronJob drives the default flow of a round: it requests the draw
// once the round ended and pays the winner once the draw is resolved. An
// ended round without entries is rolled over with a Reset.
//
// A draw whose request event was lost is never resolved. Once a draw has been
// pending for stalledDrawIntervals, the keeper reopens the round with a Reset
// ending right away, so the next run requests the draw again.
type DrawKeeperCronJob struct {
	submitter client.Submitter
	reader    client.StatusReader
	builder   *client.InstructionBuilder
	key       *ecdsa.PrivateKey
	interval  time.Duration

	mutex          sync.Mutex
	drawingLottery uint64
	drawingSince   time.Time
}

func NewDrawKeeperCronJob(
	submitter client.Submitter,
	reader client.StatusReader,
	builder *client.InstructionBuilder,
	key *ecdsa.PrivateKey,
	interval time.Duration,
) *DrawKeeperCronJob {
	return &DrawKeeperCronJob{
		submitter: submitter,
		reader:    reader,
		builder:   builder,
		key:       key,
		interval:  interval,
	}
}

func (job *DrawKeeperCronJob) Do(ctx context.Context) {
	status, err := job.reader.GetSettlementStatus(ctx, &model.GetSettlementStatusRequest{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get settlement status: %v", err)
		return
	}

	ins, err := job.nextInstruction(ctx, &status.SettlementStatus)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot build instruction: %v", err)
		return
	}

	if ins == nil {
		return
	}

	resp, err := job.submitter.Submit(ctx, ins)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot submit %s of lottery #%d: %v", ins.Kind, status.LotteryID, err)
		return
	}

	xcontext.Logger(ctx).Infof("Submitted %s of lottery #%d: %s", ins.Kind, status.LotteryID, resp.Hash)
}

// nextInstruction returns nil when there is nothing to do.
func (job *DrawKeeperCronJob) nextInstruction(
	ctx context.Context, status *model.SettlementStatus,
) (*model.Instruction, error) {
	if !status.Initialized {
		return nil, nil
	}

	now := xcontext.Now(ctx)
	if status.IsDrawing {
		if !job.drawStalled(status.LotteryID, now) {
			return nil, nil
		}

		xcontext.Logger(ctx).Warnf("Draw of lottery #%d is stalled, requesting it again", status.LotteryID)
		return job.builder.Reset(job.key, model.ResetArgs{LotteryEndtime: now.Unix() + 1})
	}
	job.forgetDraw()

	if status.Winner != 0 && status.WinnerLotteryID == status.LotteryID {
		return job.builder.Payout(
			job.key,
			common.HexToAddress(status.PlatformWallet),
			common.HexToAddress(status.WinnerAddress),
			status.LotteryID,
			status.Winner,
		)
	}

	if now.Unix() < status.LotteryEndtime {
		return nil, nil
	}

	if status.TotalParticipants == 0 {
		return job.builder.Reset(job.key, model.ResetArgs{})
	}

	return job.builder.RequestDraw(job.key)
}

// drawStalled remembers when the draw of lotteryID was first seen pending.
func (job *DrawKeeperCronJob) drawStalled(lotteryID uint64, now time.Time) bool {
	job.mutex.Lock()
	defer job.mutex.Unlock()

	if job.drawingLottery != lotteryID || job.drawingSince.IsZero() {
		job.drawingLottery = lotteryID
		job.drawingSince = now
		return false
	}

	if now.Sub(job.drawingSince) < stalledDrawIntervals*job.interval {
		return false
	}

	job.drawingSince = time.Time{}
	return true
}

func (job *DrawKeeperCronJob) forgetDraw() {
	job.mutex.Lock()
	defer job.mutex.Unlock()
	job.drawingSince = time.Time{}
}

func (job *DrawKeeperCronJob) RunNow() bool {
	return true
}

func (job *DrawKeeperCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
