package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/pkg/errorx"
	"github.com/questx-lab/settlement/pkg/pubsub"
	"github.com/questx-lab/settlement/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_executor_Replay(t *testing.T) {
	s := newSuite(t)
	s.initialize()

	user := s.newUser(2 * ticketPrice)
	ins, err := s.builder.EnterLottery(user, 1, 0)
	require.NoError(t, err)

	_, err = s.executor.Submit(s.ctx, ins)
	require.NoError(t, err)

	_, err = s.executor.Submit(s.ctx, ins)
	requireCode(t, errorx.InstructionProcessed, err)
	require.Equal(t, ticketPrice, s.balance(testutil.AddressOf(user)))
}

func Test_executor_FailedInstructionCanBeRetried(t *testing.T) {
	s := newSuite(t)
	s.initialize()

	s.clock.Advance(time.Hour)
	ins, err := s.builder.RequestDraw(s.authority)
	require.NoError(t, err)

	// Not processed because of the rollback.
	s.clock.Advance(-time.Minute)
	_, err = s.executor.Submit(s.ctx, ins)
	requireCode(t, errorx.LotteryNotOver, err)

	s.clock.Advance(time.Minute)
	_, err = s.executor.Submit(s.ctx, ins)
	require.NoError(t, err)
}

func Test_executor_AccountInUse(t *testing.T) {
	s := newSuite(t)
	s.initialize()

	state := s.deriver.LotteryState().Hex()
	s.executor.locks.Store(state, "another instruction")

	_, err := s.enter(s.newUser(ticketPrice))
	requireCode(t, errorx.AccountInUse, err)
	require.True(t, errorx.Retryable(err))

	// Other locks taken by the failed instruction are released.
	_, loaded := s.executor.locks.Load(s.deriver.PotVault().Hex())
	require.False(t, loaded)

	s.executor.locks.Delete(state)

	user := s.newUser(ticketPrice)
	_, err = s.enter(user)
	require.NoError(t, err)

	// Nothing is left locked after a successful instruction.
	require.Equal(t, 0, s.executor.locks.Size())
}

func Test_executor_Signatures(t *testing.T) {
	s := newSuite(t)
	s.initialize()

	user := s.newUser(ticketPrice)
	other := testutil.NewKey(t)

	// Signed by someone else.
	ins, err := s.builder.EnterLottery(user, 1, 0)
	require.NoError(t, err)
	ins.Signatures = nil
	require.NoError(t, ins.Sign(other))
	_, err = s.executor.Submit(s.ctx, ins)
	requireCode(t, errorx.MissingSignature, err)

	// Not signed.
	ins.Signatures = nil
	_, err = s.executor.Submit(s.ctx, ins)
	requireCode(t, errorx.MissingSignature, err)

	ins.Signatures = []string{"0x1234"}
	_, err = s.executor.Submit(s.ctx, ins)
	requireCode(t, errorx.MissingSignature, err)

	// Changing the instruction after signing changes the signer.
	ins, err = s.builder.ResolveDraw(s.oracle, 1, 0)
	require.NoError(t, err)
	ins.Args = []byte(`{"winning_index":1}`)
	_, err = s.executor.Submit(s.ctx, ins)
	requireCode(t, errorx.MissingSignature, err)

	require.Equal(t, ticketPrice, s.balance(testutil.AddressOf(user)))
	require.Empty(t, s.publisher.Published())
}

func Test_executor_InvalidInstruction(t *testing.T) {
	s := newSuite(t)
	s.initialize()

	testCases := []struct {
		name   string
		modify func(ins *model.Instruction)
	}{
		{
			name:   "unknown kind",
			modify: func(ins *model.Instruction) { ins.Kind = "withdraw" },
		},
		{
			name:   "no account",
			modify: func(ins *model.Instruction) { ins.Accounts = nil },
		},
		{
			name:   "unknown role",
			modify: func(ins *model.Instruction) { ins.Accounts["treasury"] = s.deriver.PotVault().Hex() },
		},
		{
			name:   "missing role",
			modify: func(ins *model.Instruction) { delete(ins.Accounts, "lottery_state") },
		},
		{
			name:   "args on request draw",
			modify: func(ins *model.Instruction) { ins.Args = []byte(`{"winning_index":1}`) },
		},
		{
			name:   "invalid address",
			modify: func(ins *model.Instruction) { ins.Accounts["lottery_state"] = "0x1234" },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ins, err := s.builder.RequestDraw(s.authority)
			require.NoError(t, err)

			tc.modify(ins)
			ins.Signatures = nil
			require.NoError(t, ins.Sign(s.authority))

			_, err = s.executor.Submit(s.ctx, ins)
			requireCode(t, errorx.InvalidInstruction, err)
		})
	}
}

func Test_executor_WrongRecordAddress(t *testing.T) {
	s := newSuite(t)
	s.initialize()

	ins, err := model.NewInstruction(model.RequestDrawInstruction, model.RequestDrawAccounts{
		Authority:    testutil.AddressOf(s.authority),
		LotteryState: s.deriver.PotVault(),
	}, nil, 1)
	require.NoError(t, err)
	require.NoError(t, ins.Sign(s.authority))

	_, err = s.executor.Submit(s.ctx, ins)
	requireCode(t, errorx.AddressMismatch, err)
}

func Test_executor_PublishFailure(t *testing.T) {
	s := newSuite(t)
	s.initialize()

	s.publisher.PublishFunc = func(context.Context, string, *pubsub.Pack) error {
		return errors.New("broker is down")
	}

	// The instruction is committed anyway.
	resp, err := s.enter(s.newUser(ticketPrice))
	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	require.Equal(t, model.EntryAcceptedEvent, resp.Events[0].Type)
	require.Equal(t, resp.Hash, resp.Events[0].Instruction)
	require.Equal(t, uint64(1), s.status("").TotalParticipants)
}
