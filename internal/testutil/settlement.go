// Package testutil runs a complete settlement in memory for the tests of the
// services built around it.
package testutil

import (
	"context"
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/settlement/internal/address"
	"github.com/questx-lab/settlement/internal/client"
	"github.com/questx-lab/settlement/internal/domain"
	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/internal/repository"
	"github.com/questx-lab/settlement/pkg/idutil"
	"github.com/questx-lab/settlement/pkg/testutil"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

const (
	TicketPrice    = uint64(500_000_000)
	PlatformFeeBps = uint16(100)
)

var Genesis = time.Unix(1_700_000_000, 0)

type Settlement struct {
	t *testing.T

	Ctx   context.Context
	Clock *testutil.Clock

	Builder   *client.InstructionBuilder
	Publisher *testutil.MockPublisher
	Executor  domain.Executor
	Lottery   domain.LotteryDomain
	Account   domain.AccountDomain

	Authority      *ecdsa.PrivateKey
	Oracle         *ecdsa.PrivateKey
	PlatformWallet common.Address
}

// NewSettlement returns an initialized settlement whose first round ends one
// hour after Genesis.
func NewSettlement(t *testing.T) *Settlement {
	ctx, clock := testutil.MockContextWithClock(Genesis)
	deriver := address.New(xcontext.Configs(ctx).Lottery.ProgramID)

	accountRepo := repository.NewAccountRepository()
	lottery := domain.NewLotteryDomain(repository.NewLotteryRepository(), accountRepo, deriver)

	idGenerator, err := idutil.NewGenerator(1)
	require.NoError(t, err)

	publisher := &testutil.MockPublisher{}
	s := &Settlement{
		t:              t,
		Ctx:            ctx,
		Clock:          clock,
		Builder:        client.NewInstructionBuilder(deriver),
		Publisher:      publisher,
		Executor:       domain.NewExecutor(lottery, repository.NewInstructionRepository(), publisher, idGenerator),
		Lottery:        lottery,
		Account:        domain.NewAccountDomain(accountRepo),
		Authority:      testutil.NewKey(t),
		Oracle:         testutil.NewKey(t),
		PlatformWallet: testutil.AddressOf(testutil.NewKey(t)),
	}

	s.MustSubmit(s.Builder.Initialize(s.Authority, model.InitializeArgs{
		PlatformWallet:      s.PlatformWallet,
		TicketPrice:         TicketPrice,
		PlatformFeeBps:      PlatformFeeBps,
		FirstLotteryEndtime: Genesis.Add(time.Hour).Unix(),
		Oracle:              testutil.AddressOf(s.Oracle),
	}))

	return s
}

func (s *Settlement) MustSubmit(ins *model.Instruction, err error) *model.SubmitInstructionResponse {
	require.NoError(s.t, err)

	resp, err := s.Executor.Submit(s.Ctx, ins)
	require.NoError(s.t, err)
	return resp
}

// Enter funds a new user with one ticket and enters the current round.
func (s *Settlement) Enter() *ecdsa.PrivateKey {
	user := testutil.NewKey(s.t)
	_, err := s.Account.Fund(s.Ctx, &model.FundRequest{
		Address: testutil.AddressOf(user).Hex(),
		Amount:  TicketPrice,
	})
	require.NoError(s.t, err)

	status := s.Status()
	s.MustSubmit(s.Builder.EnterLottery(user, status.LotteryID, status.TotalParticipants))
	return user
}

func (s *Settlement) Status() *model.SettlementStatus {
	resp, err := s.Lottery.GetSettlementStatus(s.Ctx, &model.GetSettlementStatusRequest{})
	require.NoError(s.t, err)
	return &resp.SettlementStatus
}

func (s *Settlement) Balance(addr common.Address) uint64 {
	resp, err := s.Account.GetBalance(s.Ctx, &model.GetBalanceRequest{Address: addr.Hex()})
	require.NoError(s.t, err)
	return resp.Balance
}

func (s *Settlement) AddressOf(key *ecdsa.PrivateKey) common.Address {
	return testutil.AddressOf(key)
}
