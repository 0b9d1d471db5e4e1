package domain

import (
	"context"
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/settlement/internal/address"
	"github.com/questx-lab/settlement/internal/client"
	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/internal/repository"
	"github.com/questx-lab/settlement/pkg/errorx"
	"github.com/questx-lab/settlement/pkg/idutil"
	"github.com/questx-lab/settlement/pkg/testutil"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

var genesis = time.Unix(1_700_000_000, 0)

const (
	ticketPrice    = uint64(500_000_000)
	platformFeeBps = uint16(100)
)

type suite struct {
	t *testing.T

	ctx   context.Context
	clock *testutil.Clock

	deriver   address.Deriver
	builder   *client.InstructionBuilder
	publisher *testutil.MockPublisher

	lotteryRepo repository.LotteryRepository
	lotteryDom  LotteryDomain
	accountDom  AccountDomain
	executor    *executor

	authority      *ecdsa.PrivateKey
	oracle         *ecdsa.PrivateKey
	platformWallet common.Address
}

func newSuite(t *testing.T) *suite {
	ctx, clock := testutil.MockContextWithClock(genesis)
	deriver := address.New(xcontext.Configs(ctx).Lottery.ProgramID)

	lotteryRepo := repository.NewLotteryRepository()
	accountRepo := repository.NewAccountRepository()
	lotteryDom := NewLotteryDomain(lotteryRepo, accountRepo, deriver)

	idGenerator, err := idutil.NewGenerator(1)
	require.NoError(t, err)

	publisher := &testutil.MockPublisher{}

	return &suite{
		t:              t,
		ctx:            ctx,
		clock:          clock,
		deriver:        deriver,
		builder:        client.NewInstructionBuilder(deriver),
		publisher:      publisher,
		lotteryRepo:    lotteryRepo,
		lotteryDom:     lotteryDom,
		accountDom:     NewAccountDomain(accountRepo),
		executor:       NewExecutor(lotteryDom, repository.NewInstructionRepository(), publisher, idGenerator),
		authority:      testutil.NewKey(t),
		oracle:         testutil.NewKey(t),
		platformWallet: testutil.AddressOf(testutil.NewKey(t)),
	}
}

func (s *suite) defaultInitializeArgs() model.InitializeArgs {
	return model.InitializeArgs{
		PlatformWallet:      s.platformWallet,
		TicketPrice:         ticketPrice,
		PlatformFeeBps:      platformFeeBps,
		FirstLotteryEndtime: genesis.Add(time.Hour).Unix(),
		Oracle:              testutil.AddressOf(s.oracle),
	}
}

func (s *suite) submit(ins *model.Instruction, err error) (*model.SubmitInstructionResponse, error) {
	require.NoError(s.t, err)
	return s.executor.Submit(s.ctx, ins)
}

func (s *suite) mustSubmit(ins *model.Instruction, err error) *model.SubmitInstructionResponse {
	resp, err := s.submit(ins, err)
	require.NoError(s.t, err)
	return resp
}

func (s *suite) initialize() {
	s.mustSubmit(s.builder.Initialize(s.authority, s.defaultInitializeArgs()))
}

func (s *suite) fund(key *ecdsa.PrivateKey, amount uint64) {
	_, err := s.accountDom.Fund(s.ctx, &model.FundRequest{
		Address: testutil.AddressOf(key).Hex(),
		Amount:  amount,
	})
	require.NoError(s.t, err)
}

func (s *suite) newUser(amount uint64) *ecdsa.PrivateKey {
	key := testutil.NewKey(s.t)
	if amount > 0 {
		s.fund(key, amount)
	}

	return key
}

// enter builds the entry from the current status, as a client would.
func (s *suite) enter(user *ecdsa.PrivateKey) (*model.SubmitInstructionResponse, error) {
	status := s.status("")
	return s.submit(s.builder.EnterLottery(user, status.LotteryID, status.TotalParticipants))
}

func (s *suite) status(user string) *model.GetSettlementStatusResponse {
	resp, err := s.lotteryDom.GetSettlementStatus(s.ctx, &model.GetSettlementStatusRequest{User: user})
	require.NoError(s.t, err)
	return resp
}

func (s *suite) balance(addr common.Address) uint64 {
	resp, err := s.accountDom.GetBalance(s.ctx, &model.GetBalanceRequest{Address: addr.Hex()})
	require.NoError(s.t, err)
	return resp.Balance
}

func requireCode(t *testing.T, code errorx.Code, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, errorx.CodeOf(err), err.Error())
}
