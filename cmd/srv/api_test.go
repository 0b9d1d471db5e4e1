package main

import (
	"context"
	"crypto/ecdsa"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/questx-lab/settlement/internal/address"
	"github.com/questx-lab/settlement/internal/client"
	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/pkg/errorx"
	"github.com/questx-lab/settlement/pkg/pubsub"
	"github.com/questx-lab/settlement/pkg/testutil"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type testServer struct {
	*srv

	clock     *testutil.Clock
	authority *ecdsa.PrivateKey
	oracle    *ecdsa.PrivateKey
}

func newTestServer(t *testing.T) *testServer {
	ctx, clock := testutil.MockContextWithClock(time.Unix(1_700_000_000, 0))

	authority := testutil.NewKey(t)
	oracle := testutil.NewKey(t)

	cfg := xcontext.Configs(ctx)
	cfg.Oracle.Key = hexutil.Encode(ethcrypto.FromECDSA(oracle))
	cfg.Lottery.AuthorityKey = hexutil.Encode(ethcrypto.FromECDSA(authority))
	ctx = xcontext.WithConfigs(ctx, cfg)

	s := &srv{ctx: ctx}
	s.deriver = address.New(cfg.Lottery.ProgramID)
	s.builder = client.NewInstructionBuilder(s.deriver)
	s.broker = pubsub.NewLocalBroker()
	s.publisher = s.broker

	s.loadRepos()
	require.NoError(t, s.loadDomains())
	s.loadRouter()

	ts := httptest.NewServer(s.router.Handler(nil))
	t.Cleanup(ts.Close)
	s.caller = client.NewSettlementCaller(ts.URL)

	return &testServer{srv: s, clock: clock, authority: authority, oracle: oracle}
}

func (s *testServer) fund(t *testing.T, key *ecdsa.PrivateKey, amount uint64) {
	_, err := s.accountDomain.Fund(s.ctx, &model.FundRequest{
		Address: testutil.AddressOf(key).Hex(),
		Amount:  amount,
	})
	require.NoError(t, err)
}

func (s *testServer) mustStatus(t *testing.T) *model.GetSettlementStatusResponse {
	status, err := s.status("")
	require.NoError(t, err)
	return status
}

func TestApi_RoundWithEmbeddedOracle(t *testing.T) {
	s := newTestServer(t)
	platformWallet := testutil.AddressOf(testutil.NewKey(t))

	_, err := s.status("")
	require.Error(t, err)

	_, err = s.caller.Submit(s.ctx, mustBuild(t)(s.builder.Initialize(s.authority, model.InitializeArgs{
		PlatformWallet:      platformWallet,
		TicketPrice:         500_000_000,
		PlatformFeeBps:      100,
		FirstLotteryEndtime: s.clock.Now().Add(time.Hour).Unix(),
		Oracle:              testutil.AddressOf(s.oracle),
	})))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	require.NoError(t, s.startWorkers(ctx, g, true, false))

	alice := testutil.NewKey(t)
	bob := testutil.NewKey(t)
	for _, user := range []*ecdsa.PrivateKey{alice, bob} {
		s.fund(t, user, 500_000_000)

		status := s.mustStatus(t)
		resp, err := s.caller.Submit(s.ctx, mustBuild(t)(
			s.builder.EnterLottery(user, status.LotteryID, status.TotalParticipants)))
		require.NoError(t, err)
		require.Len(t, resp.Events, 1)
	}

	// The error code survives the round trip.
	_, err = s.caller.Submit(s.ctx, mustBuild(t)(s.builder.EnterLottery(alice, 1, 2)))
	require.Equal(t, errorx.DuplicateEntry, errorx.CodeOf(err))

	s.clock.Advance(time.Hour)
	_, err = s.caller.Submit(s.ctx, mustBuild(t)(s.builder.RequestDraw(s.authority)))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status := s.mustStatus(t)
		return status.Winner != 0 && status.WinnerLotteryID == 1
	}, 5*time.Second, 20*time.Millisecond)

	status := s.mustStatus(t)
	require.False(t, status.IsDrawing)
	require.Contains(t, []string{testutil.AddressOf(alice).Hex(), testutil.AddressOf(bob).Hex()}, status.WinnerAddress)

	_, err = s.caller.Submit(s.ctx, mustBuild(t)(s.builder.Payout(
		s.authority, platformWallet, common.HexToAddress(status.WinnerAddress),
		status.LotteryID, status.Winner,
	)))
	require.NoError(t, err)

	status = s.mustStatus(t)
	require.Equal(t, uint64(2), status.LotteryID)
	require.Equal(t, uint64(0), status.PotBalance)

	balance, err := s.accountDomain.GetBalance(s.ctx, &model.GetBalanceRequest{Address: status.WinnerAddress})
	require.NoError(t, err)
	require.Equal(t, uint64(990_000_000), balance.Balance)

	balance, err = s.accountDomain.GetBalance(s.ctx, &model.GetBalanceRequest{Address: platformWallet.Hex()})
	require.NoError(t, err)
	require.Equal(t, uint64(10_000_000), balance.Balance)

	cancel()
	require.NoError(t, g.Wait())
}

func TestApi_Status_User(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.caller.GetSettlementStatus(s.ctx, &model.GetSettlementStatusRequest{User: "not an address"})
	require.NoError(t, err)
	require.False(t, resp.Initialized)
}

func mustBuild(t *testing.T) func(*model.Instruction, error) *model.Instruction {
	return func(ins *model.Instruction, err error) *model.Instruction {
		require.NoError(t, err)
		return ins
	}
}
