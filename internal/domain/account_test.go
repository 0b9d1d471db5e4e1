package domain

import (
	"math"
	"strings"
	"testing"

	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/pkg/errorx"
	"github.com/questx-lab/settlement/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_accountDomain_Fund(t *testing.T) {
	s := newSuite(t)
	addr := testutil.AddressOf(testutil.NewKey(t))

	resp, err := s.accountDom.Fund(s.ctx, &model.FundRequest{Address: addr.Hex(), Amount: 100})
	require.NoError(t, err)
	require.Equal(t, uint64(100), resp.Balance)

	// Lowercase input is the same account.
	resp, err = s.accountDom.Fund(s.ctx, &model.FundRequest{Address: strings.ToLower(addr.Hex()), Amount: 50})
	require.NoError(t, err)
	require.Equal(t, uint64(150), resp.Balance)
	require.Equal(t, addr.Hex(), resp.Address)

	_, err = s.accountDom.Fund(s.ctx, &model.FundRequest{Address: addr.Hex(), Amount: math.MaxUint64})
	requireCode(t, errorx.Overflow, err)
	require.Equal(t, uint64(150), s.balance(addr))

	rich := testutil.AddressOf(testutil.NewKey(t))
	_, err = s.accountDom.Fund(s.ctx, &model.FundRequest{Address: rich.Hex(), Amount: math.MaxInt64})
	require.NoError(t, err)
	_, err = s.accountDom.Fund(s.ctx, &model.FundRequest{Address: rich.Hex(), Amount: 1})
	requireCode(t, errorx.Overflow, err)
	require.Equal(t, uint64(math.MaxInt64), s.balance(rich))

	_, err = s.accountDom.Fund(s.ctx, &model.FundRequest{Address: addr.Hex(), Amount: 0})
	requireCode(t, errorx.BadRequest, err)

	_, err = s.accountDom.Fund(s.ctx, &model.FundRequest{Address: "alice", Amount: 1})
	requireCode(t, errorx.BadRequest, err)
}

func Test_accountDomain_GetBalance(t *testing.T) {
	s := newSuite(t)

	resp, err := s.accountDom.GetBalance(s.ctx, &model.GetBalanceRequest{
		Address: testutil.AddressOf(testutil.NewKey(t)).Hex(),
	})
	require.NoError(t, err)
	require.Equal(t, uint64(0), resp.Balance)

	_, err = s.accountDom.GetBalance(s.ctx, &model.GetBalanceRequest{Address: "0x12"})
	requireCode(t, errorx.BadRequest, err)
}
