package domain

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/internal/repository"
	"github.com/questx-lab/settlement/pkg/errorx"
	"github.com/questx-lab/settlement/pkg/numberutil"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"gorm.io/gorm"
)

// AccountDomain manages native balances outside of instructions. Fund is an
// operator tool for local deployments.
type AccountDomain interface {
	Fund(context.Context, *model.FundRequest) (*model.FundResponse, error)
	GetBalance(context.Context, *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
}

type accountDomain struct {
	accountRepo repository.AccountRepository
}

func NewAccountDomain(accountRepo repository.AccountRepository) *accountDomain {
	return &accountDomain{accountRepo: accountRepo}
}

func (d *accountDomain) Fund(ctx context.Context, req *model.FundRequest) (*model.FundResponse, error) {
	if !common.IsHexAddress(req.Address) {
		return nil, errorx.New(errorx.BadRequest, "Invalid address")
	}

	if req.Amount == 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be greater than zero")
	}

	addr := common.HexToAddress(req.Address).Hex()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	balance, err := d.balanceOf(ctx, addr)
	if err != nil {
		return nil, err
	}

	newBalance, err := numberutil.CheckedAddStored(balance, req.Amount)
	if err != nil {
		return nil, errorx.New(errorx.Overflow, "Balance overflows")
	}

	if err := d.accountRepo.Credit(ctx, addr, req.Amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot credit account: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit fund: %v", err)
		return nil, errorx.Unknown
	}

	return &model.FundResponse{Address: addr, Balance: newBalance}, nil
}

func (d *accountDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	if !common.IsHexAddress(req.Address) {
		return nil, errorx.New(errorx.BadRequest, "Invalid address")
	}

	addr := common.HexToAddress(req.Address).Hex()
	balance, err := d.balanceOf(ctx, addr)
	if err != nil {
		return nil, err
	}

	return &model.GetBalanceResponse{Address: addr, Balance: balance}, nil
}

func (d *accountDomain) balanceOf(ctx context.Context, addr string) (uint64, error) {
	account, err := d.accountRepo.Get(ctx, addr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return 0, errorx.Unknown
	}

	return account.Balance, nil
}
