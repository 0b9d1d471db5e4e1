package repository

import (
	"context"

	"github.com/questx-lab/settlement/internal/entity"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository interface {
	Get(ctx context.Context, addr string) (*entity.Account, error)
	Credit(ctx context.Context, addr string, amount uint64) error
	Debit(ctx context.Context, addr string, amount uint64) error
}

type accountRepository struct{}

func NewAccountRepository() *accountRepository {
	return &accountRepository{}
}

func (r *accountRepository) Get(ctx context.Context, addr string) (*entity.Account, error) {
	if err := checkDeclared(ctx, addr); err != nil {
		return nil, err
	}

	var result entity.Account
	if err := xcontext.DB(ctx).Take(&result, "address=?", addr).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// Credit creates the account if it does not exist yet.
func (r *accountRepository) Credit(ctx context.Context, addr string, amount uint64) error {
	if err := checkDeclared(ctx, addr); err != nil {
		return err
	}

	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "address"}},
			DoUpdates: clause.Assignments(map[string]any{
				"balance":    gorm.Expr("balance+?", amount),
				"updated_at": xcontext.Now(ctx),
			}),
		}).
		Create(&entity.Account{Base: entity.Base{Address: addr}, Balance: amount}).Error
}

func (r *accountRepository) Debit(ctx context.Context, addr string, amount uint64) error {
	if err := checkDeclared(ctx, addr); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.Account{}).
		Where("address=? AND balance>=?", addr, amount).
		Update("balance", gorm.Expr("balance-?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrInsufficientBalance
	}

	return nil
}
