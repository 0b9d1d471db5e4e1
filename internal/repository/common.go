package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/questx-lab/settlement/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyExists       = errors.New("record already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUndeclaredAccount   = errors.New("undeclared account")
)

// checkDeclared rejects access to addresses the running instruction did not
// declare.
func checkDeclared(ctx context.Context, addrs ...string) error {
	for _, addr := range addrs {
		if !xcontext.AccountDeclared(ctx, addr) {
			return fmt.Errorf("%w: %s", ErrUndeclaredAccount, addr)
		}
	}

	return nil
}

// createOnce inserts record, never overwriting an existing one.
func createOnce(ctx context.Context, record any) error {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(record)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrAlreadyExists
	}

	return nil
}

func checkAffected(tx *gorm.DB) error {
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
