package repository

import (
	"context"

	"github.com/questx-lab/settlement/internal/entity"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"gorm.io/gorm"
)

type LotteryRepository interface {
	// State
	CreateState(ctx context.Context, state *entity.LotteryState) error
	GetState(ctx context.Context, addr string) (*entity.LotteryState, error)
	IncreaseParticipants(ctx context.Context, addr string, lotteryID, current uint64) error
	StartDraw(ctx context.Context, addr string, lotteryID uint64) error
	FinishDraw(ctx context.Context, addr string, lotteryID, winner uint64) error
	CompleteRound(ctx context.Context, addr string, lotteryID uint64, nextEndtime int64) error
	UpdateState(ctx context.Context, addr string, lotteryID uint64, updates map[string]any) error

	// Vault
	CreateVault(ctx context.Context, vault *entity.PotVault) error
	GetVault(ctx context.Context, addr string) (*entity.PotVault, error)
	Deposit(ctx context.Context, addr string, amount uint64) error
	Withdraw(ctx context.Context, addr string, amount uint64) error

	// Receipt
	CreateReceipt(ctx context.Context, receipt *entity.UserEntryReceipt) error
	GetReceipt(ctx context.Context, addr string) (*entity.UserEntryReceipt, error)

	// Ticket
	CreateTicket(ctx context.Context, ticket *entity.UserTicket) error
	GetTicket(ctx context.Context, addr string) (*entity.UserTicket, error)
	MarkWinner(ctx context.Context, addr string) error
	Claim(ctx context.Context, addr string, prize uint64) error
}

type lotteryRepository struct{}

func NewLotteryRepository() *lotteryRepository {
	return &lotteryRepository{}
}

func (r *lotteryRepository) CreateState(ctx context.Context, state *entity.LotteryState) error {
	if err := checkDeclared(ctx, state.Address); err != nil {
		return err
	}

	return createOnce(ctx, state)
}

func (r *lotteryRepository) GetState(ctx context.Context, addr string) (*entity.LotteryState, error) {
	if err := checkDeclared(ctx, addr); err != nil {
		return nil, err
	}

	var result entity.LotteryState
	if err := xcontext.DB(ctx).Take(&result, "address=?", addr).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) IncreaseParticipants(
	ctx context.Context, addr string, lotteryID, current uint64,
) error {
	if err := checkDeclared(ctx, addr); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.LotteryState{}).
		Where("address=? AND current_lottery_id=? AND total_participants=? AND is_drawing=?",
			addr, lotteryID, current, false).
		Update("total_participants", current+1)
	return checkAffected(tx)
}

func (r *lotteryRepository) StartDraw(ctx context.Context, addr string, lotteryID uint64) error {
	if err := checkDeclared(ctx, addr); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.LotteryState{}).
		Where("address=? AND current_lottery_id=? AND is_drawing=?", addr, lotteryID, false).
		Update("is_drawing", true)
	return checkAffected(tx)
}

func (r *lotteryRepository) FinishDraw(ctx context.Context, addr string, lotteryID, winner uint64) error {
	if err := checkDeclared(ctx, addr); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.LotteryState{}).
		Where("address=? AND current_lottery_id=? AND is_drawing=?", addr, lotteryID, true).
		Updates(map[string]any{
			"winner":            winner,
			"winner_lottery_id": lotteryID,
			"is_drawing":        false,
		})
	return checkAffected(tx)
}

func (r *lotteryRepository) CompleteRound(
	ctx context.Context, addr string, lotteryID uint64, nextEndtime int64,
) error {
	if err := checkDeclared(ctx, addr); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.LotteryState{}).
		Where("address=? AND current_lottery_id=? AND winner_lottery_id=? AND is_drawing=?",
			addr, lotteryID, lotteryID, false).
		Updates(map[string]any{
			"current_lottery_id": lotteryID + 1,
			"total_participants": 0,
			"lottery_endtime":    nextEndtime,
		})
	return checkAffected(tx)
}

func (r *lotteryRepository) UpdateState(
	ctx context.Context, addr string, lotteryID uint64, updates map[string]any,
) error {
	if err := checkDeclared(ctx, addr); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.LotteryState{}).
		Where("address=? AND current_lottery_id=?", addr, lotteryID).
		Updates(updates)
	return checkAffected(tx)
}

func (r *lotteryRepository) CreateVault(ctx context.Context, vault *entity.PotVault) error {
	if err := checkDeclared(ctx, vault.Address); err != nil {
		return err
	}

	return createOnce(ctx, vault)
}

func (r *lotteryRepository) GetVault(ctx context.Context, addr string) (*entity.PotVault, error) {
	if err := checkDeclared(ctx, addr); err != nil {
		return nil, err
	}

	var result entity.PotVault
	if err := xcontext.DB(ctx).Take(&result, "address=?", addr).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) Deposit(ctx context.Context, addr string, amount uint64) error {
	if err := checkDeclared(ctx, addr); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.PotVault{}).
		Where("address=?", addr).
		Update("balance", gorm.Expr("balance+?", amount))
	return checkAffected(tx)
}

func (r *lotteryRepository) Withdraw(ctx context.Context, addr string, amount uint64) error {
	if err := checkDeclared(ctx, addr); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.PotVault{}).
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

func (r *lotteryRepository) CreateReceipt(ctx context.Context, receipt *entity.UserEntryReceipt) error {
	if err := checkDeclared(ctx, receipt.Address); err != nil {
		return err
	}

	return createOnce(ctx, receipt)
}

func (r *lotteryRepository) GetReceipt(ctx context.Context, addr string) (*entity.UserEntryReceipt, error) {
	if err := checkDeclared(ctx, addr); err != nil {
		return nil, err
	}

	var result entity.UserEntryReceipt
	if err := xcontext.DB(ctx).Take(&result, "address=?", addr).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) CreateTicket(ctx context.Context, ticket *entity.UserTicket) error {
	if err := checkDeclared(ctx, ticket.Address); err != nil {
		return err
	}

	return createOnce(ctx, ticket)
}

func (r *lotteryRepository) GetTicket(ctx context.Context, addr string) (*entity.UserTicket, error) {
	if err := checkDeclared(ctx, addr); err != nil {
		return nil, err
	}

	var result entity.UserTicket
	if err := xcontext.DB(ctx).Take(&result, "address=?", addr).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) MarkWinner(ctx context.Context, addr string) error {
	if err := checkDeclared(ctx, addr); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.UserTicket{}).
		Where("address=? AND is_winner=?", addr, false).
		Update("is_winner", true)
	return checkAffected(tx)
}

func (r *lotteryRepository) Claim(ctx context.Context, addr string, prize uint64) error {
	if err := checkDeclared(ctx, addr); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.UserTicket{}).
		Where("address=? AND is_winner=? AND is_claimed=?", addr, true, false).
		Updates(map[string]any{
			"is_claimed":   true,
			"prize_amount": prize,
		})
	return checkAffected(tx)
}
