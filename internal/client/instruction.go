package client

import (
	"crypto/ecdsa"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/questx-lab/settlement/internal/address"
	"github.com/questx-lab/settlement/internal/model"
)

// InstructionBuilder derives the accounts of every instruction and signs it.
type InstructionBuilder struct {
	deriver   address.Deriver
	lastNonce atomic.Uint64
}

func NewInstructionBuilder(deriver address.Deriver) *InstructionBuilder {
	return &InstructionBuilder{deriver: deriver}
}

func (b *InstructionBuilder) Initialize(
	authority *ecdsa.PrivateKey, args model.InitializeArgs,
) (*model.Instruction, error) {
	accounts := model.InitializeAccounts{
		Authority:    crypto.PubkeyToAddress(authority.PublicKey),
		LotteryState: b.deriver.LotteryState(),
		PotVault:     b.deriver.PotVault(),
	}

	return b.build(model.InitializeInstruction, accounts, args, authority)
}

// EnterLottery derives the receipt and ticket from the counters read just
// before. The instruction fails if they changed in the meantime.
func (b *InstructionBuilder) EnterLottery(
	user *ecdsa.PrivateKey, lotteryID, totalParticipants uint64,
) (*model.Instruction, error) {
	userAddress := crypto.PubkeyToAddress(user.PublicKey)
	accounts := model.EnterLotteryAccounts{
		User:             userAddress,
		LotteryState:     b.deriver.LotteryState(),
		PotVault:         b.deriver.PotVault(),
		UserEntryReceipt: b.deriver.UserReceipt(userAddress, lotteryID),
		UserTicket:       b.deriver.UserTicket(lotteryID, totalParticipants),
	}

	return b.build(model.EnterLotteryInstruction, accounts, nil, user)
}

func (b *InstructionBuilder) RequestDraw(authority *ecdsa.PrivateKey) (*model.Instruction, error) {
	accounts := model.RequestDrawAccounts{
		Authority:    crypto.PubkeyToAddress(authority.PublicKey),
		LotteryState: b.deriver.LotteryState(),
	}

	return b.build(model.RequestDrawInstruction, accounts, nil, authority)
}

func (b *InstructionBuilder) ResolveDraw(
	oracle *ecdsa.PrivateKey, lotteryID, winningIndex uint64,
) (*model.Instruction, error) {
	accounts := model.ResolveDrawAccounts{
		Oracle:        crypto.PubkeyToAddress(oracle.PublicKey),
		LotteryState:  b.deriver.LotteryState(),
		WinningTicket: b.deriver.UserTicket(lotteryID, winningIndex),
	}

	return b.build(model.ResolveDrawInstruction, accounts,
		model.ResolveDrawArgs{WinningIndex: winningIndex}, oracle)
}

// Payout takes the 1-indexed winner of the lottery.
func (b *InstructionBuilder) Payout(
	authority *ecdsa.PrivateKey,
	platformWallet, winnerAddress common.Address,
	lotteryID, winner uint64,
) (*model.Instruction, error) {
	accounts := model.PayoutAccounts{
		Authority:      crypto.PubkeyToAddress(authority.PublicKey),
		LotteryState:   b.deriver.LotteryState(),
		PotVault:       b.deriver.PotVault(),
		PlatformWallet: platformWallet,
		WinningTicket:  b.deriver.UserTicket(lotteryID, winner-1),
		Winner:         winnerAddress,
	}

	return b.build(model.PayoutInstruction, accounts, nil, authority)
}

func (b *InstructionBuilder) Reset(
	authority *ecdsa.PrivateKey, args model.ResetArgs,
) (*model.Instruction, error) {
	accounts := model.ResetAccounts{
		Authority:    crypto.PubkeyToAddress(authority.PublicKey),
		LotteryState: b.deriver.LotteryState(),
	}

	return b.build(model.ResetInstruction, accounts, args, authority)
}

func (b *InstructionBuilder) build(
	kind model.InstructionKind, accounts, args any, key *ecdsa.PrivateKey,
) (*model.Instruction, error) {
	ins, err := model.NewInstruction(kind, accounts, args, b.nonce())
	if err != nil {
		return nil, err
	}

	if err := ins.Sign(key); err != nil {
		return nil, err
	}

	return ins, nil
}

// nonce is the current time in nanoseconds, strictly increasing per builder.
func (b *InstructionBuilder) nonce() uint64 {
	for {
		last := b.lastNonce.Load()
		next := uint64(time.Now().UnixNano())
		if next <= last {
			next = last + 1
		}

		if b.lastNonce.CompareAndSwap(last, next) {
			return next
		}
	}
}
