package domain

import (
	"context"
	"errors"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/settlement/internal/address"
	"github.com/questx-lab/settlement/internal/entity"
	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/internal/repository"
	"github.com/questx-lab/settlement/pkg/errorx"
	"github.com/questx-lab/settlement/pkg/numberutil"
	"github.com/questx-lab/settlement/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const maxFeeBps = 10000

type LotteryDomain interface {
	Initialize(context.Context, *model.InitializeRequest) (*model.InitializeResponse, error)
	EnterLottery(context.Context, *model.EnterLotteryRequest) (*model.EnterLotteryResponse, error)
	RequestDraw(context.Context, *model.RequestDrawRequest) (*model.RequestDrawResponse, error)
	ResolveDraw(context.Context, *model.ResolveDrawRequest) (*model.ResolveDrawResponse, error)
	Payout(context.Context, *model.PayoutRequest) (*model.PayoutResponse, error)
	Reset(context.Context, *model.ResetRequest) (*model.ResetResponse, error)
	GetSettlementStatus(context.Context, *model.GetSettlementStatusRequest) (*model.GetSettlementStatusResponse, error)
}

type lotteryDomain struct {
	lotteryRepo repository.LotteryRepository
	accountRepo repository.AccountRepository
	deriver     address.Deriver
}

func NewLotteryDomain(
	lotteryRepo repository.LotteryRepository,
	accountRepo repository.AccountRepository,
	deriver address.Deriver,
) *lotteryDomain {
	return &lotteryDomain{
		lotteryRepo: lotteryRepo,
		accountRepo: accountRepo,
		deriver:     deriver,
	}
}

func (d *lotteryDomain) Initialize(
	ctx context.Context, req *model.InitializeRequest,
) (*model.InitializeResponse, error) {
	if !signedBy(req.Signers, req.Accounts.Authority) {
		return nil, errorx.New(errorx.MissingSignature, "Authority must sign the instruction")
	}

	if req.Accounts.LotteryState != d.deriver.LotteryState() {
		return nil, errorx.New(errorx.AddressMismatch, "Invalid lottery state address")
	}

	if req.Accounts.PotVault != d.deriver.PotVault() {
		return nil, errorx.New(errorx.AddressMismatch, "Invalid pot vault address")
	}

	_, err := d.lotteryRepo.GetState(ctx, req.Accounts.LotteryState.Hex())
	if err == nil {
		return nil, errorx.New(errorx.AlreadyInitialized, "Lottery is already initialized")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get lottery state: %v", err)
		return nil, errorx.Unknown
	}

	if req.Args.TicketPrice == 0 || req.Args.TicketPrice > numberutil.MaxStored {
		return nil, errorx.New(errorx.InvalidTicketPrice, "Ticket price must be in (0, %d]", uint64(numberutil.MaxStored))
	}

	if req.Args.PlatformFeeBps > maxFeeBps {
		return nil, errorx.New(errorx.InvalidPlatformFee, "Platform fee must be at most %d bps", maxFeeBps)
	}

	now := xcontext.Now(ctx).Unix()
	if req.Args.FirstLotteryEndtime <= now {
		return nil, errorx.New(errorx.InvalidEndTime, "First lottery end time must be in the future")
	}

	roundDuration := req.Args.RoundDuration
	if roundDuration == 0 {
		roundDuration = int64(xcontext.Configs(ctx).Lottery.RoundDuration.Seconds())
	}
	if roundDuration <= 0 {
		return nil, errorx.New(errorx.InvalidEndTime, "Round duration must be positive")
	}

	if req.Args.PlatformWallet == (common.Address{}) {
		return nil, errorx.New(errorx.InvalidPlatformWallet, "Platform wallet is required")
	}

	oracle := req.Args.Oracle
	if oracle == (common.Address{}) {
		oracle = req.Accounts.Authority
	}

	state := &entity.LotteryState{
		Base:              entity.Base{Address: req.Accounts.LotteryState.Hex()},
		Authority:         req.Accounts.Authority.Hex(),
		Oracle:            oracle.Hex(),
		PotVault:          req.Accounts.PotVault.Hex(),
		PlatformWallet:    req.Args.PlatformWallet.Hex(),
		TicketPrice:       req.Args.TicketPrice,
		PlatformFeeBps:    req.Args.PlatformFeeBps,
		RoundDuration:     roundDuration,
		CurrentLotteryID:  1,
		TotalParticipants: 0,
		IsDrawing:         false,
		LotteryEndtime:    req.Args.FirstLotteryEndtime,
	}

	if err := d.lotteryRepo.CreateState(ctx, state); err != nil {
		return nil, d.mapCreateError(ctx, err, errorx.AlreadyInitialized, "Lottery is already initialized")
	}

	vault := &entity.PotVault{Base: entity.Base{Address: req.Accounts.PotVault.Hex()}}
	if err := d.lotteryRepo.CreateVault(ctx, vault); err != nil {
		return nil, d.mapCreateError(ctx, err, errorx.AlreadyInitialized, "Pot vault already exists")
	}

	return &model.InitializeResponse{}, nil
}

func (d *lotteryDomain) EnterLottery(
	ctx context.Context, req *model.EnterLotteryRequest,
) (*model.EnterLotteryResponse, error) {
	user := req.Accounts.User
	if !signedBy(req.Signers, user) {
		return nil, errorx.New(errorx.MissingSignature, "User must sign the instruction")
	}

	state, err := d.getState(ctx, req.Accounts.LotteryState)
	if err != nil {
		return nil, err
	}

	if err := d.checkVault(state, req.Accounts.PotVault); err != nil {
		return nil, err
	}

	lotteryID := state.CurrentLotteryID
	if req.Accounts.UserEntryReceipt != d.deriver.UserReceipt(user, lotteryID) {
		return nil, errorx.New(errorx.AddressMismatch,
			"Receipt address does not match the current lottery #%d", lotteryID)
	}

	_, err = d.lotteryRepo.GetReceipt(ctx, req.Accounts.UserEntryReceipt.Hex())
	if err == nil {
		return nil, errorx.New(errorx.DuplicateEntry, "User already entered lottery #%d", lotteryID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, d.internal(ctx, "Cannot get receipt", err)
	}

	sequenceNumber := state.TotalParticipants
	if req.Accounts.UserTicket != d.deriver.UserTicket(lotteryID, sequenceNumber) {
		return nil, errorx.New(errorx.AddressMismatch,
			"Ticket address does not match sequence number %d of lottery #%d", sequenceNumber, lotteryID)
	}

	if state.IsDrawing {
		return nil, errorx.New(errorx.LotteryIsDrawing, "Lottery #%d is drawing", lotteryID)
	}

	now := xcontext.Now(ctx).Unix()
	if now >= state.LotteryEndtime || isResolved(state) {
		return nil, errorx.New(errorx.RoundClosed, "Lottery #%d is closed", lotteryID)
	}

	participants, err := numberutil.CheckedAddStored(sequenceNumber, 1)
	if err != nil {
		return nil, errorx.New(errorx.Overflow, "Too many participants")
	}

	vault, err := d.lotteryRepo.GetVault(ctx, state.PotVault)
	if err != nil {
		return nil, d.internal(ctx, "Cannot get pot vault", err)
	}

	if _, err := numberutil.CheckedAddStored(vault.Balance, state.TicketPrice); err != nil {
		return nil, errorx.New(errorx.Overflow, "Pot vault balance overflows")
	}

	if err := d.accountRepo.Debit(ctx, user.Hex(), state.TicketPrice); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, errorx.New(errorx.InsufficientFunds, "Not enough funds to buy a ticket")
		}

		return nil, d.internal(ctx, "Cannot debit user", err)
	}

	if err := d.lotteryRepo.Deposit(ctx, state.PotVault, state.TicketPrice); err != nil {
		return nil, d.internal(ctx, "Cannot deposit to pot vault", err)
	}

	receipt := &entity.UserEntryReceipt{
		Base:           entity.Base{Address: req.Accounts.UserEntryReceipt.Hex()},
		User:           user.Hex(),
		LotteryID:      lotteryID,
		SequenceNumber: sequenceNumber,
	}
	if err := d.lotteryRepo.CreateReceipt(ctx, receipt); err != nil {
		return nil, d.mapCreateError(ctx, err, errorx.DuplicateEntry, "User already entered the lottery")
	}

	ticket := &entity.UserTicket{
		Base:           entity.Base{Address: req.Accounts.UserTicket.Hex()},
		User:           user.Hex(),
		LotteryID:      lotteryID,
		SequenceNumber: sequenceNumber,
	}
	if err := d.lotteryRepo.CreateTicket(ctx, ticket); err != nil {
		return nil, d.mapCreateError(ctx, err, errorx.DuplicateTicket, "Ticket already exists")
	}

	err = d.lotteryRepo.IncreaseParticipants(ctx, state.Address, lotteryID, sequenceNumber)
	if err != nil {
		return nil, d.internal(ctx, "Cannot increase participants", err)
	}

	resp := &model.EnterLotteryResponse{LotteryID: lotteryID, SequenceNumber: sequenceNumber}
	resp.Emit(model.Event{
		Type:              model.EntryAcceptedEvent,
		LotteryID:         lotteryID,
		User:              user.Hex(),
		SequenceNumber:    sequenceNumber,
		TotalParticipants: participants,
		Amount:            state.TicketPrice,
		Timestamp:         now,
	})

	return resp, nil
}

func (d *lotteryDomain) RequestDraw(
	ctx context.Context, req *model.RequestDrawRequest,
) (*model.RequestDrawResponse, error) {
	state, err := d.getState(ctx, req.Accounts.LotteryState)
	if err != nil {
		return nil, err
	}

	if err := d.checkAuthority(req.Signers, req.Accounts.Authority, state); err != nil {
		return nil, err
	}

	if state.IsDrawing {
		return nil, errorx.New(errorx.LotteryIsDrawing, "Lottery #%d is already drawing", state.CurrentLotteryID)
	}

	if isResolved(state) {
		return nil, errorx.New(errorx.AlreadyResolved, "Lottery #%d is already resolved", state.CurrentLotteryID)
	}

	now := xcontext.Now(ctx).Unix()
	if now < state.LotteryEndtime {
		return nil, errorx.New(errorx.LotteryNotOver, "Lottery #%d is not over", state.CurrentLotteryID)
	}

	if err := d.lotteryRepo.StartDraw(ctx, state.Address, state.CurrentLotteryID); err != nil {
		return nil, d.internal(ctx, "Cannot start draw", err)
	}

	resp := &model.RequestDrawResponse{}
	resp.Emit(model.Event{
		Type:              model.DrawRequestedEvent,
		LotteryID:         state.CurrentLotteryID,
		TotalParticipants: state.TotalParticipants,
		Timestamp:         now,
	})

	return resp, nil
}

func (d *lotteryDomain) ResolveDraw(
	ctx context.Context, req *model.ResolveDrawRequest,
) (*model.ResolveDrawResponse, error) {
	if !signedBy(req.Signers, req.Accounts.Oracle) {
		return nil, errorx.New(errorx.MissingSignature, "Oracle must sign the instruction")
	}

	state, err := d.getState(ctx, req.Accounts.LotteryState)
	if err != nil {
		return nil, err
	}

	if req.Accounts.Oracle.Hex() != state.Oracle {
		return nil, errorx.New(errorx.UnauthorizedAuthority, "Only the oracle can resolve the draw")
	}

	if !state.IsDrawing {
		return nil, errorx.New(errorx.DrawNotRequested, "Draw of lottery #%d is not requested", state.CurrentLotteryID)
	}

	index := req.Args.WinningIndex
	if index >= state.TotalParticipants {
		return nil, errorx.New(errorx.WinnerOutOfRange,
			"Winning index %d is out of range [0, %d)", index, state.TotalParticipants)
	}

	if req.Accounts.WinningTicket != d.deriver.UserTicket(state.CurrentLotteryID, index) {
		return nil, errorx.New(errorx.AddressMismatch, "Winning ticket address does not match index %d", index)
	}

	winner, err := numberutil.CheckedAddStored(index, 1)
	if err != nil {
		return nil, errorx.New(errorx.Overflow, "Winner index overflows")
	}

	if err := d.lotteryRepo.MarkWinner(ctx, req.Accounts.WinningTicket.Hex()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyResolved, "Ticket %d is already a winner", index)
		}

		return nil, d.internal(ctx, "Cannot mark the winning ticket", err)
	}

	if err := d.lotteryRepo.FinishDraw(ctx, state.Address, state.CurrentLotteryID, winner); err != nil {
		return nil, d.internal(ctx, "Cannot finish draw", err)
	}

	ticket, err := d.lotteryRepo.GetTicket(ctx, req.Accounts.WinningTicket.Hex())
	if err != nil {
		return nil, d.internal(ctx, "Cannot get the winning ticket", err)
	}

	resp := &model.ResolveDrawResponse{Winner: winner}
	resp.Emit(model.Event{
		Type:              model.DrawResolvedEvent,
		LotteryID:         state.CurrentLotteryID,
		User:              ticket.User,
		SequenceNumber:    index,
		TotalParticipants: state.TotalParticipants,
		Winner:            winner,
		Timestamp:         xcontext.Now(ctx).Unix(),
	})

	return resp, nil
}

func (d *lotteryDomain) Payout(
	ctx context.Context, req *model.PayoutRequest,
) (*model.PayoutResponse, error) {
	state, err := d.getState(ctx, req.Accounts.LotteryState)
	if err != nil {
		return nil, err
	}

	if err := d.checkAuthority(req.Signers, req.Accounts.Authority, state); err != nil {
		return nil, err
	}

	if err := d.checkVault(state, req.Accounts.PotVault); err != nil {
		return nil, err
	}

	if req.Accounts.PlatformWallet.Hex() != state.PlatformWallet {
		return nil, errorx.New(errorx.InvalidPlatformWallet, "Platform wallet does not match")
	}

	if state.IsDrawing || !isResolved(state) {
		return nil, errorx.New(errorx.NotResolved, "Lottery #%d is not resolved", state.CurrentLotteryID)
	}

	lotteryID := state.CurrentLotteryID
	if req.Accounts.WinningTicket != d.deriver.UserTicket(lotteryID, state.Winner-1) {
		return nil, errorx.New(errorx.AddressMismatch, "Winning ticket address does not match the winner")
	}

	ticket, err := d.lotteryRepo.GetTicket(ctx, req.Accounts.WinningTicket.Hex())
	if err != nil {
		return nil, d.internal(ctx, "Cannot get the winning ticket", err)
	}

	if ticket.LotteryID != lotteryID || !ticket.IsWinner || ticket.IsClaimed {
		return nil, errorx.New(errorx.InvalidWinner, "Ticket is not an unclaimed winner of lottery #%d", lotteryID)
	}

	if req.Accounts.Winner.Hex() != ticket.User {
		return nil, errorx.New(errorx.InvalidWinner, "Winner does not own the winning ticket")
	}

	vault, err := d.lotteryRepo.GetVault(ctx, state.PotVault)
	if err != nil {
		return nil, d.internal(ctx, "Cannot get pot vault", err)
	}

	pot := vault.Balance
	if pot == 0 {
		return nil, errorx.New(errorx.VaultEmpty, "Pot vault is empty")
	}

	fee, err := numberutil.MulDiv(pot, uint64(state.PlatformFeeBps), maxFeeBps)
	if err != nil {
		return nil, errorx.New(errorx.Overflow, "Platform fee overflows")
	}

	prize, err := numberutil.CheckedSub(pot, fee)
	if err != nil {
		return nil, errorx.New(errorx.Overflow, "Prize underflows")
	}

	now := xcontext.Now(ctx).Unix()
	nextEndtime, err := nextRoundEndtime(state, now)
	if err != nil {
		return nil, err
	}

	if err := d.lotteryRepo.Withdraw(ctx, state.PotVault, pot); err != nil {
		return nil, d.internal(ctx, "Cannot withdraw pot vault", err)
	}

	if err := d.credit(ctx, req.Accounts.PlatformWallet, fee); err != nil {
		return nil, err
	}

	if err := d.credit(ctx, req.Accounts.Winner, prize); err != nil {
		return nil, err
	}

	if err := d.lotteryRepo.Claim(ctx, ticket.Address, prize); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidWinner, "Ticket is already claimed")
		}

		return nil, d.internal(ctx, "Cannot claim the winning ticket", err)
	}

	if err := d.lotteryRepo.CompleteRound(ctx, state.Address, lotteryID, nextEndtime); err != nil {
		return nil, d.internal(ctx, "Cannot complete the round", err)
	}

	resp := &model.PayoutResponse{Prize: prize, Fee: fee}
	resp.Emit(model.Event{
		Type:              model.PayoutCompletedEvent,
		LotteryID:         lotteryID,
		User:              ticket.User,
		SequenceNumber:    ticket.SequenceNumber,
		TotalParticipants: state.TotalParticipants,
		Winner:            state.Winner,
		Amount:            prize,
		Fee:               fee,
		Timestamp:         now,
	})

	return resp, nil
}

// Reset unsticks the lottery. An empty round is rolled over to a new round,
// optionally with a new price and fee. A round with entries keeps its entries
// and escrow and is only reopened.
func (d *lotteryDomain) Reset(
	ctx context.Context, req *model.ResetRequest,
) (*model.ResetResponse, error) {
	state, err := d.getState(ctx, req.Accounts.LotteryState)
	if err != nil {
		return nil, err
	}

	if err := d.checkAuthority(req.Signers, req.Accounts.Authority, state); err != nil {
		return nil, err
	}

	now := xcontext.Now(ctx).Unix()
	endtime := req.Args.LotteryEndtime
	if endtime == 0 {
		endtime, err = nextRoundEndtime(state, now)
		if err != nil {
			return nil, err
		}
	}

	if endtime <= now {
		return nil, errorx.New(errorx.InvalidEndTime, "Lottery end time must be in the future")
	}

	rollover := state.TotalParticipants == 0
	updates := map[string]any{
		"is_drawing":      false,
		"lottery_endtime": endtime,
	}

	lotteryID := state.CurrentLotteryID
	if rollover {
		lotteryID, err = numberutil.CheckedAddStored(state.CurrentLotteryID, 1)
		if err != nil {
			return nil, errorx.New(errorx.Overflow, "Lottery id overflows")
		}

		updates["current_lottery_id"] = lotteryID
		updates["winner"] = 0
		updates["winner_lottery_id"] = 0

		if req.Args.TicketPrice != nil {
			if *req.Args.TicketPrice == 0 || *req.Args.TicketPrice > numberutil.MaxStored {
				return nil, errorx.New(errorx.InvalidTicketPrice, "Ticket price must be in (0, %d]", uint64(numberutil.MaxStored))
			}
			updates["ticket_price"] = *req.Args.TicketPrice
		}

		if req.Args.PlatformFeeBps != nil {
			if *req.Args.PlatformFeeBps > maxFeeBps {
				return nil, errorx.New(errorx.InvalidPlatformFee, "Platform fee must be at most %d bps", maxFeeBps)
			}
			updates["platform_fee_bps"] = *req.Args.PlatformFeeBps
		}
	} else {
		if req.Args.TicketPrice != nil {
			return nil, errorx.New(errorx.InvalidTicketPrice, "Cannot change ticket price while the round has entries")
		}

		if req.Args.PlatformFeeBps != nil {
			return nil, errorx.New(errorx.InvalidPlatformFee, "Cannot change platform fee while the round has entries")
		}
	}

	if err := d.lotteryRepo.UpdateState(ctx, state.Address, state.CurrentLotteryID, updates); err != nil {
		return nil, d.internal(ctx, "Cannot reset lottery state", err)
	}

	resp := &model.ResetResponse{RolledOver: rollover}
	resp.Emit(model.Event{
		Type:              model.LotteryResetEvent,
		LotteryID:         lotteryID,
		TotalParticipants: state.TotalParticipants,
		Timestamp:         now,
	})

	return resp, nil
}

func (d *lotteryDomain) GetSettlementStatus(
	ctx context.Context, req *model.GetSettlementStatusRequest,
) (*model.GetSettlementStatusResponse, error) {
	resp := &model.GetSettlementStatusResponse{}

	state, err := d.lotteryRepo.GetState(ctx, d.deriver.LotteryState().Hex())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resp, nil
		}

		return nil, d.internal(ctx, "Cannot get lottery state", err)
	}

	vault, err := d.lotteryRepo.GetVault(ctx, state.PotVault)
	if err != nil {
		return nil, d.internal(ctx, "Cannot get pot vault", err)
	}

	resp.SettlementStatus = model.SettlementStatus{
		Initialized:       true,
		LotteryID:         state.CurrentLotteryID,
		IsDrawing:         state.IsDrawing,
		LotteryEndtime:    state.LotteryEndtime,
		TotalParticipants: state.TotalParticipants,
		TicketPrice:       state.TicketPrice,
		PlatformFeeBps:    state.PlatformFeeBps,
		PotBalance:        vault.Balance,
		Winner:            state.Winner,
		WinnerLotteryID:   state.WinnerLotteryID,
		Authority:         state.Authority,
		Oracle:            state.Oracle,
		PlatformWallet:    state.PlatformWallet,
	}

	if state.Winner != 0 && state.WinnerLotteryID != 0 {
		ticketAddr := d.deriver.UserTicket(state.WinnerLotteryID, state.Winner-1)
		ticket, err := d.lotteryRepo.GetTicket(ctx, ticketAddr.Hex())
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, d.internal(ctx, "Cannot get the winning ticket", err)
		}

		if ticket != nil {
			resp.WinnerAddress = ticket.User
		}
	}

	if req.User == "" {
		return resp, nil
	}

	if !common.IsHexAddress(req.User) {
		return nil, errorx.New(errorx.BadRequest, "Invalid user address")
	}

	user := common.HexToAddress(req.User)
	resp.User = user.Hex()

	receiptAddr := d.deriver.UserReceipt(user, state.CurrentLotteryID)
	receipt, err := d.lotteryRepo.GetReceipt(ctx, receiptAddr.Hex())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resp, nil
		}

		return nil, d.internal(ctx, "Cannot get receipt", err)
	}

	resp.HasEntered = true
	resp.UserSequenceNumber = &receipt.SequenceNumber
	return resp, nil
}

func (d *lotteryDomain) getState(ctx context.Context, addr common.Hash) (*entity.LotteryState, error) {
	if addr != d.deriver.LotteryState() {
		return nil, errorx.New(errorx.AddressMismatch, "Invalid lottery state address")
	}

	state, err := d.lotteryRepo.GetState(ctx, addr.Hex())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotInitialized, "Lottery is not initialized")
		}

		return nil, d.internal(ctx, "Cannot get lottery state", err)
	}

	return state, nil
}

func (d *lotteryDomain) checkAuthority(
	signers []common.Address, authority common.Address, state *entity.LotteryState,
) error {
	if !signedBy(signers, authority) {
		return errorx.New(errorx.MissingSignature, "Authority must sign the instruction")
	}

	if authority.Hex() != state.Authority {
		return errorx.New(errorx.UnauthorizedAuthority, "Unauthorized authority")
	}

	return nil
}

func (d *lotteryDomain) checkVault(state *entity.LotteryState, vault common.Hash) error {
	if vault != d.deriver.PotVault() || vault.Hex() != state.PotVault {
		return errorx.New(errorx.AddressMismatch, "Invalid pot vault address")
	}

	return nil
}

func (d *lotteryDomain) credit(ctx context.Context, to common.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}

	var balance uint64
	account, err := d.accountRepo.Get(ctx, to.Hex())
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return d.internal(ctx, "Cannot get account", err)
		}
	} else {
		balance = account.Balance
	}

	if _, err := numberutil.CheckedAddStored(balance, amount); err != nil {
		return errorx.New(errorx.Overflow, "Balance of %s overflows", to.Hex())
	}

	if err := d.accountRepo.Credit(ctx, to.Hex(), amount); err != nil {
		return d.internal(ctx, "Cannot credit account", err)
	}

	return nil
}

func (d *lotteryDomain) mapCreateError(ctx context.Context, err error, code errorx.Code, msg string) error {
	if errors.Is(err, repository.ErrAlreadyExists) {
		return errorx.New(code, "%s", msg)
	}

	return d.internal(ctx, "Cannot create record", err)
}

// internal logs an unexpected failure and hides it from the caller. Declared
// account violations are reported as they are.
func (d *lotteryDomain) internal(ctx context.Context, msg string, err error) error {
	if errors.Is(err, repository.ErrUndeclaredAccount) {
		return errorx.New(errorx.UndeclaredAccount, "%v", err)
	}

	xcontext.Logger(ctx).Errorf("%s: %v", msg, err)
	return errorx.Unknown
}

func signedBy(signers []common.Address, who common.Address) bool {
	return slices.Contains(signers, who)
}

func isResolved(state *entity.LotteryState) bool {
	return state.Winner != 0 && state.WinnerLotteryID == state.CurrentLotteryID
}

// nextRoundEndtime never schedules the next round in the past.
func nextRoundEndtime(state *entity.LotteryState, now int64) (int64, error) {
	base := state.LotteryEndtime
	if now > base {
		base = now
	}

	if state.RoundDuration > math.MaxInt64-base {
		return 0, errorx.New(errorx.Overflow, "Lottery end time overflows")
	}

	return base + state.RoundDuration, nil
}
