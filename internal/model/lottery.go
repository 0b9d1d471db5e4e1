package model

import "github.com/ethereum/go-ethereum/common"

// Accounts structs name the records an instruction touches. The tags are the
// role names used in Instruction.Accounts.

type InitializeAccounts struct {
	Authority    common.Address `structs:"authority" mapstructure:"authority"`
	LotteryState common.Hash    `structs:"lottery_state" mapstructure:"lottery_state"`
	PotVault     common.Hash    `structs:"pot_vault" mapstructure:"pot_vault"`
}

type InitializeArgs struct {
	PlatformWallet      common.Address `structs:"platform_wallet" mapstructure:"platform_wallet"`
	TicketPrice         uint64         `structs:"ticket_price" mapstructure:"ticket_price"`
	PlatformFeeBps      uint16         `structs:"platform_fee_bps" mapstructure:"platform_fee_bps"`
	FirstLotteryEndtime int64          `structs:"first_lottery_endtime" mapstructure:"first_lottery_endtime"`

	// Oracle signs ResolveDraw. The authority is used when it is empty.
	Oracle common.Address `structs:"oracle,omitempty" mapstructure:"oracle"`

	// RoundDuration is the length of every following round, in seconds.
	RoundDuration int64 `structs:"round_duration,omitempty" mapstructure:"round_duration"`
}

type InitializeRequest struct {
	Signers  []common.Address
	Accounts InitializeAccounts
	Args     InitializeArgs
}

type InitializeResponse struct {
	Effects
}

type EnterLotteryAccounts struct {
	User             common.Address `structs:"user" mapstructure:"user"`
	LotteryState     common.Hash    `structs:"lottery_state" mapstructure:"lottery_state"`
	PotVault         common.Hash    `structs:"pot_vault" mapstructure:"pot_vault"`
	UserEntryReceipt common.Hash    `structs:"user_entry_receipt" mapstructure:"user_entry_receipt"`
	UserTicket       common.Hash    `structs:"user_ticket" mapstructure:"user_ticket"`
}

type EnterLotteryRequest struct {
	Signers  []common.Address
	Accounts EnterLotteryAccounts
}

type EnterLotteryResponse struct {
	Effects

	LotteryID      uint64 `json:"lottery_id"`
	SequenceNumber uint64 `json:"sequence_number"`
}

type RequestDrawAccounts struct {
	Authority    common.Address `structs:"authority" mapstructure:"authority"`
	LotteryState common.Hash    `structs:"lottery_state" mapstructure:"lottery_state"`
}

type RequestDrawRequest struct {
	Signers  []common.Address
	Accounts RequestDrawAccounts
}

type RequestDrawResponse struct {
	Effects
}

type ResolveDrawAccounts struct {
	Oracle        common.Address `structs:"oracle" mapstructure:"oracle"`
	LotteryState  common.Hash    `structs:"lottery_state" mapstructure:"lottery_state"`
	WinningTicket common.Hash    `structs:"winning_ticket" mapstructure:"winning_ticket"`
}

type ResolveDrawArgs struct {
	// WinningIndex is the 0-indexed sequence number of the winning ticket.
	WinningIndex uint64 `structs:"winning_index" mapstructure:"winning_index"`
}

type ResolveDrawRequest struct {
	Signers  []common.Address
	Accounts ResolveDrawAccounts
	Args     ResolveDrawArgs
}

type ResolveDrawResponse struct {
	Effects

	Winner uint64 `json:"winner"`
}

type PayoutAccounts struct {
	Authority      common.Address `structs:"authority" mapstructure:"authority"`
	LotteryState   common.Hash    `structs:"lottery_state" mapstructure:"lottery_state"`
	PotVault       common.Hash    `structs:"pot_vault" mapstructure:"pot_vault"`
	PlatformWallet common.Address `structs:"platform_wallet" mapstructure:"platform_wallet"`
	WinningTicket  common.Hash    `structs:"winning_ticket" mapstructure:"winning_ticket"`
	Winner         common.Address `structs:"winner" mapstructure:"winner"`
}

type PayoutRequest struct {
	Signers  []common.Address
	Accounts PayoutAccounts
}

type PayoutResponse struct {
	Effects

	Prize uint64 `json:"prize"`
	Fee   uint64 `json:"fee"`
}

type ResetAccounts struct {
	Authority    common.Address `structs:"authority" mapstructure:"authority"`
	LotteryState common.Hash    `structs:"lottery_state" mapstructure:"lottery_state"`
}

type ResetArgs struct {
	TicketPrice    *uint64 `structs:"ticket_price,omitempty" mapstructure:"ticket_price"`
	PlatformFeeBps *uint16 `structs:"platform_fee_bps,omitempty" mapstructure:"platform_fee_bps"`
	LotteryEndtime int64   `structs:"lottery_endtime,omitempty" mapstructure:"lottery_endtime"`
}

type ResetRequest struct {
	Signers  []common.Address
	Accounts ResetAccounts
	Args     ResetArgs
}

type ResetResponse struct {
	Effects

	RolledOver bool `json:"rolled_over"`
}

type SubmitInstructionRequest = Instruction

type SubmitInstructionResponse struct {
	Hash   string  `json:"hash"`
	Result any     `json:"result,omitempty"`
	Events []Event `json:"events"`
}

type GetSettlementStatusRequest struct {
	User string `form:"user" json:"user"`
}

type SettlementStatus struct {
	Initialized       bool   `json:"initialized"`
	LotteryID         uint64 `json:"lottery_id"`
	IsDrawing         bool   `json:"is_drawing"`
	LotteryEndtime    int64  `json:"lottery_endtime"`
	TotalParticipants uint64 `json:"total_participants"`
	TicketPrice       uint64 `json:"ticket_price"`
	PlatformFeeBps    uint16 `json:"platform_fee_bps"`
	PotBalance        uint64 `json:"pot_balance"`
	Winner            uint64 `json:"winner"`
	WinnerLotteryID   uint64 `json:"winner_lottery_id"`
	WinnerAddress     string `json:"winner_address,omitempty"`
	Authority         string `json:"authority,omitempty"`
	Oracle            string `json:"oracle,omitempty"`
	PlatformWallet    string `json:"platform_wallet,omitempty"`
}

type GetSettlementStatusResponse struct {
	SettlementStatus

	User               string  `json:"user,omitempty"`
	HasEntered         bool    `json:"has_entered"`
	UserSequenceNumber *uint64 `json:"user_sequence_number,omitempty"`
}
