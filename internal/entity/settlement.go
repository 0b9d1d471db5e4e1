package entity

type LotteryState struct {
	Base

	Authority      string `gorm:"size:42"`
	Oracle         string `gorm:"size:42"`
	PotVault       string `gorm:"size:66"`
	PlatformWallet string `gorm:"size:42"`

	TicketPrice    uint64
	PlatformFeeBps uint16
	RoundDuration  int64

	CurrentLotteryID  uint64
	TotalParticipants uint64
	IsDrawing         bool
	LotteryEndtime    int64

	// Winner is the 1-indexed winning ticket of round WinnerLotteryID. It is
	// kept after payout until the next resolution.
	Winner          uint64
	WinnerLotteryID uint64
}

type PotVault struct {
	Base

	Balance uint64
}

type UserEntryReceipt struct {
	Base

	User           string `gorm:"size:42;index"`
	LotteryID      uint64
	SequenceNumber uint64
}

type UserTicket struct {
	Base

	User           string `gorm:"size:42"`
	LotteryID      uint64 `gorm:"index:idx_user_tickets_round"`
	SequenceNumber uint64 `gorm:"index:idx_user_tickets_round"`
	IsWinner       bool
	IsClaimed      bool
	PrizeAmount    uint64
}
