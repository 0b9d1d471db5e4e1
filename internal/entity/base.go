package entity

import (
	"context"
	"time"

	"github.com/questx-lab/settlement/pkg/xcontext"
)

// Base is embedded in every record. Address is the derived address of the
// record, or the identity for native accounts.
type Base struct {
	Address   string `gorm:"primarykey;size:66"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&LotteryState{},
		&PotVault{},
		&UserEntryReceipt{},
		&UserTicket{},
		&Account{},
		&ProcessedInstruction{},
	)
}
