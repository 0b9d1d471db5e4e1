package entity

// Account holds the native balance of an identity.
type Account struct {
	Base

	Balance uint64
}

// ProcessedInstruction is keyed by the instruction hash.
type ProcessedInstruction struct {
	Base

	Kind  string `gorm:"size:32"`
	Nonce uint64
}
