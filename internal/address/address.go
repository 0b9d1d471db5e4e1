// Package address derives the storage address of every settlement record.
//
// An address is Keccak-256 over the program id, a purpose tag and the record's
// components, each length-prefixed so that no two different inputs encode to
// the same preimage. Anyone knowing the inputs recomputes the address without
// a lookup.
package address

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type Tag string

const (
	LotteryStateTag Tag = "lottery-state"
	PotVaultTag     Tag = "pot-vault"
	UserReceiptTag  Tag = "user-receipt"
	UserTicketTag   Tag = "user-ticket"
)

type Deriver struct {
	programID []byte
}

func New(programID string) Deriver {
	return Deriver{programID: []byte(programID)}
}

func (d Deriver) Derive(tag Tag, components ...[]byte) common.Hash {
	preimage := appendPrefixed(nil, d.programID)
	preimage = appendPrefixed(preimage, []byte(tag))
	for _, c := range components {
		preimage = appendPrefixed(preimage, c)
	}

	return crypto.Keccak256Hash(preimage)
}

func (d Deriver) LotteryState() common.Hash {
	return d.Derive(LotteryStateTag)
}

func (d Deriver) PotVault() common.Hash {
	return d.Derive(PotVaultTag)
}

func (d Deriver) UserReceipt(user common.Address, lotteryID uint64) common.Hash {
	return d.Derive(UserReceiptTag, user.Bytes(), Uint64(lotteryID))
}

func (d Deriver) UserTicket(lotteryID, sequenceNumber uint64) common.Hash {
	return d.Derive(UserTicketTag, Uint64(lotteryID), Uint64(sequenceNumber))
}

// Uint64 encodes v as 8 little-endian bytes.
func Uint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func appendPrefixed(dst, b []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(b)))
	return append(dst, b...)
}
