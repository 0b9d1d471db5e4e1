package address

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func TestDeriver_Deterministic(t *testing.T) {
	d1 := New("hastrology")
	d2 := New("hastrology")

	require.Equal(t, d1.LotteryState(), d2.LotteryState())
	require.Equal(t, d1.PotVault(), d2.PotVault())
	require.Equal(t, d1.UserReceipt(alice, 1), d2.UserReceipt(alice, 1))
	require.Equal(t, d1.UserTicket(1, 0), d2.UserTicket(1, 0))
}

func TestDeriver_DistinctInputs(t *testing.T) {
	d := New("hastrology")

	seen := map[common.Hash]string{}
	add := func(name string, h common.Hash) {
		prev, ok := seen[h]
		require.False(t, ok, "%s collides with %s", name, prev)
		seen[h] = name
	}

	add("state", d.LotteryState())
	add("vault", d.PotVault())
	for round := uint64(1); round <= 5; round++ {
		add("receipt alice", d.UserReceipt(alice, round))
		add("receipt bob", d.UserReceipt(bob, round))
		for seq := uint64(0); seq < 20; seq++ {
			add("ticket", d.UserTicket(round, seq))
		}
	}

	// Swapping the ticket components is a different address.
	require.NotEqual(t, d.UserTicket(1, 2), d.UserTicket(2, 1))

	// Another deployment never shares addresses.
	require.NotEqual(t, d.LotteryState(), New("other").LotteryState())
}

func TestDeriver_LengthPrefixed(t *testing.T) {
	d := New("p")

	// Without length prefixes these two would hash the same bytes.
	require.NotEqual(t,
		d.Derive(Tag("ab"), []byte("c")),
		d.Derive(Tag("a"), []byte("bc")),
	)
	require.NotEqual(t,
		d.Derive(UserTicketTag, []byte{1}, []byte{2, 3}),
		d.Derive(UserTicketTag, []byte{1, 2}, []byte{3}),
	)
}

func TestUint64(t *testing.T) {
	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, Uint64(1))
	require.Equal(t, []byte{0, 1, 0, 0, 0, 0, 0, 0}, Uint64(256))
}
