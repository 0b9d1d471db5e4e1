package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"math/big"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

// RandUint64n returns a uniform random value in [0, n). It panics if n is 0.
func RandUint64n(n uint64) uint64 {
	r, err := rand.Int(rand.Reader, new(big.Int).SetUint64(n))
	if err != nil {
		panic(err)
	}

	return r.Uint64()
}

// ParsePrivateKey parses a hex encoded secp256k1 key, with or without the 0x
// prefix.
func ParsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	return ethcrypto.HexToECDSA(strings.TrimPrefix(s, "0x"))
}
