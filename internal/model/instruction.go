package model

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/settlement/pkg/enum"
	"golang.org/x/exp/slices"
)

type InstructionKind string

var (
	InitializeInstruction   = enum.New(InstructionKind("initialize"), "initialize")
	EnterLotteryInstruction = enum.New(InstructionKind("enter_lottery"), "enter_lottery")
	RequestDrawInstruction  = enum.New(InstructionKind("request_draw"), "request_draw")
	ResolveDrawInstruction  = enum.New(InstructionKind("resolve_draw"), "resolve_draw")
	PayoutInstruction       = enum.New(InstructionKind("payout"), "payout")
	ResetInstruction        = enum.New(InstructionKind("reset"), "reset")
)

// Instruction is the signed unit submitted to the settlement runtime.
// Accounts maps a role name to the hex address the instruction declares for
// it. Only declared addresses may be read or written while it executes.
type Instruction struct {
	Kind       string            `json:"kind"`
	Accounts   map[string]string `json:"accounts"`
	Args       json.RawMessage   `json:"args,omitempty"`
	Nonce      uint64            `json:"nonce"`
	Signatures []string          `json:"signatures,omitempty"`
}

type signedPayload struct {
	Kind     string            `json:"kind"`
	Accounts map[string]string `json:"accounts"`
	Args     json.RawMessage   `json:"args,omitempty"`
	Nonce    uint64            `json:"nonce"`
}

// NewInstruction builds an unsigned instruction from typed accounts and args.
func NewInstruction(kind InstructionKind, accounts any, args any, nonce uint64) (*Instruction, error) {
	ins := &Instruction{
		Kind:     string(kind),
		Accounts: map[string]string{},
		Nonce:    nonce,
	}

	for role, value := range structs.Map(accounts) {
		switch v := value.(type) {
		case common.Address:
			ins.Accounts[role] = v.Hex()
		case common.Hash:
			ins.Accounts[role] = v.Hex()
		default:
			return nil, fmt.Errorf("account %s has unsupported type %T", role, value)
		}
	}

	if args != nil {
		b, err := json.Marshal(structs.Map(args))
		if err != nil {
			return nil, err
		}
		ins.Args = b
	}

	return ins, nil
}

// Hash is the digest every signer signs. Signatures are not part of it.
func (ins *Instruction) Hash() (common.Hash, error) {
	b, err := json.Marshal(signedPayload{
		Kind:     ins.Kind,
		Accounts: ins.Accounts,
		Args:     ins.Args,
		Nonce:    ins.Nonce,
	})
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(b), nil
}

// Sign appends a signature of key over the instruction hash.
func (ins *Instruction) Sign(key *ecdsa.PrivateKey) error {
	hash, err := ins.Hash()
	if err != nil {
		return err
	}

	signature, err := crypto.Sign(accounts.TextHash(hash.Bytes()), key)
	if err != nil {
		return err
	}

	ins.Signatures = append(ins.Signatures, hexutil.Encode(signature))
	return nil
}

// RecoverSigners returns the addresses which signed the instruction, in the
// order of the signatures.
func (ins *Instruction) RecoverSigners() ([]common.Address, error) {
	hash, err := ins.Hash()
	if err != nil {
		return nil, err
	}

	digest := accounts.TextHash(hash.Bytes())
	signers := []common.Address{}
	for _, s := range ins.Signatures {
		signature, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("cannot decode signature: %w", err)
		}

		if len(signature) != crypto.SignatureLength {
			return nil, fmt.Errorf("invalid signature length %d", len(signature))
		}

		if signature[crypto.RecoveryIDOffset] == 27 || signature[crypto.RecoveryIDOffset] == 28 {
			signature[crypto.RecoveryIDOffset] -= 27 // Transform yellow paper V from 27/28 to 0/1
		}

		recovered, err := crypto.SigToPub(digest, signature)
		if err != nil {
			return nil, fmt.Errorf("cannot recover signature: %w", err)
		}

		signers = append(signers, crypto.PubkeyToAddress(*recovered))
	}

	return signers, nil
}

// DecodeAccounts fills a typed accounts struct. Unknown roles are rejected.
func (ins *Instruction) DecodeAccounts(out any) error {
	return decode(ins.Accounts, out)
}

// DecodeArgs fills a typed args struct. Numbers keep their full 64-bit
// precision.
func (ins *Instruction) DecodeArgs(out any) error {
	if len(ins.Args) == 0 {
		return nil
	}

	raw := map[string]any{}
	decoder := json.NewDecoder(bytes.NewReader(ins.Args))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return err
	}

	return decode(raw, out)
}

// DeclaredAccounts returns the distinct addresses of the instruction, sorted.
func (ins *Instruction) DeclaredAccounts() []string {
	seen := map[string]bool{}
	result := []string{}
	for _, addr := range ins.Accounts {
		key := NormalizeAddress(addr)
		if !seen[key] {
			seen[key] = true
			result = append(result, key)
		}
	}

	slices.Sort(result)
	return result
}

// NormalizeAddress gives the canonical form used as record key and lock key.
func NormalizeAddress(s string) string {
	b, err := hexutil.Decode(s)
	if err != nil {
		return s
	}

	switch len(b) {
	case common.AddressLength:
		return common.BytesToAddress(b).Hex()
	case common.HashLength:
		return common.BytesToHash(b).Hex()
	}

	return s
}

func decode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  hexDecodeHook,
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

var (
	addressType = reflect.TypeOf(common.Address{})
	hashType    = reflect.TypeOf(common.Hash{})
)

func hexDecodeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if n, ok := data.(json.Number); ok {
		switch to.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			v, err := strconv.ParseUint(string(n), 10, to.Bits())
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q", to, n)
			}
			return v, nil
		}

		return data, nil
	}

	s, ok := data.(string)
	if !ok {
		return data, nil
	}

	switch to {
	case addressType:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil

	case hashType:
		b, err := hexutil.Decode(s)
		if err != nil || len(b) != common.HashLength {
			return nil, fmt.Errorf("invalid record address %q", s)
		}
		return common.BytesToHash(b), nil
	}

	return data, nil
}
