// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package types

import (
	"bytes"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// EmptyCodeHash is the known hash of the empty code.
var EmptyCodeHash = crypto.Keccak256Hash(nil)

// Account is the consensus representation of an account as stored in the
// database. Storage slots are kept under their own keys.
type Account struct {
	Nonce    uint64
	Balance  *uint256.Int
	CodeHash []byte
}

// NewEmptyAccount returns an account with zero balance and no code.
func NewEmptyAccount() *Account {
	return &Account{
		Balance:  new(uint256.Int),
		CodeHash: EmptyCodeHash.Bytes(),
	}
}

// Empty reports whether the account has no nonce, balance or code.
func (a *Account) Empty() bool {
	return a.Nonce == 0 && a.Balance.IsZero() && bytes.Equal(a.CodeHash, EmptyCodeHash.Bytes())
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	return &Account{
		Nonce:    a.Nonce,
		Balance:  new(uint256.Int).Set(a.Balance),
		CodeHash: bytes.Clone(a.CodeHash),
	}
}
