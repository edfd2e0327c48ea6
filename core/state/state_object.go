// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package state

import (
	"bytes"

	"github.com/HITEYY/go-refunder/core/rawdb"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Storage is a set of storage slots of one account.
type Storage map[common.Hash]common.Hash

// Copy returns a copy of the storage set.
func (s Storage) Copy() Storage {
	cpy := make(Storage, len(s))
	for key, value := range s {
		cpy[key] = value
	}
	return cpy
}

// stateObject represents an account which is being modified.
type stateObject struct {
	db      *StateDB
	address common.Address
	data    types.Account
	code    []byte // contract code, loaded lazily

	originStorage Storage // Storage cache of original entries to dedup rewrites
	dirtyStorage  Storage // Storage entries that have been modified in the current transaction

	dirtyCode bool // true if the code was updated
}

func newObject(db *StateDB, address common.Address, acct *types.Account) *stateObject {
	if acct == nil {
		acct = types.NewEmptyAccount()
	}
	return &stateObject{
		db:            db,
		address:       address,
		data:          *acct.Copy(),
		originStorage: make(Storage),
		dirtyStorage:  make(Storage),
	}
}

// deepCopy is used when an existing account is recreated so the previous
// version can be restored on revert.
func (s *stateObject) deepCopy(db *StateDB) *stateObject {
	obj := &stateObject{
		db:            db,
		address:       s.address,
		data:          *s.data.Copy(),
		code:          s.code,
		originStorage: s.originStorage.Copy(),
		dirtyStorage:  s.dirtyStorage.Copy(),
		dirtyCode:     s.dirtyCode,
	}
	return obj
}

func (s *stateObject) empty() bool {
	return s.data.Empty()
}

// GetState retrieves a value from the account storage.
func (s *stateObject) GetState(key common.Hash) common.Hash {
	if value, dirty := s.dirtyStorage[key]; dirty {
		return value
	}
	return s.GetCommittedState(key)
}

// GetCommittedState retrieves a value from the committed account storage.
func (s *stateObject) GetCommittedState(key common.Hash) common.Hash {
	if value, cached := s.originStorage[key]; cached {
		return value
	}
	value := rawdb.ReadStorage(s.db.db, s.address, key)
	s.originStorage[key] = value
	return value
}

// SetState updates a value in account storage.
func (s *stateObject) SetState(key, value common.Hash) {
	prev := s.GetState(key)
	if prev == value {
		return
	}
	s.db.journal.append(storageChange{
		account:   s.address,
		key:       key,
		prevvalue: prev,
	})
	s.setState(key, value)
}

func (s *stateObject) setState(key, value common.Hash) {
	s.dirtyStorage[key] = value
}

func (s *stateObject) AddBalance(amount *uint256.Int) {
	s.SetBalance(new(uint256.Int).Add(s.Balance(), amount))
}

func (s *stateObject) SubBalance(amount *uint256.Int) {
	s.SetBalance(new(uint256.Int).Sub(s.Balance(), amount))
}

func (s *stateObject) SetBalance(amount *uint256.Int) {
	s.db.journal.append(balanceChange{
		account: s.address,
		prev:    new(uint256.Int).Set(s.data.Balance),
	})
	s.setBalance(amount)
}

func (s *stateObject) setBalance(amount *uint256.Int) {
	s.data.Balance = amount
}

func (s *stateObject) Balance() *uint256.Int {
	return s.data.Balance
}

func (s *stateObject) Nonce() uint64 {
	return s.data.Nonce
}

func (s *stateObject) SetNonce(nonce uint64) {
	s.db.journal.append(nonceChange{
		account: s.address,
		prev:    s.data.Nonce,
	})
	s.setNonce(nonce)
}

func (s *stateObject) setNonce(nonce uint64) {
	s.data.Nonce = nonce
}

// Code returns the contract code associated with this object, if any.
func (s *stateObject) Code() []byte {
	if s.code != nil {
		return s.code
	}
	if bytes.Equal(s.CodeHash(), types.EmptyCodeHash.Bytes()) {
		return nil
	}
	s.code = rawdb.ReadCode(s.db.db, common.BytesToHash(s.CodeHash()))
	return s.code
}

func (s *stateObject) SetCode(code []byte) {
	prevcode := s.Code()
	s.db.journal.append(codeChange{
		account:   s.address,
		prevhash:  s.CodeHash(),
		prevcode:  prevcode,
		prevdirty: s.dirtyCode,
	})
	s.setCode(crypto.Keccak256Hash(code), code)
	s.dirtyCode = true
}

func (s *stateObject) setCode(codeHash common.Hash, code []byte) {
	s.code = code
	s.data.CodeHash = codeHash[:]
}

func (s *stateObject) CodeHash() []byte {
	return s.data.CodeHash
}
