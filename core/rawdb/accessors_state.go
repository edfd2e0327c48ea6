// Copyright 2024 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// Database accessors for account state: accounts, contract code and storage.

package rawdb

import (
	"bytes"

	"github.com/HITEYY/go-refunder/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
)

// ReadAccount retrieves an account, or nil if it was never written.
func ReadAccount(db ethdb.KeyValueReader, addr common.Address) *types.Account {
	data, _ := db.Get(accountKey(addr))
	if len(data) == 0 {
		return nil
	}
	acct := new(types.Account)
	if err := rlp.DecodeBytes(data, acct); err != nil {
		log.Error("Invalid account RLP", "address", addr, "err", err)
		return nil
	}
	return acct
}

// WriteAccount stores an account.
func WriteAccount(db ethdb.KeyValueWriter, addr common.Address, acct *types.Account) {
	data, err := rlp.EncodeToBytes(acct)
	if err != nil {
		panic("failed to encode account: " + err.Error())
	}
	if err := db.Put(accountKey(addr), data); err != nil {
		panic("failed to write account: " + err.Error())
	}
}

// DeleteAccount removes an account.
func DeleteAccount(db ethdb.KeyValueWriter, addr common.Address) {
	if err := db.Delete(accountKey(addr)); err != nil {
		panic("failed to delete account: " + err.Error())
	}
}

// ReadCode retrieves contract code by its hash.
func ReadCode(db ethdb.KeyValueReader, hash common.Hash) []byte {
	data, _ := db.Get(codeKey(hash))
	return data
}

// HasCode checks if the code with the given hash exists
func HasCode(db ethdb.KeyValueReader, hash common.Hash) bool {
	has, _ := db.Has(codeKey(hash))
	return has
}

// WriteCode writes contract code keyed by its hash.
func WriteCode(db ethdb.KeyValueWriter, hash common.Hash, code []byte) {
	if err := db.Put(codeKey(hash), code); err != nil {
		panic("failed to write code: " + err.Error())
	}
}

// ReadStorage retrieves a storage slot. Missing slots read as zero.
func ReadStorage(db ethdb.KeyValueReader, addr common.Address, slot common.Hash) common.Hash {
	data, _ := db.Get(storageKey(addr, slot))
	return common.BytesToHash(data)
}

// WriteStorage stores a storage slot with leading zeroes trimmed. Writing the
// zero value deletes the slot.
func WriteStorage(db ethdb.KeyValueWriter, addr common.Address, slot, value common.Hash) {
	if value == (common.Hash{}) {
		if err := db.Delete(storageKey(addr, slot)); err != nil {
			panic("failed to delete storage: " + err.Error())
		}
		return
	}
	if err := db.Put(storageKey(addr, slot), bytes.TrimLeft(value[:], "\x00")); err != nil {
		panic("failed to write storage: " + err.Error())
	}
}

// IterateStorage iterates over all non-zero slots of an account
func IterateStorage(db ethdb.Iteratee, addr common.Address, fn func(slot, value common.Hash) bool) {
	prefix := storagePrefixKey(addr)
	it := db.NewIterator(prefix, nil)
	defer it.Release()

	for it.Next() {
		key := it.Key()
		if len(key) != len(prefix)+common.HashLength {
			continue
		}
		if !fn(common.BytesToHash(key[len(prefix):]), common.BytesToHash(it.Value())) {
			break
		}
	}
}
