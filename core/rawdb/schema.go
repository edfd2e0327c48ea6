// Copyright 2024 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// Database key layout of the refunder chain.

package rawdb

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// configKey holds the JSON encoded chain config.
	configKey = []byte("refunder-config")

	// headBlockKey tracks the number of the latest mined block.
	headBlockKey = []byte("LastBlock")

	// accountPrefix + address -> rlp(types.Account)
	accountPrefix = []byte("a")

	// codePrefix + code hash -> contract code
	codePrefix = []byte("c")

	// storagePrefix + address + slot -> trimmed slot value
	storagePrefix = []byte("o")

	// txPrefix + tx hash -> rlp(types.Transaction)
	txPrefix = []byte("t")

	// receiptPrefix + tx hash -> rlp(types.Receipt)
	receiptPrefix = []byte("r")

	// blockTxPrefix + num (uint64 big endian) -> tx hash
	blockTxPrefix = []byte("b")
)

// encodeBlockNumber encodes a block number as big endian uint64
func encodeBlockNumber(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}

// accountKey = accountPrefix + address
func accountKey(addr common.Address) []byte {
	return append(append([]byte{}, accountPrefix...), addr.Bytes()...)
}

// codeKey = codePrefix + hash
func codeKey(hash common.Hash) []byte {
	return append(append([]byte{}, codePrefix...), hash.Bytes()...)
}

// storagePrefixKey returns the prefix shared by every slot of an account
func storagePrefixKey(addr common.Address) []byte {
	return append(append([]byte{}, storagePrefix...), addr.Bytes()...)
}

// storageKey = storagePrefix + address + slot
func storageKey(addr common.Address, slot common.Hash) []byte {
	return append(storagePrefixKey(addr), slot.Bytes()...)
}

// txKey = txPrefix + hash
func txKey(hash common.Hash) []byte {
	return append(append([]byte{}, txPrefix...), hash.Bytes()...)
}

// receiptKey = receiptPrefix + hash
func receiptKey(hash common.Hash) []byte {
	return append(append([]byte{}, receiptPrefix...), hash.Bytes()...)
}

// blockTxKey = blockTxPrefix + num (uint64 big endian)
func blockTxKey(number uint64) []byte {
	return append(append([]byte{}, blockTxPrefix...), encodeBlockNumber(number)...)
}
