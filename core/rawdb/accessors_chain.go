// Copyright 2024 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// Database accessors for mined transactions, receipts and the chain head.
// Every block of the refunder chain carries exactly one transaction.

package rawdb

import (
	"encoding/binary"

	"github.com/HITEYY/go-refunder/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
)

// ReadHeadBlockNumber retrieves the number of the latest block. A fresh
// database reports zero.
func ReadHeadBlockNumber(db ethdb.KeyValueReader) uint64 {
	data, _ := db.Get(headBlockKey)
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// WriteHeadBlockNumber stores the number of the latest block.
func WriteHeadBlockNumber(db ethdb.KeyValueWriter, number uint64) {
	if err := db.Put(headBlockKey, encodeBlockNumber(number)); err != nil {
		panic("failed to store last block: " + err.Error())
	}
}

// ReadBlockTxHash retrieves the hash of the transaction mined in a block.
func ReadBlockTxHash(db ethdb.KeyValueReader, number uint64) (common.Hash, bool) {
	data, err := db.Get(blockTxKey(number))
	if err != nil || len(data) != common.HashLength {
		return common.Hash{}, false
	}
	return common.BytesToHash(data), true
}

// ReadTransaction retrieves a mined transaction by hash.
func ReadTransaction(db ethdb.KeyValueReader, hash common.Hash) *types.Transaction {
	data, _ := db.Get(txKey(hash))
	if len(data) == 0 {
		return nil
	}
	tx := new(types.Transaction)
	if err := rlp.DecodeBytes(data, tx); err != nil {
		log.Error("Invalid transaction RLP", "hash", hash, "err", err)
		return nil
	}
	return tx
}

// WriteTransaction stores a transaction and indexes it under its block.
func WriteTransaction(db ethdb.KeyValueWriter, number uint64, tx *types.Transaction) {
	data, err := rlp.EncodeToBytes(tx)
	if err != nil {
		panic("failed to encode transaction: " + err.Error())
	}
	hash := tx.Hash()
	if err := db.Put(txKey(hash), data); err != nil {
		panic("failed to write transaction: " + err.Error())
	}
	if err := db.Put(blockTxKey(number), hash.Bytes()); err != nil {
		panic("failed to write block transaction index: " + err.Error())
	}
}

// ReadReceipt retrieves the receipt of a mined transaction.
func ReadReceipt(db ethdb.KeyValueReader, hash common.Hash) *types.Receipt {
	data, _ := db.Get(receiptKey(hash))
	if len(data) == 0 {
		return nil
	}
	receipt := new(types.Receipt)
	if err := rlp.DecodeBytes(data, receipt); err != nil {
		log.Error("Invalid receipt RLP", "hash", hash, "err", err)
		return nil
	}
	for i, l := range receipt.Logs {
		l.TxHash = receipt.TxHash
		l.Index = uint(i)
	}
	return receipt
}

// WriteReceipt stores the receipt of a mined transaction.
func WriteReceipt(db ethdb.KeyValueWriter, receipt *types.Receipt) {
	data, err := rlp.EncodeToBytes(receipt)
	if err != nil {
		panic("failed to encode receipt: " + err.Error())
	}
	if err := db.Put(receiptKey(receipt.TxHash), data); err != nil {
		panic("failed to write receipt: " + err.Error())
	}
}
