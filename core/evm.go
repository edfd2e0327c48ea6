// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package core

import (
	"math/big"

	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// NewEVMBlockContext creates a new context for use in the host.
func NewEVMBlockContext(number uint64, time uint64, coinbase common.Address, gasLimit uint64) vm.BlockContext {
	return vm.BlockContext{
		CanTransfer: CanTransfer,
		Transfer:    Transfer,
		Coinbase:    coinbase,
		BlockNumber: new(big.Int).SetUint64(number),
		Time:        time,
		GasLimit:    gasLimit,
	}
}

// NewEVMTxContext creates a new transaction context for a single transaction.
func NewEVMTxContext(msg *Message) vm.TxContext {
	return vm.TxContext{
		Origin:   msg.From,
		GasPrice: new(uint256.Int).Set(msg.GasPrice),
	}
}

// CanTransfer checks whether there are enough funds in the address' account to make a transfer.
func CanTransfer(db vm.StateDB, addr common.Address, amount *uint256.Int) bool {
	return db.GetBalance(addr).Cmp(amount) >= 0
}

// Transfer subtracts amount from sender and adds amount to recipient using the given Db
func Transfer(db vm.StateDB, sender, recipient common.Address, amount *uint256.Int) {
	db.SubBalance(sender, amount)
	db.AddBalance(recipient, amount)
}
