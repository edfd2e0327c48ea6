// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	// ReceiptStatusFailed is the status code of a transaction if execution failed.
	ReceiptStatusFailed = uint64(0)

	// ReceiptStatusSuccessful is the status code of a transaction if execution succeeded.
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt represents the results of a transaction.
type Receipt struct {
	Status            uint64
	GasUsed           uint64
	EffectiveGasPrice *uint256.Int
	Logs              []*Log

	TxHash          common.Hash
	ContractAddress common.Address
	BlockNumber     uint64

	// RevertReason holds the decoded Error(string) message of a reverted
	// execution, if any.
	RevertReason string

	// Err is the execution error. It is only available on receipts returned
	// by the chain that executed the transaction.
	Err error `rlp:"-"`
}

// Failed reports whether the execution of the transaction failed.
func (r *Receipt) Failed() bool {
	return r.Status == ReceiptStatusFailed
}

// Fee returns the amount paid by the sender for gas.
func (r *Receipt) Fee() *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(r.GasUsed), uint256OrZero(r.EffectiveGasPrice))
}
