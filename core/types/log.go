// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// Log represents a contract log event emitted by a native contract.
type Log struct {
	// address of the contract that generated the event
	Address common.Address `json:"address"`
	// list of topics provided by the contract
	Topics []common.Hash `json:"topics"`
	// supplied by the contract, usually ABI-encoded
	Data []byte `json:"data"`

	// Derived fields. These are filled in by the state database and are not
	// part of the stored receipt.
	TxHash common.Hash `json:"transactionHash" rlp:"-"`
	Index  uint        `json:"logIndex" rlp:"-"`
}
