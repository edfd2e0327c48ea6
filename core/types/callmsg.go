// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// CallMsg contains parameters for read-only contract calls.
type CallMsg struct {
	From     common.Address  // the sender of the 'transaction'
	To       *common.Address // the destination contract (nil for contract creation)
	Gas      uint64          // if 0, the call executes with near-infinite gas
	GasPrice *uint256.Int    // price paid per unit of gas
	Value    *uint256.Int    // amount sent along with the call
	Data     []byte          // input data, usually an ABI-encoded contract method invocation
}
