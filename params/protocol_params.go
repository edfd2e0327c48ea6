// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// Gas schedule and protocol constants for the native contract host.

package params

import (
	ethparams "github.com/ethereum/go-ethereum/params"
)

const (
	TxGas                 uint64 = ethparams.TxGas                 // Per transaction not creating a contract
	TxGasContractCreation uint64 = ethparams.TxGasContractCreation // Per transaction that creates a contract
	TxDataZeroGas         uint64 = ethparams.TxDataZeroGas         // Per byte of data attached to a transaction that equals zero
	TxDataNonZeroGas      uint64 = ethparams.TxDataNonZeroGasEIP2028

	// Native contracts only ever touch their own account, so every storage
	// read, transient access and call target is priced as warm.
	WarmAccessGas  uint64 = ethparams.WarmStorageReadCostEIP2929
	SloadGas       uint64 = WarmAccessGas
	SstoreSetGas   uint64 = ethparams.SstoreSetGasEIP2200
	SstoreResetGas uint64 = ethparams.SstoreResetGasEIP2200 - ethparams.ColdSloadCostEIP2929
	SstoreNoopGas  uint64 = WarmAccessGas
	TloadGas       uint64 = WarmAccessGas
	TstoreGas      uint64 = WarmAccessGas
	CallGas        uint64 = WarmAccessGas

	CallValueTransferGas uint64 = ethparams.CallValueTransferGas // Paid for CALL when the value transfer is non-zero
	CallStipend          uint64 = ethparams.CallStipend          // Free gas given at beginning of call

	LogGas      uint64 = ethparams.LogGas      // Per LOG* operation
	LogTopicGas uint64 = ethparams.LogTopicGas // Multiplied by the * of the LOG*, per LOG transaction
	LogDataGas  uint64 = ethparams.LogDataGas  // Per byte in a LOG* operation's data

	CreateGas     uint64 = ethparams.CreateGas     // Once per CREATE operation & contract-creation transaction
	CreateDataGas uint64 = ethparams.CreateDataGas // Per byte of deployed code

	CallCreateDepth uint64 = ethparams.CallCreateDepth // Maximum depth of call/create stack
	MaxCodeSize            = ethparams.MaxCodeSize     // Maximum bytecode to permit for a contract

	// RefunderVersion is the protocol version the factory registers new
	// refunders with.
	RefunderVersion uint16 = 1
)

// SelfBalanceGas is the cost of reading the balance of the executing account.
const SelfBalanceGas uint64 = 5
