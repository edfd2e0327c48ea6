// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// StateProcessor integrates the native contract host into the transaction
// execution pipeline. It converts signed transactions into messages, applies
// them and produces receipts.

package core

import (
	"github.com/HITEYY/go-refunder/core/state"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// StateProcessor handles the application of transactions to state.
type StateProcessor struct {
	config  *params.ChainConfig
	natives vm.Natives
}

// NewStateProcessor creates a new processor running the given native contracts.
func NewStateProcessor(config *params.ChainConfig, natives vm.Natives) *StateProcessor {
	return &StateProcessor{
		config:  config,
		natives: natives,
	}
}

// Natives returns the native contract set the processor runs.
func (p *StateProcessor) Natives() vm.Natives {
	return p.natives
}

// ApplyTransaction applies tx to statedb and returns its receipt. An error is
// returned only if the transaction is invalid and must not be included; a
// failed execution yields a receipt with a failed status.
func (p *StateProcessor) ApplyTransaction(statedb *state.StateDB, blockCtx vm.BlockContext, tx *types.Transaction) (*types.Receipt, error) {
	msg, err := TransactionToMessage(tx, p.config.ChainID)
	if err != nil {
		return nil, err
	}
	statedb.Prepare(tx.Hash())
	evm := vm.NewEVM(blockCtx, NewEVMTxContext(msg), statedb, p.config, p.natives)

	result, err := ApplyMessage(evm, msg)
	if err != nil {
		return nil, err
	}
	receipt := &types.Receipt{
		Status:            types.ReceiptStatusSuccessful,
		GasUsed:           result.UsedGas,
		EffectiveGasPrice: msg.GasPrice,
		Logs:              statedb.Logs(),
		TxHash:            tx.Hash(),
		BlockNumber:       blockCtx.BlockNumber.Uint64(),
		Err:               result.Err,
	}
	if result.Failed() {
		receipt.Status = types.ReceiptStatusFailed
		receipt.Logs = nil
		if reason, ok := vm.RevertReason(result.Revert()); ok {
			receipt.RevertReason = reason
		}
	}
	if msg.To == nil {
		receipt.ContractAddress = crypto.CreateAddress(msg.From, tx.Nonce)
	}
	log.Debug("Processed transaction",
		"hash", tx.Hash(),
		"from", msg.From,
		"to", msg.To,
		"gasUsed", result.UsedGas,
		"status", receipt.Status,
		"err", result.Err,
	)
	return receipt, nil
}
