// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package core

import (
	"fmt"
	"math"
	"math/big"

	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ExecutionResult includes all output after executing given message.
type ExecutionResult struct {
	UsedGas    uint64 // Total used gas, including the intrinsic part
	Err        error  // Any error encountered during the execution (listed in core/vm/errors.go)
	ReturnData []byte // Returned data from the call (func return value or revert data)
}

// Unwrap returns the internal execution error.
func (result *ExecutionResult) Unwrap() error {
	return result.Err
}

// Failed returns the indicator whether the execution is successful or not
func (result *ExecutionResult) Failed() bool { return result.Err != nil }

// Return is a helper function to help caller distinguish between revert reason
// and function return. Return returns the data after execution if no error occurs.
func (result *ExecutionResult) Return() []byte {
	if result.Err != nil {
		return nil
	}
	return common.CopyBytes(result.ReturnData)
}

// Revert returns the concrete revert reason if the execution is aborted by a
// revert.
func (result *ExecutionResult) Revert() []byte {
	return vm.RevertData(result.Err)
}

// IntrinsicGas computes the 'intrinsic gas' for a message with the given data.
func IntrinsicGas(data []byte, isContractCreation bool) (uint64, error) {
	// Set the starting gas for the raw transaction
	gas := params.TxGas
	if isContractCreation {
		gas = params.TxGasContractCreation
	}
	if len(data) == 0 {
		return gas, nil
	}
	// Zero and non-zero bytes are priced differently
	var nz uint64
	for _, byt := range data {
		if byt != 0 {
			nz++
		}
	}
	// Make sure we don't exceed uint64 for all data combinations
	if (math.MaxUint64-gas)/params.TxDataNonZeroGas < nz {
		return 0, ErrGasUintOverflow
	}
	gas += nz * params.TxDataNonZeroGas

	z := uint64(len(data)) - nz
	if (math.MaxUint64-gas)/params.TxDataZeroGas < z {
		return 0, ErrGasUintOverflow
	}
	gas += z * params.TxDataZeroGas
	return gas, nil
}

// A Message contains the data derived from a single transaction that is relevant
// to state processing.
type Message struct {
	To       *common.Address
	From     common.Address
	Nonce    uint64
	Value    *uint256.Int
	GasLimit uint64
	GasPrice *uint256.Int
	Data     []byte

	// When SkipAccountChecks is true, the message nonce is not checked
	// against the account nonce in state. Used by read-only calls.
	SkipAccountChecks bool
}

// TransactionToMessage converts a transaction into a Message.
func TransactionToMessage(tx *types.Transaction, chainID *big.Int) (*Message, error) {
	from, err := types.Sender(tx, chainID)
	if err != nil {
		return nil, err
	}
	msg := &Message{
		Nonce:    tx.Nonce,
		GasLimit: tx.Gas,
		GasPrice: new(uint256.Int),
		Value:    new(uint256.Int),
		From:     from,
		To:       tx.To,
		Data:     tx.Data,
	}
	if tx.GasPrice != nil {
		msg.GasPrice.Set(tx.GasPrice)
	}
	if tx.Value != nil {
		msg.Value.Set(tx.Value)
	}
	return msg, nil
}

// ApplyMessage computes the new state by applying the given message against
// the old state within the environment.
//
// ApplyMessage returns the bytes returned by any host execution (if it took
// place), the gas used (which includes gas refunds) and an error if it failed.
// An error always indicates a core error meaning that the message would always
// fail for that particular state and would never be accepted within a block.
func ApplyMessage(evm *vm.EVM, msg *Message) (*ExecutionResult, error) {
	return newStateTransition(evm, msg).execute()
}

// stateTransition represents a state transition.
//
// 1. Nonce handling
// 2. Pre pay gas
// 3. Create a new state object if the recipient is nil
// 4. Value transfer
// 5. Run native code
// 6. Refund unused gas and pay the coinbase
type stateTransition struct {
	msg          *Message
	gasRemaining uint64
	initialGas   uint64
	state        vm.StateDB
	evm          *vm.EVM
}

func newStateTransition(evm *vm.EVM, msg *Message) *stateTransition {
	return &stateTransition{
		evm:   evm,
		msg:   msg,
		state: evm.StateDB,
	}
}

func (st *stateTransition) buyGas() error {
	mgval, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(st.msg.GasLimit), st.msg.GasPrice)
	if overflow {
		return fmt.Errorf("%w: address %v gas %d price %v", ErrGasPriceOverflow, st.msg.From.Hex(), st.msg.GasLimit, st.msg.GasPrice)
	}
	balanceCheck, overflow := new(uint256.Int).AddOverflow(mgval, st.msg.Value)
	if overflow {
		return fmt.Errorf("%w: address %v value %v", ErrGasPriceOverflow, st.msg.From.Hex(), st.msg.Value)
	}
	if have, want := st.state.GetBalance(st.msg.From), balanceCheck; have.Cmp(want) < 0 {
		return fmt.Errorf("%w: address %v have %v want %v", ErrInsufficientFunds, st.msg.From.Hex(), have, want)
	}
	st.gasRemaining = st.msg.GasLimit
	st.initialGas = st.msg.GasLimit
	st.state.SubBalance(st.msg.From, mgval)
	return nil
}

func (st *stateTransition) preCheck() error {
	msg := st.msg
	if !msg.SkipAccountChecks {
		// Make sure this transaction's nonce is correct.
		stNonce := st.state.GetNonce(msg.From)
		if msgNonce := msg.Nonce; stNonce < msgNonce {
			return fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooHigh,
				msg.From.Hex(), msgNonce, stNonce)
		} else if stNonce > msgNonce {
			return fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooLow,
				msg.From.Hex(), msgNonce, stNonce)
		} else if stNonce+1 < stNonce {
			return fmt.Errorf("%w: address %v, nonce: %d", ErrNonceMax,
				msg.From.Hex(), stNonce)
		}
	}
	if limit := st.evm.Context.GasLimit; limit > 0 && msg.GasLimit > limit {
		return fmt.Errorf("%w: tx gas %d, block gas limit %d", ErrGasLimitReached, msg.GasLimit, limit)
	}
	return st.buyGas()
}

// execute will transition the state by applying the current message and
// returning the execution result with the following fields.
//
//   - used gas: total gas used (including gas being refunded)
//   - returndata: the returned data from the host
//   - concrete execution error: various host errors which abort the
//     execution, e.g. ErrOutOfGas, ErrExecutionReverted
//
// However if any consensus issue is encountered, return the error directly
// with nil execution result.
func (st *stateTransition) execute() (*ExecutionResult, error) {
	if err := st.preCheck(); err != nil {
		return nil, err
	}
	var (
		msg              = st.msg
		contractCreation = msg.To == nil
	)
	gas, err := IntrinsicGas(msg.Data, contractCreation)
	if err != nil {
		return nil, err
	}
	if st.gasRemaining < gas {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGas, st.gasRemaining, gas)
	}
	st.gasRemaining -= gas

	// Check clause 6
	if !msg.Value.IsZero() && !st.evm.Context.CanTransfer(st.state, msg.From, msg.Value) {
		return nil, fmt.Errorf("%w: address %v", ErrInsufficientFunds, msg.From.Hex())
	}

	var (
		ret   []byte
		vmerr error // vm errors do not effect consensus and are therefore not assigned to err
	)
	if contractCreation {
		ret, _, st.gasRemaining, vmerr = st.evm.Create(msg.From, msg.Data, st.gasRemaining, msg.Value)
	} else {
		// Increment the nonce for the next transaction
		st.state.SetNonce(msg.From, st.state.GetNonce(msg.From)+1)
		ret, st.gasRemaining, vmerr = st.evm.Call(msg.From, *msg.To, msg.Data, st.gasRemaining, msg.Value)
	}
	st.refundGas()

	fee := new(uint256.Int).SetUint64(st.gasUsed())
	fee.Mul(fee, msg.GasPrice)
	st.state.AddBalance(st.evm.Context.Coinbase, fee)

	return &ExecutionResult{
		UsedGas:    st.gasUsed(),
		Err:        vmerr,
		ReturnData: ret,
	}, nil
}

// refundGas returns the remaining gas to the sender. buyGas bounds
// gas * price, so neither the refund nor the fee can overflow.
func (st *stateTransition) refundGas() {
	remaining := new(uint256.Int).Mul(uint256.NewInt(st.gasRemaining), st.msg.GasPrice)
	st.state.AddBalance(st.msg.From, remaining)
}

// gasUsed returns the amount of gas used up by the state transition.
func (st *stateTransition) gasUsed() uint64 {
	return st.initialGas - st.gasRemaining
}
