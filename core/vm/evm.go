// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package vm

import (
	"errors"
	"math/big"

	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

type (
	// CanTransferFunc is the signature of a transfer guard function
	CanTransferFunc func(StateDB, common.Address, *uint256.Int) bool
	// TransferFunc is the signature of a transfer function
	TransferFunc func(StateDB, common.Address, common.Address, *uint256.Int)
)

// BlockContext provides the host with auxiliary information. Once provided
// it shouldn't be modified.
type BlockContext struct {
	// CanTransfer returns whether the account contains
	// sufficient ether to transfer the value
	CanTransfer CanTransferFunc
	// Transfer transfers ether from one account to the other
	Transfer TransferFunc

	Coinbase    common.Address // Provides information for COINBASE
	GasLimit    uint64         // Provides information for GASLIMIT
	BlockNumber *big.Int       // Provides information for NUMBER
	Time        uint64         // Provides information for TIME
}

// TxContext provides the host with information about a transaction.
type TxContext struct {
	Origin   common.Address // Provides information for ORIGIN
	GasPrice *uint256.Int   // Provides information for GASPRICE
}

// EVM is the host that executes native contracts. It resolves the code of an
// account to a native implementation, following minimal proxies, and runs it
// with a metered Scope.
//
// The EVM should never be reused and is not thread safe.
type EVM struct {
	// Context provides auxiliary blockchain related information
	Context BlockContext
	TxContext
	// StateDB gives access to the underlying state
	StateDB StateDB

	chainConfig *params.ChainConfig
	natives     Natives

	// depth is the current call stack
	depth int
}

// NewEVM returns a new host bound to the given native contract set.
func NewEVM(blockCtx BlockContext, txCtx TxContext, statedb StateDB, chainConfig *params.ChainConfig, natives Natives) *EVM {
	return &EVM{
		Context:     blockCtx,
		TxContext:   txCtx,
		StateDB:     statedb,
		chainConfig: chainConfig,
		natives:     natives,
	}
}

// ChainConfig returns the environment's chain configuration
func (evm *EVM) ChainConfig() *params.ChainConfig { return evm.chainConfig }

// Depth returns the current call depth.
func (evm *EVM) Depth() int { return evm.depth }

// Call executes the contract associated with the addr with the given input as
// parameters. It also handles any necessary value transfer required and takes
// the necessary steps to create accounts and reverses the state in case of an
// execution error or failed value transfer.
func (evm *EVM) Call(caller, addr common.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	return evm.call(caller, addr, input, gas, value, false)
}

// StaticCall executes the contract associated with the addr with the given
// input as parameters while disallowing any modifications to the state during
// the call.
func (evm *EVM) StaticCall(caller, addr common.Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error) {
	return evm.call(caller, addr, input, gas, new(uint256.Int), true)
}

func (evm *EVM) call(caller, addr common.Address, input []byte, gas uint64, value *uint256.Int, readOnly bool) (ret []byte, leftOverGas uint64, err error) {
	// Fail if we're trying to execute above the call depth limit
	if evm.depth > int(params.CallCreateDepth) {
		return nil, gas, ErrDepth
	}
	if !value.IsZero() {
		if readOnly {
			return nil, gas, ErrWriteProtection
		}
		// Fail if we're trying to transfer more than the available balance
		if !evm.Context.CanTransfer(evm.StateDB, caller, value) {
			return nil, gas, ErrInsufficientBalance
		}
	}
	snapshot := evm.StateDB.Snapshot()

	if !evm.StateDB.Exist(addr) && value.IsZero() {
		// Calling a non-existing account, don't do anything.
		return nil, gas, nil
	}
	evm.Context.Transfer(evm.StateDB, caller, addr, value)

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}
	ret, gas, err = evm.run(caller, addr, code, input, gas, value, readOnly)

	// When an error was returned by the contract or when setting the created
	// code we revert to the snapshot and consume any gas remaining. A revert
	// hands the remaining gas back.
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if !errors.Is(err, ErrExecutionReverted) {
			gas = 0
		}
	}
	return ret, gas, err
}

// run resolves code to a native implementation and executes it on the storage
// of addr.
func (evm *EVM) run(caller, addr common.Address, code, input []byte, gas uint64, value *uint256.Int, readOnly bool) ([]byte, uint64, error) {
	scope := newScope(evm, caller, addr, value, gas, readOnly)
	if target, ok := ParseCloneCode(code); ok {
		// The proxy forwards the call with delegate semantics.
		if err := scope.UseGas(params.CallGas); err != nil {
			return nil, 0, err
		}
		code = evm.StateDB.GetCode(target)
	}
	contract, _, err := evm.resolve(code)
	if err != nil {
		return nil, 0, err
	}
	evm.depth++
	defer func() { evm.depth-- }()

	ret, err := contract.Run(scope, input)
	if err != nil {
		return RevertData(err), scope.gas, err
	}
	return ret, scope.gas, nil
}

func (evm *EVM) resolve(code []byte) (NativeContract, []byte, error) {
	name, args, err := ParseNativeCode(code)
	if err != nil {
		return nil, nil, err
	}
	contract, ok := evm.natives[name]
	if !ok {
		return nil, nil, ErrUnknownContract
	}
	return contract, args, nil
}

// Create creates a new contract using code as deployment code. The address is
// derived from the caller address and nonce.
func (evm *EVM) Create(caller common.Address, code []byte, gas uint64, value *uint256.Int) (ret []byte, contractAddr common.Address, leftOverGas uint64, err error) {
	contractAddr = crypto.CreateAddress(caller, evm.StateDB.GetNonce(caller))
	return evm.create(caller, code, gas, value, contractAddr)
}

func (evm *EVM) create(caller common.Address, code []byte, gas uint64, value *uint256.Int, address common.Address) ([]byte, common.Address, uint64, error) {
	// Depth check execution. Fail if we're trying to execute above the
	// limit.
	if evm.depth > int(params.CallCreateDepth) {
		return nil, common.Address{}, gas, ErrDepth
	}
	if !evm.Context.CanTransfer(evm.StateDB, caller, value) {
		return nil, common.Address{}, gas, ErrInsufficientBalance
	}
	nonce := evm.StateDB.GetNonce(caller)
	if nonce+1 < nonce {
		return nil, common.Address{}, gas, ErrNonceUintOverflow
	}
	evm.StateDB.SetNonce(caller, nonce+1)

	// Ensure there's no existing contract already at the designated address.
	contractHash := evm.StateDB.GetCodeHash(address)
	if evm.StateDB.GetNonce(address) != 0 || (contractHash != (common.Hash{}) && contractHash != types.EmptyCodeHash) {
		return nil, common.Address{}, 0, ErrContractAddressCollision
	}
	// Create a new account on the state
	snapshot := evm.StateDB.Snapshot()
	evm.StateDB.CreateAccount(address)
	evm.StateDB.SetNonce(address, 1)
	evm.Context.Transfer(evm.StateDB, caller, address, value)

	scope := newScope(evm, caller, address, value, gas, false)
	ret, err := evm.initContract(scope, code)
	if err == nil && len(ret) > params.MaxCodeSize {
		err = ErrMaxCodeSizeExceeded
	}
	if err == nil {
		createDataGas := uint64(len(ret)) * params.CreateDataGas
		if err = scope.UseGas(createDataGas); err == nil {
			evm.StateDB.SetCode(address, ret)
		}
	}
	gas = scope.gas
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if !errors.Is(err, ErrExecutionReverted) {
			gas = 0
		}
		return RevertData(err), address, gas, err
	}
	return ret, address, gas, nil
}

// initContract runs the constructor of the deployment code and returns the
// code to store. Proxies are stored verbatim.
func (evm *EVM) initContract(scope *Scope, code []byte) ([]byte, error) {
	if _, ok := ParseCloneCode(code); ok {
		return code, nil
	}
	contract, args, err := evm.resolve(code)
	if err != nil {
		return nil, err
	}
	if ctor, ok := contract.(Constructor); ok {
		evm.depth++
		defer func() { evm.depth-- }()

		if err := ctor.Construct(scope, args); err != nil {
			return nil, err
		}
	} else if len(args) > 0 {
		return nil, ErrInvalidCode
	}
	return code[:len(code)-len(args)], nil
}
