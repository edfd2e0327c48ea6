// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package vm

import (
	"math/big"

	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Scope is the execution frame of one native contract invocation. Every state
// access made through it is charged against the frame's gas.
type Scope struct {
	evm      *EVM
	caller   common.Address
	address  common.Address
	value    *uint256.Int
	gas      uint64
	readOnly bool
}

func newScope(evm *EVM, caller, address common.Address, value *uint256.Int, gas uint64, readOnly bool) *Scope {
	if value == nil {
		value = new(uint256.Int)
	}
	return &Scope{
		evm:      evm,
		caller:   caller,
		address:  address,
		value:    value,
		gas:      gas,
		readOnly: readOnly,
	}
}

// Address returns the account the frame executes on.
func (s *Scope) Address() common.Address { return s.address }

// Caller returns the account that invoked the frame.
func (s *Scope) Caller() common.Address { return s.caller }

// Origin returns the sender of the transaction.
func (s *Scope) Origin() common.Address { return s.evm.Origin }

// Value returns a copy of the value sent with the call.
func (s *Scope) Value() *uint256.Int { return new(uint256.Int).Set(s.value) }

// GasPrice returns the price per gas declared by the transaction.
func (s *Scope) GasPrice() *uint256.Int {
	if s.evm.GasPrice == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(s.evm.GasPrice)
}

// BlockNumber returns the number of the block being executed.
func (s *Scope) BlockNumber() *big.Int {
	if s.evm.Context.BlockNumber == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(s.evm.Context.BlockNumber)
}

// Gas returns the gas left in the frame.
func (s *Scope) Gas() uint64 { return s.gas }

// IsStatic reports whether state modifications are forbidden.
func (s *Scope) IsStatic() bool { return s.readOnly }

// UseGas charges gas to the frame.
func (s *Scope) UseGas(gas uint64) error {
	if s.gas < gas {
		s.gas = 0
		return ErrOutOfGas
	}
	s.gas -= gas
	return nil
}

// GetState reads a storage slot of the executing account.
func (s *Scope) GetState(slot common.Hash) (common.Hash, error) {
	if err := s.UseGas(params.SloadGas); err != nil {
		return common.Hash{}, err
	}
	return s.evm.StateDB.GetState(s.address, slot), nil
}

// SetState writes a storage slot of the executing account.
func (s *Scope) SetState(slot, value common.Hash) error {
	if s.readOnly {
		return ErrWriteProtection
	}
	current := s.evm.StateDB.GetState(s.address, slot)
	cost := params.SstoreNoopGas
	switch {
	case current == value:
	case current == (common.Hash{}):
		cost = params.SstoreSetGas
	default:
		cost = params.SstoreResetGas
	}
	if err := s.UseGas(cost); err != nil {
		return err
	}
	s.evm.StateDB.SetState(s.address, slot, value)
	return nil
}

// GetTransientState reads a transient slot of the executing account.
func (s *Scope) GetTransientState(slot common.Hash) (common.Hash, error) {
	if err := s.UseGas(params.TloadGas); err != nil {
		return common.Hash{}, err
	}
	return s.evm.StateDB.GetTransientState(s.address, slot), nil
}

// SetTransientState writes a transient slot of the executing account.
func (s *Scope) SetTransientState(slot, value common.Hash) error {
	if s.readOnly {
		return ErrWriteProtection
	}
	if err := s.UseGas(params.TstoreGas); err != nil {
		return err
	}
	s.evm.StateDB.SetTransientState(s.address, slot, value)
	return nil
}

// SelfBalance returns the balance of the executing account.
func (s *Scope) SelfBalance() (*uint256.Int, error) {
	if err := s.UseGas(params.SelfBalanceGas); err != nil {
		return nil, err
	}
	return s.evm.StateDB.GetBalance(s.address), nil
}

// Emit appends a log with the given topics and data.
func (s *Scope) Emit(topics []common.Hash, data []byte) error {
	if s.readOnly {
		return ErrWriteProtection
	}
	cost := params.LogGas + uint64(len(topics))*params.LogTopicGas + uint64(len(data))*params.LogDataGas
	if err := s.UseGas(cost); err != nil {
		return err
	}
	s.evm.StateDB.AddLog(&types.Log{
		Address: s.address,
		Topics:  topics,
		Data:    common.CopyBytes(data),
	})
	return nil
}

// Call invokes addr with input and value, forwarding all but one 64th of the
// remaining gas. A non-zero value adds the call stipend.
func (s *Scope) Call(addr common.Address, input []byte, value *uint256.Int) ([]byte, error) {
	if value == nil {
		value = new(uint256.Int)
	}
	if !value.IsZero() && s.readOnly {
		return nil, ErrWriteProtection
	}
	cost := params.CallGas
	if !value.IsZero() {
		cost += params.CallValueTransferGas
	}
	if err := s.UseGas(cost); err != nil {
		return nil, err
	}
	gas := s.gas - s.gas/64
	s.gas -= gas
	if !value.IsZero() {
		gas += params.CallStipend
	}
	return s.dispatch(addr, input, gas, value)
}

// StaticCall invokes addr with input and forbids state modifications for the
// duration of the call.
func (s *Scope) StaticCall(addr common.Address, input []byte) ([]byte, error) {
	if err := s.UseGas(params.CallGas); err != nil {
		return nil, err
	}
	gas := s.gas - s.gas/64
	s.gas -= gas
	ret, left, err := s.evm.call(s.address, addr, input, gas, new(uint256.Int), true)
	s.gas += left
	return ret, err
}

// Transfer sends amount to addr with only the call stipend, so the recipient
// can log but not make further state changes.
func (s *Scope) Transfer(addr common.Address, amount *uint256.Int) error {
	if s.readOnly {
		return ErrWriteProtection
	}
	if err := s.UseGas(params.CallGas + params.CallValueTransferGas); err != nil {
		return err
	}
	_, err := s.dispatch(addr, nil, params.CallStipend, amount)
	return err
}

func (s *Scope) dispatch(addr common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, error) {
	ret, left, err := s.evm.call(s.address, addr, input, gas, value, s.readOnly)
	s.gas += left
	return ret, err
}

// Create deploys code from the executing account, forwarding all but one
// 64th of the remaining gas.
func (s *Scope) Create(code []byte, value *uint256.Int) (common.Address, error) {
	if s.readOnly {
		return common.Address{}, ErrWriteProtection
	}
	if value == nil {
		value = new(uint256.Int)
	}
	if err := s.UseGas(params.CreateGas); err != nil {
		return common.Address{}, err
	}
	gas := s.gas - s.gas/64
	s.gas -= gas
	_, addr, left, err := s.evm.Create(s.address, code, gas, value)
	s.gas += left
	if err != nil {
		return common.Address{}, err
	}
	return addr, nil
}
