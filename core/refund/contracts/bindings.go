// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package contracts

import (
	"github.com/HITEYY/go-refunder/accounts/bind"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Greeter is a binding around a deployed greeter.
type Greeter struct {
	contract *bind.BoundContract
}

// DeployGreeter deploys a greeter.
func DeployGreeter(opts *bind.TransactOpts, backend bind.ContractBackend, greeting string, reentrySel types.Selector, reentryArgs []byte) (common.Address, *types.Transaction, *Greeter, error) {
	address, tx, contract, err := bind.DeployContract(opts, greeterABI, GreeterCode(greeting, reentrySel, reentryArgs), backend)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return address, tx, &Greeter{contract: contract}, nil
}

// NewGreeter binds the greeter at address.
func NewGreeter(address common.Address, backend bind.ContractBackend) *Greeter {
	return &Greeter{contract: bind.NewBoundContract(address, greeterABI, backend, backend)}
}

// Address returns the greeter address.
func (g *Greeter) Address() common.Address { return g.contract.Address() }

// Greet returns the stored greeting.
func (g *Greeter) Greet(opts *bind.CallOpts) (string, error) {
	var out []interface{}
	if err := g.contract.Call(opts, &out, "greet"); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// SetGreeting replaces the greeting.
func (g *Greeter) SetGreeting(opts *bind.TransactOpts, greeting string) (*types.Transaction, error) {
	return g.contract.RawTransact(opts, SetGreetingInput(greeting))
}

// Permitter is a binding around a deployed permitter.
type Permitter struct {
	contract *bind.BoundContract
}

// DeployPermitter deploys a permitter owned by opts.From.
func DeployPermitter(opts *bind.TransactOpts, backend bind.ContractBackend, target common.Address, sel types.Selector, args []byte) (common.Address, *types.Transaction, *Permitter, error) {
	address, tx, contract, err := bind.DeployContract(opts, permitterABI, PermitterCode(target, sel, args), backend)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return address, tx, &Permitter{contract: contract}, nil
}

// NewPermitter binds the permitter at address.
func NewPermitter(address common.Address, backend bind.ContractBackend) *Permitter {
	return &Permitter{contract: bind.NewBoundContract(address, permitterABI, backend, backend)}
}

// Address returns the permitter address.
func (p *Permitter) Address() common.Address { return p.contract.Address() }

// UpdateRefundableUser approves or revokes user.
func (p *Permitter) UpdateRefundableUser(opts *bind.TransactOpts, user common.Address, refundable bool) (*types.Transaction, error) {
	return p.contract.Transact(opts, "updateRefundableUser", user, refundable)
}

// IsApproved reports whether caller would be approved for a relay.
func (p *Permitter) IsApproved(opts *bind.CallOpts, caller, target common.Address, sel types.Selector, args []byte) (bool, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "isApproved", caller, target, [4]byte(sel), args); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}
