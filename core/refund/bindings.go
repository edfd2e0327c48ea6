// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// Go bindings for the refund contracts.

package refund

import (
	"math/big"

	"github.com/HITEYY/go-refunder/accounts/bind"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Refunder is a binding around a deployed refund vault.
type Refunder struct {
	contract *bind.BoundContract
}

// NewRefunder binds the vault at address.
func NewRefunder(address common.Address, backend bind.ContractBackend) *Refunder {
	return &Refunder{contract: bind.NewBoundContract(address, refunderABI, backend, backend)}
}

// DeployRefunder deploys a standalone vault owned by owner. It still has to be
// registered before its whitelist can be updated.
func DeployRefunder(opts *bind.TransactOpts, backend bind.ContractBackend, owner, registry common.Address) (common.Address, *types.Transaction, *Refunder, error) {
	address, tx, contract, err := bind.DeployContract(opts, refunderABI, StandaloneRefunderCode(owner, registry), backend)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return address, tx, &Refunder{contract: contract}, nil
}

// Address returns the vault address.
func (r *Refunder) Address() common.Address { return r.contract.Address() }

// Owner is a free data retrieval call binding the contract method 0x8da5cb5b.
func (r *Refunder) Owner(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "owner"); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// Registry returns the registry the vault reports to.
func (r *Refunder) Registry(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "registry"); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// GasPriceCap returns the highest gas price the vault refunds at.
func (r *Refunder) GasPriceCap(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "gasPriceCap"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Paused reports whether relaying is disabled.
func (r *Refunder) Paused(opts *bind.CallOpts) (bool, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "paused"); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// GetRefundable returns the whitelist record of (target, sel).
func (r *Refunder) GetRefundable(opts *bind.CallOpts, target common.Address, sel types.Selector) (Refundable, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getRefundable", target, [4]byte(sel)); err != nil {
		return Refundable{}, err
	}
	return Refundable{
		IsSupported:          *abi.ConvertType(out[0], new(bool)).(*bool),
		ValidatingContract:   *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		ValidatingIdentifier: types.Selector(*abi.ConvertType(out[2], new([4]byte)).(*[4]byte)),
	}, nil
}

// Init initialises an uninitialised vault.
func (r *Refunder) Init(opts *bind.TransactOpts, owner, registry common.Address) (*types.Transaction, error) {
	return r.contract.Transact(opts, "init", owner, registry)
}

// Deposit sends opts.Value to the vault.
func (r *Refunder) Deposit(opts *bind.TransactOpts) (*types.Transaction, error) {
	return r.contract.Transfer(opts)
}

// Withdraw moves amount from the vault to its owner.
func (r *Refunder) Withdraw(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "withdraw", amount)
}

// SetGasPriceCap sets the highest gas price the vault refunds at.
func (r *Refunder) SetGasPriceCap(opts *bind.TransactOpts, price *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "setGasPriceCap", price)
}

// UpdateRefundable upserts the whitelist record of (target, sel).
func (r *Refunder) UpdateRefundable(opts *bind.TransactOpts, target common.Address, sel types.Selector, enabled bool, validator common.Address, validatorSel types.Selector) (*types.Transaction, error) {
	return r.contract.Transact(opts, "updateRefundable", target, [4]byte(sel), enabled, validator, [4]byte(validatorSel))
}

// Pause disables relaying.
func (r *Refunder) Pause(opts *bind.TransactOpts) (*types.Transaction, error) {
	return r.contract.Transact(opts, "pause")
}

// Unpause enables relaying.
func (r *Refunder) Unpause(opts *bind.TransactOpts) (*types.Transaction, error) {
	return r.contract.Transact(opts, "unpause")
}

// RelayAndRefund calls sel on target with args and refunds the sender.
func (r *Refunder) RelayAndRefund(opts *bind.TransactOpts, target common.Address, sel types.Selector, args []byte) (*types.Transaction, error) {
	return r.contract.Transact(opts, "relayAndRefund", target, [4]byte(sel), args)
}

// RefunderDeposit represents a Deposit event raised by a vault.
type RefunderDeposit struct {
	Depositor common.Address
	Amount    *big.Int
	Raw       types.Log // Blockchain specific contextual infos
}

// ParseDeposit is a log parse operation binding the contract event Deposit.
func (r *Refunder) ParseDeposit(log types.Log) (*RefunderDeposit, error) {
	event := new(RefunderDeposit)
	if err := r.contract.UnpackLog(event, "Deposit", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// RefunderWithdraw represents a Withdraw event raised by a vault.
type RefunderWithdraw struct {
	Recipient common.Address
	Amount    *big.Int
	Raw       types.Log // Blockchain specific contextual infos
}

// ParseWithdraw is a log parse operation binding the contract event Withdraw.
func (r *Refunder) ParseWithdraw(log types.Log) (*RefunderWithdraw, error) {
	event := new(RefunderWithdraw)
	if err := r.contract.UnpackLog(event, "Withdraw", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// RefunderGasPriceChange represents a GasPriceChange event raised by a vault.
type RefunderGasPriceChange struct {
	NewGasPrice *big.Int
	Raw         types.Log // Blockchain specific contextual infos
}

// ParseGasPriceChange is a log parse operation binding the contract event GasPriceChange.
func (r *Refunder) ParseGasPriceChange(log types.Log) (*RefunderGasPriceChange, error) {
	event := new(RefunderGasPriceChange)
	if err := r.contract.UnpackLog(event, "GasPriceChange", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// RefunderRefundableUpdate represents a RefundableUpdate event raised by a vault.
type RefunderRefundableUpdate struct {
	Target               common.Address
	Identifier           [4]byte
	IsRefundable         bool
	ValidatingContract   common.Address
	ValidatingIdentifier [4]byte
	Raw                  types.Log // Blockchain specific contextual infos
}

// ParseRefundableUpdate is a log parse operation binding the contract event RefundableUpdate.
func (r *Refunder) ParseRefundableUpdate(log types.Log) (*RefunderRefundableUpdate, error) {
	event := new(RefunderRefundableUpdate)
	if err := r.contract.UnpackLog(event, "RefundableUpdate", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// RefunderRelayAndRefund represents a RelayAndRefund event raised by a vault.
type RefunderRelayAndRefund struct {
	Caller       common.Address
	Target       common.Address
	Identifier   [4]byte
	RefundAmount *big.Int
	Raw          types.Log // Blockchain specific contextual infos
}

// ParseRelayAndRefund is a log parse operation binding the contract event RelayAndRefund.
func (r *Refunder) ParseRelayAndRefund(log types.Log) (*RefunderRelayAndRefund, error) {
	event := new(RefunderRelayAndRefund)
	if err := r.contract.UnpackLog(event, "RelayAndRefund", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// Registry is a binding around a deployed refunder registry.
type Registry struct {
	contract *bind.BoundContract
}

// NewRegistry binds the registry at address.
func NewRegistry(address common.Address, backend bind.ContractBackend) *Registry {
	return &Registry{contract: bind.NewBoundContract(address, registryABI, backend, backend)}
}

// DeployRegistry deploys a new registry.
func DeployRegistry(opts *bind.TransactOpts, backend bind.ContractBackend) (common.Address, *types.Transaction, *Registry, error) {
	address, tx, contract, err := bind.DeployContract(opts, registryABI, RegistryCode(), backend)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return address, tx, &Registry{contract: contract}, nil
}

// Address returns the registry address.
func (r *Registry) Address() common.Address { return r.contract.Address() }

// Register records refunder with version.
func (r *Registry) Register(opts *bind.TransactOpts, refunder common.Address, version uint16) (*types.Transaction, error) {
	return r.contract.Transact(opts, "register", refunder, version)
}

// UpdateRefundable updates the index entry of the calling vault.
func (r *Registry) UpdateRefundable(opts *bind.TransactOpts, target common.Address, sel types.Selector, supported bool) (*types.Transaction, error) {
	return r.contract.Transact(opts, "updateRefundable", target, [4]byte(sel), supported)
}

// GetRefundersCount returns the number of registered vaults.
func (r *Registry) GetRefundersCount(opts *bind.CallOpts) (*big.Int, error) {
	return r.callBig(opts, "getRefundersCount")
}

// GetRefunder returns the registered vault at index.
func (r *Registry) GetRefunder(opts *bind.CallOpts, index *big.Int) (common.Address, error) {
	return r.callAddress(opts, "getRefunder", index)
}

// RefunderVersion returns the version refunder was registered with, zero if
// it is unknown.
func (r *Registry) RefunderVersion(opts *bind.CallOpts, refunder common.Address) (uint16, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "refunderVersion", refunder); err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint16)).(*uint16), nil
}

// RefundersFor returns the vaults currently refunding (target, sel).
func (r *Registry) RefundersFor(opts *bind.CallOpts, target common.Address, sel types.Selector) ([]common.Address, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "refundersFor", target, [4]byte(sel)); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address), nil
}

// GetRefunderCountFor returns the number of vaults refunding (target, sel).
func (r *Registry) GetRefunderCountFor(opts *bind.CallOpts, target common.Address, sel types.Selector) (*big.Int, error) {
	return r.callBig(opts, "getRefunderCountFor", target, [4]byte(sel))
}

// GetRefunderForAtIndex returns the index-th vault refunding (target, sel).
func (r *Registry) GetRefunderForAtIndex(opts *bind.CallOpts, target common.Address, sel types.Selector, index *big.Int) (common.Address, error) {
	return r.callAddress(opts, "getRefunderForAtIndex", target, [4]byte(sel), index)
}

func (r *Registry) callBig(opts *bind.CallOpts, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, method, params...); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (r *Registry) callAddress(opts *bind.CallOpts, method string, params ...interface{}) (common.Address, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, method, params...); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// Factory is a binding around a deployed refunder factory.
type Factory struct {
	contract *bind.BoundContract
}

// NewFactory binds the factory at address.
func NewFactory(address common.Address, backend bind.ContractBackend) *Factory {
	return &Factory{contract: bind.NewBoundContract(address, factoryABI, backend, backend)}
}

// DeployFactory deploys a factory bound to registry. The deployment also
// creates the master vault.
func DeployFactory(opts *bind.TransactOpts, backend bind.ContractBackend, registry common.Address) (common.Address, *types.Transaction, *Factory, error) {
	address, tx, contract, err := bind.DeployContract(opts, factoryABI, FactoryCode(registry), backend)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return address, tx, &Factory{contract: contract}, nil
}

// Address returns the factory address.
func (f *Factory) Address() common.Address { return f.contract.Address() }

// CreateRefunder provisions a vault owned by the sender.
func (f *Factory) CreateRefunder(opts *bind.TransactOpts) (*types.Transaction, error) {
	return f.contract.Transact(opts, "createRefunder")
}

// Registry returns the registry new vaults are registered with.
func (f *Factory) Registry(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	if err := f.contract.Call(opts, &out, "registry"); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// MasterRefunder returns the template vault clones delegate to.
func (f *Factory) MasterRefunder(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	if err := f.contract.Call(opts, &out, "masterRefunder"); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// FactoryRefunderCreated represents a RefunderCreated event raised by the factory.
type FactoryRefunderCreated struct {
	RefunderAddress common.Address
	Owner           common.Address
	Raw             types.Log // Blockchain specific contextual infos
}

// ParseRefunderCreated is a log parse operation binding the contract event RefunderCreated.
func (f *Factory) ParseRefunderCreated(log types.Log) (*FactoryRefunderCreated, error) {
	event := new(FactoryRefunderCreated)
	if err := f.contract.UnpackLog(event, "RefunderCreated", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// CreatedRefunder returns the vault announced in the logs of a createRefunder
// receipt.
func (f *Factory) CreatedRefunder(receipt *types.Receipt) (*FactoryRefunderCreated, error) {
	for _, l := range receipt.Logs {
		if l.Address != f.Address() {
			continue
		}
		if event, err := f.ParseRefunderCreated(*l); err == nil {
			return event, nil
		}
	}
	return nil, errRefunderCreatedNotFound
}
