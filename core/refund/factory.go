// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package refund

import (
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// factoryNative provisions refund vaults as minimal proxies of one master
// vault and registers them.
type factoryNative struct{}

// Construct stores the registry and deploys the master vault.
func (factoryNative) Construct(scope *vm.Scope, args []byte) error {
	vals, err := factoryABI.Constructor.Inputs.Unpack(args)
	if err != nil {
		return vm.Revert(ErrInvalidArguments)
	}
	if err := scope.SetAddress(factoryRegistrySlot, vals[0].(common.Address)); err != nil {
		return err
	}
	master, err := scope.Create(RefunderCode(), nil)
	if err != nil {
		return err
	}
	return scope.SetAddress(factoryMasterSlot, master)
}

func (factoryNative) Run(scope *vm.Scope, input []byte) ([]byte, error) {
	method, _, err := decodeCall(&factoryABI, scope, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "createRefunder":
		clone, err := createRefunder(scope)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(clone)
	case "registry":
		registry, err := scope.GetAddress(factoryRegistrySlot)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(registry)
	case "masterRefunder":
		master, err := scope.GetAddress(factoryMasterSlot)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(master)
	}
	return nil, vm.Revert(ErrUnknownMethod)
}

// createRefunder deploys a clone of the master vault owned by the caller and
// registers it.
func createRefunder(scope *vm.Scope) (common.Address, error) {
	master, err := scope.GetAddress(factoryMasterSlot)
	if err != nil {
		return common.Address{}, err
	}
	registry, err := scope.GetAddress(factoryRegistrySlot)
	if err != nil {
		return common.Address{}, err
	}
	clone, err := scope.Create(vm.CloneCode(master), nil)
	if err != nil {
		return common.Address{}, err
	}
	owner := scope.Caller()

	input, err := refunderABI.Pack("init", owner, registry)
	if err != nil {
		return common.Address{}, err
	}
	if _, err := scope.Call(clone, input, nil); err != nil {
		return common.Address{}, err
	}
	input, err = registryABI.Pack("register", clone, params.RefunderVersion)
	if err != nil {
		return common.Address{}, err
	}
	if _, err := scope.Call(registry, input, nil); err != nil {
		return common.Address{}, err
	}
	if err := emit(scope, &factoryABI, "RefunderCreated", clone, owner); err != nil {
		return common.Address{}, err
	}
	log.Debug("Created refunder", "address", clone, "owner", owner, "master", master)
	return clone, nil
}
