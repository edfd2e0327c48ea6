// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package refund

import (
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/ethereum/go-ethereum/common"
)

// Native contract names used in code markers.
const (
	RefunderName = "Refunder"
	RegistryName = "Registry"
	FactoryName  = "Factory"
)

// Natives is the set of refund contracts a chain must run.
var Natives = vm.Natives{
	RefunderName: refunderNative{},
	RegistryName: registryNative{},
	FactoryName:  factoryNative{},
}

// RefunderCode returns the deployment code of an uninitialised vault, as used
// for the factory's master template.
func RefunderCode() []byte {
	return vm.NativeCode(RefunderName, nil)
}

// StandaloneRefunderCode returns the deployment code of a vault initialised
// with the given owner and registry.
func StandaloneRefunderCode(owner, registry common.Address) []byte {
	args, err := refunderABI.Methods["init"].Inputs.Pack(owner, registry)
	if err != nil {
		panic(err)
	}
	return vm.NativeCode(RefunderName, args)
}

// RegistryCode returns the deployment code of a registry.
func RegistryCode() []byte {
	return vm.NativeCode(RegistryName, nil)
}

// FactoryCode returns the deployment code of a factory bound to registry.
func FactoryCode(registry common.Address) []byte {
	args, err := factoryABI.Pack("", registry)
	if err != nil {
		panic(err)
	}
	return vm.NativeCode(FactoryName, args)
}
