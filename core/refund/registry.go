// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package refund

import (
	"math/big"

	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// registryNative indexes refund vaults and the (target, selector) pairs each
// of them currently refunds.
type registryNative struct{}

func (registryNative) Run(scope *vm.Scope, input []byte) ([]byte, error) {
	method, args, err := decodeCall(&registryABI, scope, input)
	if err != nil {
		return nil, err
	}
	r := &registry{scope: scope}
	switch method.Name {
	case "register":
		return nil, r.register(args[0].(common.Address), args[1].(uint16))
	case "updateRefundable":
		return nil, r.updateRefundable(args[0].(common.Address), types.Selector(args[1].([4]byte)), args[2].(bool))

	case "getRefundersCount":
		n, err := scope.GetUint(registryRefundersSlot)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(n.ToBig())
	case "getRefunder":
		addr, err := r.refunderAt(args[0].(*big.Int))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(addr)
	case "refunderVersion":
		version, err := r.version(args[0].(common.Address))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(version)
	case "refundersFor":
		values, err := r.index(args[0].(common.Address), types.Selector(args[1].([4]byte))).Values()
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(values)
	case "getRefunderCountFor":
		n, err := r.index(args[0].(common.Address), types.Selector(args[1].([4]byte))).Len()
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(new(big.Int).SetUint64(n))
	case "getRefunderForAtIndex":
		set := r.index(args[0].(common.Address), types.Selector(args[1].([4]byte)))
		addr, err := at(set.Len, set.At, args[2].(*big.Int))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(addr)
	}
	return nil, vm.Revert(ErrUnknownMethod)
}

// registry executes the registry operations against its storage.
type registry struct {
	scope *vm.Scope
}

func (r *registry) version(addr common.Address) (uint16, error) {
	v, err := r.scope.GetUint(vm.MappingSlot(registryVersionSlot, vm.AddressKey(addr)))
	if err != nil {
		return 0, err
	}
	return uint16(v.Uint64()), nil
}

func (r *registry) register(refunder common.Address, version uint16) error {
	if version == 0 {
		return vm.Revert(ErrInvalidVersion)
	}
	current, err := r.version(refunder)
	if err != nil {
		return err
	}
	if current != 0 {
		return vm.Revert(ErrAlreadyRegistered)
	}
	n, err := r.scope.GetUint(registryRefundersSlot)
	if err != nil {
		return err
	}
	if err := r.scope.SetAddress(vm.ArraySlot(registryRefundersSlot, n.Uint64()), refunder); err != nil {
		return err
	}
	if err := r.scope.SetUint(registryRefundersSlot, new(uint256.Int).AddUint64(n, 1)); err != nil {
		return err
	}
	return r.scope.SetUint(vm.MappingSlot(registryVersionSlot, vm.AddressKey(refunder)), uint256.NewInt(uint64(version)))
}

func (r *registry) refunderAt(index *big.Int) (common.Address, error) {
	length := func() (uint64, error) {
		n, err := r.scope.GetUint(registryRefundersSlot)
		if err != nil {
			return 0, err
		}
		return n.Uint64(), nil
	}
	get := func(i uint64) (common.Address, error) {
		return r.scope.GetAddress(vm.ArraySlot(registryRefundersSlot, i))
	}
	return at(length, get, index)
}

// at reads element index of a list after checking it is in range.
func at(length func() (uint64, error), get func(uint64) (common.Address, error), index *big.Int) (common.Address, error) {
	n, err := length()
	if err != nil {
		return common.Address{}, err
	}
	if !index.IsUint64() || index.Uint64() >= n {
		return common.Address{}, vm.Revert(ErrInvalidRefunderIndex)
	}
	return get(index.Uint64())
}

// index returns the set of vaults refunding (target, sel).
func (r *registry) index(target common.Address, sel types.Selector) *addressSet {
	base := vm.MappingSlot(vm.MappingSlot(registryIndexSlot, vm.AddressKey(target)), vm.SelectorKey(sel))
	return newAddressSet(r.scope, base)
}

// updateRefundable mirrors the supported flag of the calling vault into the
// index. Only registered vaults may call it.
func (r *registry) updateRefundable(target common.Address, sel types.Selector, supported bool) error {
	caller := r.scope.Caller()
	version, err := r.version(caller)
	if err != nil {
		return err
	}
	if version == 0 {
		return vm.Revert(ErrRefunderNotACaller)
	}
	set := r.index(target, sel)
	if supported {
		_, err = set.Add(caller)
	} else {
		_, err = set.Remove(caller)
	}
	return err
}
