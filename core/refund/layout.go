// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package refund

import (
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Storage slots of a refund vault.
var (
	refunderOwnerSlot       = vm.Slot(0)
	refunderRegistrySlot    = vm.Slot(1)
	refunderGasPriceCapSlot = vm.Slot(2)
	refunderPausedSlot      = vm.Slot(3)
	refunderRefundablesSlot = vm.Slot(4) // mapping(address => mapping(bytes4 => record))
)

// Storage slots of the registry.
var (
	registryRefundersSlot = vm.Slot(0) // address[]
	registryVersionSlot   = vm.Slot(1) // mapping(address => uint16)
	registryIndexSlot     = vm.Slot(2) // mapping(address => mapping(bytes4 => addressSet))
)

// Storage slots of the factory.
var (
	factoryRegistrySlot = vm.Slot(0)
	factoryMasterSlot   = vm.Slot(1)
)

// refundableSlot returns the slot holding the packed record of a pair.
func refundableSlot(target common.Address, sel types.Selector) common.Hash {
	return vm.MappingSlot(vm.MappingSlot(refunderRefundablesSlot, vm.AddressKey(target)), vm.SelectorKey(sel))
}

// Refundable is the whitelist record of a (target, selector) pair.
type Refundable struct {
	IsSupported          bool
	ValidatingContract   common.Address
	ValidatingIdentifier types.Selector
}

// HasValidator reports whether relays of the pair must be approved.
func (r Refundable) HasValidator() bool {
	return r.ValidatingContract != (common.Address{})
}

// pack lays the record out in one word, right aligned:
// [isSupported:1][validatingContract:20][validatingIdentifier:4].
func (r Refundable) pack() common.Hash {
	var word common.Hash
	off := common.HashLength - types.SelectorLength
	copy(word[off:], r.ValidatingIdentifier[:])
	off -= common.AddressLength
	copy(word[off:], r.ValidatingContract[:])
	if r.IsSupported {
		word[off-1] = 1
	}
	return word
}

func unpackRefundable(word common.Hash) Refundable {
	off := common.HashLength - types.SelectorLength
	r := Refundable{ValidatingIdentifier: types.BytesToSelector(word[off:])}
	off -= common.AddressLength
	r.ValidatingContract = common.BytesToAddress(word[off : off+common.AddressLength])
	r.IsSupported = word[off-1] != 0
	return r
}

// addressSet is an enumerable set of addresses in storage. The values array
// lives at the base slot and the 1-based position map at base+1. Removal
// moves the last element into the freed position.
type addressSet struct {
	scope *vm.Scope
	base  common.Hash
}

func newAddressSet(scope *vm.Scope, base common.Hash) *addressSet {
	return &addressSet{scope: scope, base: base}
}

func (s *addressSet) positionSlot(addr common.Address) common.Hash {
	return vm.MappingSlot(vm.OffsetSlot(s.base, 1), vm.AddressKey(addr))
}

// Len returns the number of members.
func (s *addressSet) Len() (uint64, error) {
	n, err := s.scope.GetUint(s.base)
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// At returns the member at index i. The caller checks the bounds.
func (s *addressSet) At(i uint64) (common.Address, error) {
	return s.scope.GetAddress(vm.ArraySlot(s.base, i))
}

// Contains reports whether addr is a member.
func (s *addressSet) Contains(addr common.Address) (bool, error) {
	pos, err := s.scope.GetUint(s.positionSlot(addr))
	if err != nil {
		return false, err
	}
	return !pos.IsZero(), nil
}

// Values returns all members in storage order.
func (s *addressSet) Values() ([]common.Address, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	values := make([]common.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		addr, err := s.At(i)
		if err != nil {
			return nil, err
		}
		values = append(values, addr)
	}
	return values, nil
}

// Add inserts addr and reports whether it was absent.
func (s *addressSet) Add(addr common.Address) (bool, error) {
	if ok, err := s.Contains(addr); err != nil || ok {
		return false, err
	}
	n, err := s.Len()
	if err != nil {
		return false, err
	}
	if err := s.scope.SetAddress(vm.ArraySlot(s.base, n), addr); err != nil {
		return false, err
	}
	if err := s.scope.SetUint(s.base, uint256.NewInt(n+1)); err != nil {
		return false, err
	}
	return true, s.scope.SetUint(s.positionSlot(addr), uint256.NewInt(n+1))
}

// Remove deletes addr and reports whether it was present.
func (s *addressSet) Remove(addr common.Address) (bool, error) {
	pos, err := s.scope.GetUint(s.positionSlot(addr))
	if err != nil || pos.IsZero() {
		return false, err
	}
	n, err := s.Len()
	if err != nil {
		return false, err
	}
	idx, last := pos.Uint64()-1, n-1
	if idx != last {
		moved, err := s.At(last)
		if err != nil {
			return false, err
		}
		if err := s.scope.SetAddress(vm.ArraySlot(s.base, idx), moved); err != nil {
			return false, err
		}
		if err := s.scope.SetUint(s.positionSlot(moved), uint256.NewInt(idx+1)); err != nil {
			return false, err
		}
	}
	if err := s.scope.SetState(vm.ArraySlot(s.base, last), common.Hash{}); err != nil {
		return false, err
	}
	if err := s.scope.SetUint(s.base, uint256.NewInt(last)); err != nil {
		return false, err
	}
	return true, s.scope.SetState(s.positionSlot(addr), common.Hash{})
}
