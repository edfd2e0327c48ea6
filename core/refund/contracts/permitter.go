// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package contracts

import (
	"github.com/HITEYY/go-refunder/core/refund"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/ethereum/go-ethereum/common"
)

var (
	permitterOwnerSlot      = vm.Slot(0)
	permitterTargetSlot     = vm.Slot(1)
	permitterSelectorSlot   = vm.Slot(2)
	permitterArgsSlot       = vm.Slot(3)
	permitterRefundableSlot = vm.Slot(4) // mapping(address => bool)
)

// permitterNative is a validating contract. isApproved approves callers the
// owner whitelisted, throwError always fails and reentry relays
// (target, identifier, arguments) back through the vault that asked.
type permitterNative struct{}

func (permitterNative) Construct(scope *vm.Scope, args []byte) error {
	vals, err := permitterABI.Constructor.Inputs.Unpack(args)
	if err != nil {
		return vm.Revert(ErrInvalidArgs)
	}
	if err := scope.SetAddress(permitterOwnerSlot, scope.Caller()); err != nil {
		return err
	}
	if err := scope.SetAddress(permitterTargetSlot, vals[0].(common.Address)); err != nil {
		return err
	}
	if err := scope.SetState(permitterSelectorSlot, vm.SelectorKey(vals[1].([4]byte))); err != nil {
		return err
	}
	return scope.SetBytes(permitterArgsSlot, vals[2].([]byte))
}

func (permitterNative) Run(scope *vm.Scope, input []byte) ([]byte, error) {
	if len(input) < types.SelectorLength {
		return nil, vm.Revert(ErrUnknownMethod)
	}
	method, err := permitterABI.MethodById(input[:types.SelectorLength])
	if err != nil {
		return nil, vm.Revert(ErrUnknownMethod)
	}
	args, err := method.Inputs.Unpack(input[types.SelectorLength:])
	if err != nil {
		return nil, vm.Revert(ErrInvalidArgs)
	}
	switch method.Name {
	case "owner":
		owner, err := scope.GetAddress(permitterOwnerSlot)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(owner)

	case "refundableUsers", "isApproved":
		ok, err := scope.GetBool(userSlot(args[0].(common.Address)))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(ok)

	case "updateRefundableUser":
		owner, err := scope.GetAddress(permitterOwnerSlot)
		if err != nil {
			return nil, err
		}
		if scope.Caller() != owner {
			return nil, vm.Revert(ErrNotOwner)
		}
		return nil, scope.SetBool(userSlot(args[0].(common.Address)), args[1].(bool))

	case "throwError":
		return nil, vm.Revert(ErrValidatorError)

	case "reentry":
		target, err := scope.GetAddress(permitterTargetSlot)
		if err != nil {
			return nil, err
		}
		word, err := scope.GetState(permitterSelectorSlot)
		if err != nil {
			return nil, err
		}
		relayArgs, err := scope.GetBytes(permitterArgsSlot)
		if err != nil {
			return nil, err
		}
		relay := refund.ParsedRefunderABI()
		call, err := relay.Pack("relayAndRefund", target, [4]byte(word[:4]), relayArgs)
		if err != nil {
			return nil, err
		}
		if _, err := scope.Call(scope.Caller(), call, nil); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	}
	return nil, vm.Revert(ErrUnknownMethod)
}

func userSlot(user common.Address) common.Hash {
	return vm.MappingSlot(permitterRefundableSlot, vm.AddressKey(user))
}

// PermitterCode returns the deployment code of a permitter whose reentry
// relays (target, sel, args).
func PermitterCode(target common.Address, sel types.Selector, args []byte) []byte {
	packed, err := permitterABI.Pack("", target, [4]byte(sel), args)
	if err != nil {
		panic(err)
	}
	return vm.NativeCode(PermitterName, packed)
}
