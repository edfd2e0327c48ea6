// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package contracts

import (
	"github.com/HITEYY/go-refunder/core/refund"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
)

// MaxGreetingLength is the longest greeting setGreeting accepts.
const MaxGreetingLength = 32

var (
	greeterGreetingSlot    = vm.Slot(0)
	greeterReentrySelSlot  = vm.Slot(1)
	greeterReentryArgsSlot = vm.Slot(2)
)

// greeterNative is a relay target. setGreeting takes the forwarded bytes
// verbatim as the new greeting; greetReentry tries to relay through the vault
// that called it.
type greeterNative struct{}

func (greeterNative) Construct(scope *vm.Scope, args []byte) error {
	vals, err := greeterABI.Constructor.Inputs.Unpack(args)
	if err != nil {
		return vm.Revert(ErrInvalidArgs)
	}
	if err := scope.SetBytes(greeterGreetingSlot, []byte(vals[0].(string))); err != nil {
		return err
	}
	sel := vals[1].([4]byte)
	if err := scope.SetState(greeterReentrySelSlot, vm.SelectorKey(sel)); err != nil {
		return err
	}
	return scope.SetBytes(greeterReentryArgsSlot, vals[2].([]byte))
}

func (greeterNative) Run(scope *vm.Scope, input []byte) ([]byte, error) {
	if len(input) < types.SelectorLength {
		return nil, vm.Revert(ErrUnknownMethod)
	}
	method, err := greeterABI.MethodById(input[:types.SelectorLength])
	if err != nil {
		return nil, vm.Revert(ErrUnknownMethod)
	}
	switch method.Name {
	case "greet":
		greeting, err := scope.GetBytes(greeterGreetingSlot)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(string(greeting))

	case "setGreeting":
		greeting := input[types.SelectorLength:]
		if len(greeting) > MaxGreetingLength {
			return nil, vm.Revert(ErrGreetingTooLong)
		}
		return nil, scope.SetBytes(greeterGreetingSlot, greeting)

	case "greetReentry":
		word, err := scope.GetState(greeterReentrySelSlot)
		if err != nil {
			return nil, err
		}
		args, err := scope.GetBytes(greeterReentryArgsSlot)
		if err != nil {
			return nil, err
		}
		relay := refund.ParsedRefunderABI()
		call, err := relay.Pack("relayAndRefund", scope.Address(), [4]byte(word[:4]), args)
		if err != nil {
			return nil, err
		}
		_, err = scope.Call(scope.Caller(), call, nil)
		return nil, err
	}
	return nil, vm.Revert(ErrUnknownMethod)
}

// GreeterCode returns the deployment code of a greeter.
func GreeterCode(greeting string, reentrySel types.Selector, reentryArgs []byte) []byte {
	args, err := greeterABI.Pack("", greeting, [4]byte(reentrySel), reentryArgs)
	if err != nil {
		panic(err)
	}
	return vm.NativeCode(GreeterName, args)
}

// SetGreetingInput returns the call data of setGreeting(greeting). The text is
// appended raw, not ABI encoded.
func SetGreetingInput(greeting string) []byte {
	sel := types.SelectorFromSig("setGreeting(string)")
	return append(sel.Bytes(), greeting...)
}
