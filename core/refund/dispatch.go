// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package refund

import (
	"errors"

	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNonPayable is returned when value is sent to a method that does not
// accept it.
var ErrNonPayable = errors.New("non-payable method")

// decodeCall resolves the method addressed by input and unpacks its
// arguments.
func decodeCall(contract *abi.ABI, scope *vm.Scope, input []byte) (*abi.Method, []interface{}, error) {
	if len(input) < 4 {
		return nil, nil, vm.Revert(ErrUnknownMethod)
	}
	method, err := contract.MethodById(input[:4])
	if err != nil {
		return nil, nil, vm.Revert(ErrUnknownMethod)
	}
	if !method.IsPayable() && !scope.Value().IsZero() {
		return nil, nil, vm.Revert(ErrNonPayable)
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, nil, vm.Revert(ErrInvalidArguments)
	}
	return method, args, nil
}

// emit logs the named event. Indexed arguments become topics, the rest is
// ABI encoded into the data.
func emit(scope *vm.Scope, contract *abi.ABI, name string, args ...interface{}) error {
	event := contract.Events[name]
	var (
		indexed []interface{}
		data    []interface{}
	)
	for i, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, args[i])
		} else {
			data = append(data, args[i])
		}
	}
	topics := []common.Hash{event.ID}
	for _, arg := range indexed {
		rule, err := abi.MakeTopics([]interface{}{arg})
		if err != nil {
			return err
		}
		topics = append(topics, rule[0][0])
	}
	packed, err := event.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return err
	}
	return scope.Emit(topics, packed)
}
