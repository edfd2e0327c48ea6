// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package vm

import (
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// revertSelector is the selector of the standard Error(string) revert.
	revertSelector = crypto.Keccak256([]byte("Error(string)"))[:4]

	stringArgs = abi.Arguments{{Type: mustType("string")}}
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// RevertError is a failure that rolls back the frame's state changes but
// returns the unused gas to the caller. It unwraps to both
// ErrExecutionReverted and the named reason.
type RevertError struct {
	reason error
	data   []byte
}

// Revert wraps a named failure as a revert carrying Error(string) data.
func Revert(reason error) *RevertError {
	packed, err := stringArgs.Pack(reason.Error())
	if err != nil {
		panic(err)
	}
	return &RevertError{
		reason: reason,
		data:   append(append([]byte{}, revertSelector...), packed...),
	}
}

func (e *RevertError) Error() string {
	return ErrExecutionReverted.Error() + ": " + e.reason.Error()
}

func (e *RevertError) Unwrap() []error {
	return []error{ErrExecutionReverted, e.reason}
}

// Reason returns the named failure behind the revert.
func (e *RevertError) Reason() error {
	return e.reason
}

// Data returns the ABI encoded revert data.
func (e *RevertError) Data() []byte {
	return e.data
}

// RevertData returns the revert data carried by err, nil if err is not a
// revert.
func RevertData(err error) []byte {
	var rerr *RevertError
	if errors.As(err, &rerr) {
		return rerr.Data()
	}
	return nil
}

// RevertReason decodes the message of an Error(string) revert payload.
func RevertReason(data []byte) (string, bool) {
	reason, err := abi.UnpackRevert(data)
	if err != nil {
		return "", false
	}
	return reason, true
}
