// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// Native contracts are Go implementations bound to an address through a short
// code marker. Minimal proxies (EIP-1167) let many accounts share one native
// implementation while keeping their own storage and balance.

package vm

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// NativeCodePrefix is the first byte of every native code marker. 0xef is
// reserved by EIP-3541 so no EVM deployment can produce it.
const NativeCodePrefix byte = 0xef

var (
	cloneCodeHead = common.FromHex("0x363d3d373d3d3d363d73")
	cloneCodeTail = common.FromHex("0x5af43d82803e903d91602b57fd5bf3")
)

// CloneCodeLength is the size of an EIP-1167 minimal proxy.
var CloneCodeLength = len(cloneCodeHead) + common.AddressLength + len(cloneCodeTail)

// NativeContract is the executable logic of a native contract. Implementations
// keep no state of their own: everything lives in the storage of the account
// the scope executes on.
type NativeContract interface {
	Run(scope *Scope, input []byte) ([]byte, error)
}

// Constructor is implemented by native contracts that need to initialise
// storage on deployment.
type Constructor interface {
	Construct(scope *Scope, args []byte) error
}

// Natives maps a marker name to its implementation.
type Natives map[string]NativeContract

// MergeNatives combines several sets. Later sets win on name clashes.
func MergeNatives(sets ...Natives) Natives {
	merged := make(Natives)
	for _, set := range sets {
		for name, contract := range set {
			merged[name] = contract
		}
	}
	return merged
}

// NativeCode returns the deployment code for the native contract called name,
// followed by its constructor arguments.
func NativeCode(name string, args []byte) []byte {
	if len(name) == 0 || len(name) > 0xff {
		panic(fmt.Sprintf("invalid native contract name %q", name))
	}
	code := make([]byte, 0, 2+len(name)+len(args))
	code = append(code, NativeCodePrefix, byte(len(name)))
	code = append(code, name...)
	return append(code, args...)
}

// ParseNativeCode splits a native code marker into its name and trailing
// constructor arguments.
func ParseNativeCode(code []byte) (string, []byte, error) {
	if len(code) < 2 || code[0] != NativeCodePrefix {
		return "", nil, ErrInvalidCode
	}
	size := int(code[1])
	if size == 0 || len(code) < 2+size {
		return "", nil, ErrInvalidCode
	}
	return string(code[2 : 2+size]), code[2+size:], nil
}

// CloneCode returns the EIP-1167 minimal proxy delegating to target.
func CloneCode(target common.Address) []byte {
	code := make([]byte, 0, CloneCodeLength)
	code = append(code, cloneCodeHead...)
	code = append(code, target.Bytes()...)
	return append(code, cloneCodeTail...)
}

// ParseCloneCode returns the implementation address if code is a minimal proxy.
func ParseCloneCode(code []byte) (common.Address, bool) {
	if len(code) != CloneCodeLength ||
		!bytes.HasPrefix(code, cloneCodeHead) ||
		!bytes.HasSuffix(code, cloneCodeTail) {
		return common.Address{}, false
	}
	return common.BytesToAddress(code[len(cloneCodeHead) : len(cloneCodeHead)+common.AddressLength]), true
}
