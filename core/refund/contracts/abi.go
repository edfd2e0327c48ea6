// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// GreeterABI is the input ABI used to call the greeter.
const GreeterABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"greeting","type":"string"},{"name":"reentrySelector","type":"bytes4"},{"name":"reentryArgs","type":"bytes"}]},
	{"type":"function","name":"greet","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"setGreeting","stateMutability":"nonpayable","inputs":[{"name":"greeting","type":"string"}],"outputs":[]},
	{"type":"function","name":"greetReentry","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

// PermitterABI is the input ABI used to call the permitter.
const PermitterABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"},{"name":"arguments","type":"bytes"}]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"refundableUsers","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"updateRefundableUser","stateMutability":"nonpayable","inputs":[{"name":"user","type":"address"},{"name":"refundable","type":"bool"}],"outputs":[]},
	{"type":"function","name":"isApproved","stateMutability":"view","inputs":[{"name":"caller","type":"address"},{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"},{"name":"arguments","type":"bytes"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"throwError","stateMutability":"view","inputs":[{"name":"caller","type":"address"},{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"},{"name":"arguments","type":"bytes"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"reentry","stateMutability":"nonpayable","inputs":[{"name":"caller","type":"address"},{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"},{"name":"arguments","type":"bytes"}],"outputs":[{"name":"","type":"bool"}]}
]`

var (
	greeterABI   = mustParseABI(GreeterABI)
	permitterABI = mustParseABI(PermitterABI)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}
