// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package refund

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// RefunderABI is the input ABI used to call and decode refund vaults.
const RefunderABI = `[
	{"type":"function","name":"init","stateMutability":"nonpayable","inputs":[{"name":"owner","type":"address"},{"name":"registry","type":"address"}],"outputs":[]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"setGasPriceCap","stateMutability":"nonpayable","inputs":[{"name":"gasPrice","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"updateRefundable","stateMutability":"nonpayable","inputs":[{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"},{"name":"isRefundable","type":"bool"},{"name":"validatingContract","type":"address"},{"name":"validatingIdentifier","type":"bytes4"}],"outputs":[]},
	{"type":"function","name":"pause","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"unpause","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"relayAndRefund","stateMutability":"nonpayable","inputs":[{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"},{"name":"arguments","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"gasPriceCap","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"paused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"registry","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getRefundable","stateMutability":"view","inputs":[{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"}],"outputs":[{"name":"isSupported","type":"bool"},{"name":"validatingContract","type":"address"},{"name":"validatingIdentifier","type":"bytes4"}]},
	{"type":"receive","stateMutability":"payable"},
	{"type":"event","name":"Deposit","anonymous":false,"inputs":[{"name":"depositor","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"Withdraw","anonymous":false,"inputs":[{"name":"recipient","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"GasPriceChange","anonymous":false,"inputs":[{"name":"newGasPrice","type":"uint256","indexed":false}]},
	{"type":"event","name":"RefundableUpdate","anonymous":false,"inputs":[{"name":"target","type":"address","indexed":true},{"name":"identifier","type":"bytes4","indexed":false},{"name":"isRefundable","type":"bool","indexed":false},{"name":"validatingContract","type":"address","indexed":false},{"name":"validatingIdentifier","type":"bytes4","indexed":false}]},
	{"type":"event","name":"RelayAndRefund","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"target","type":"address","indexed":true},{"name":"identifier","type":"bytes4","indexed":false},{"name":"refundAmount","type":"uint256","indexed":false}]}
]`

// RegistryABI is the input ABI used to call the refunder registry.
const RegistryABI = `[
	{"type":"function","name":"register","stateMutability":"nonpayable","inputs":[{"name":"refunder","type":"address"},{"name":"version","type":"uint16"}],"outputs":[]},
	{"type":"function","name":"getRefundersCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getRefunder","stateMutability":"view","inputs":[{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"refunderVersion","stateMutability":"view","inputs":[{"name":"refunder","type":"address"}],"outputs":[{"name":"","type":"uint16"}]},
	{"type":"function","name":"updateRefundable","stateMutability":"nonpayable","inputs":[{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"},{"name":"supported","type":"bool"}],"outputs":[]},
	{"type":"function","name":"refundersFor","stateMutability":"view","inputs":[{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"}],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"getRefunderCountFor","stateMutability":"view","inputs":[{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getRefunderForAtIndex","stateMutability":"view","inputs":[{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"},{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"address"}]}
]`

// FactoryABI is the input ABI used to call the refunder factory.
const FactoryABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"registry","type":"address"}]},
	{"type":"function","name":"createRefunder","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"registry","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"masterRefunder","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"event","name":"RefunderCreated","anonymous":false,"inputs":[{"name":"refunderAddress","type":"address","indexed":true},{"name":"owner","type":"address","indexed":true}]}
]`

// ValidatorABI describes the call a vault makes to a validating contract. The
// function name is irrelevant: the vault invokes the stored selector.
const ValidatorABI = `[
	{"type":"function","name":"validate","stateMutability":"view","inputs":[{"name":"caller","type":"address"},{"name":"target","type":"address"},{"name":"identifier","type":"bytes4"},{"name":"arguments","type":"bytes"}],"outputs":[{"name":"","type":"bool"}]}
]`

var (
	refunderABI  = mustParseABI(RefunderABI)
	registryABI  = mustParseABI(RegistryABI)
	factoryABI   = mustParseABI(FactoryABI)
	validatorABI = mustParseABI(ValidatorABI)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ParsedRefunderABI returns the parsed vault ABI.
func ParsedRefunderABI() abi.ABI { return refunderABI }

// ParsedRegistryABI returns the parsed registry ABI.
func ParsedRegistryABI() abi.ABI { return registryABI }

// ParsedFactoryABI returns the parsed factory ABI.
func ParsedFactoryABI() abi.ABI { return factoryABI }
