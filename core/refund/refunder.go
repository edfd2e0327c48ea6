// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// Refund vault: holds native value and reimburses callers who relay
// whitelisted (target, selector) calls.

package refund

import (
	"math/big"

	"github.com/HITEYY/go-refunder/core"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// RelaySettlementGas is the gas a relay spends after the refund amount is
// fixed: the stipend-only transfer to an account without code and the
// RelayAndRefund log (three topics, two data words). It is included in the
// refund.
const RelaySettlementGas = params.CallGas + params.CallValueTransferGas - params.CallStipend +
	params.LogGas + 3*params.LogTopicGas + 2*32*params.LogDataGas

// refunderNative is the code of every refund vault, shared by the master
// template and its clones.
type refunderNative struct{}

// Construct optionally initialises a standalone vault with (owner, registry).
func (refunderNative) Construct(scope *vm.Scope, args []byte) error {
	if len(args) == 0 {
		return nil
	}
	vals, err := refunderABI.Methods["init"].Inputs.Unpack(args)
	if err != nil {
		return vm.Revert(ErrInvalidArguments)
	}
	return (&vault{scope: scope}).init(vals[0].(common.Address), vals[1].(common.Address))
}

func (refunderNative) Run(scope *vm.Scope, input []byte) ([]byte, error) {
	v := &vault{scope: scope}
	if len(input) == 0 {
		return nil, v.receive()
	}
	method, args, err := decodeCall(&refunderABI, scope, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "init":
		return nil, v.init(args[0].(common.Address), args[1].(common.Address))
	case "withdraw":
		return nil, v.withdraw(args[0].(*big.Int))
	case "setGasPriceCap":
		return nil, v.setGasPriceCap(args[0].(*big.Int))
	case "updateRefundable":
		return nil, v.updateRefundable(
			args[0].(common.Address),
			types.Selector(args[1].([4]byte)),
			args[2].(bool),
			args[3].(common.Address),
			types.Selector(args[4].([4]byte)),
		)
	case "pause":
		return nil, v.setPaused(true)
	case "unpause":
		return nil, v.setPaused(false)
	case "relayAndRefund":
		return nil, v.relayAndRefund(input, args[0].(common.Address), types.Selector(args[1].([4]byte)), args[2].([]byte))

	case "owner":
		owner, err := scope.GetAddress(refunderOwnerSlot)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(owner)
	case "registry":
		registry, err := scope.GetAddress(refunderRegistrySlot)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(registry)
	case "gasPriceCap":
		price, err := scope.GetUint(refunderGasPriceCapSlot)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(price.ToBig())
	case "paused":
		paused, err := scope.GetBool(refunderPausedSlot)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(paused)
	case "getRefundable":
		r, err := v.refundable(args[0].(common.Address), types.Selector(args[1].([4]byte)))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(r.IsSupported, r.ValidatingContract, [4]byte(r.ValidatingIdentifier))
	}
	return nil, vm.Revert(ErrUnknownMethod)
}

// vault executes the vault operations against the storage of one account.
type vault struct {
	scope *vm.Scope
}

func (v *vault) receive() error {
	return emit(v.scope, &refunderABI, "Deposit", v.scope.Caller(), v.scope.Value().ToBig())
}

func (v *vault) init(owner, registry common.Address) error {
	current, err := v.scope.GetAddress(refunderOwnerSlot)
	if err != nil {
		return err
	}
	if current != (common.Address{}) {
		return vm.Revert(ErrAlreadyInitialized)
	}
	if owner == (common.Address{}) {
		return vm.Revert(ErrInvalidArguments)
	}
	if err := v.scope.SetAddress(refunderOwnerSlot, owner); err != nil {
		return err
	}
	return v.scope.SetAddress(refunderRegistrySlot, registry)
}

// onlyOwner fails unless the caller owns the vault.
func (v *vault) onlyOwner() (common.Address, error) {
	owner, err := v.scope.GetAddress(refunderOwnerSlot)
	if err != nil {
		return common.Address{}, err
	}
	if v.scope.Caller() != owner {
		return common.Address{}, vm.Revert(ErrNotAnOwner)
	}
	return owner, nil
}

func (v *vault) withdraw(amount *big.Int) error {
	owner, err := v.onlyOwner()
	if err != nil {
		return err
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return vm.Revert(ErrInsufficientBalance)
	}
	balance, err := v.scope.SelfBalance()
	if err != nil {
		return err
	}
	if value.Gt(balance) {
		return vm.Revert(ErrInsufficientBalance)
	}
	if err := v.scope.Transfer(owner, value); err != nil {
		return vm.Revert(ErrWithdrawTransferFailed)
	}
	return emit(v.scope, &refunderABI, "Withdraw", owner, amount)
}

func (v *vault) setGasPriceCap(price *big.Int) error {
	if _, err := v.onlyOwner(); err != nil {
		return err
	}
	value, overflow := uint256.FromBig(price)
	if overflow {
		return vm.Revert(ErrInvalidArguments)
	}
	if err := v.scope.SetUint(refunderGasPriceCapSlot, value); err != nil {
		return err
	}
	return emit(v.scope, &refunderABI, "GasPriceChange", price)
}

func (v *vault) setPaused(paused bool) error {
	if _, err := v.onlyOwner(); err != nil {
		return err
	}
	return v.scope.SetBool(refunderPausedSlot, paused)
}

func (v *vault) refundable(target common.Address, sel types.Selector) (Refundable, error) {
	word, err := v.scope.GetState(refundableSlot(target, sel))
	if err != nil {
		return Refundable{}, err
	}
	return unpackRefundable(word), nil
}

// updateRefundable stores the record and mirrors the supported flag into the
// registry index.
func (v *vault) updateRefundable(target common.Address, sel types.Selector, enabled bool, validator common.Address, validatorSel types.Selector) error {
	if _, err := v.onlyOwner(); err != nil {
		return err
	}
	record := Refundable{
		IsSupported:          enabled,
		ValidatingContract:   validator,
		ValidatingIdentifier: validatorSel,
	}
	if err := v.scope.SetState(refundableSlot(target, sel), record.pack()); err != nil {
		return err
	}
	registry, err := v.scope.GetAddress(refunderRegistrySlot)
	if err != nil {
		return err
	}
	input, err := registryABI.Pack("updateRefundable", target, [4]byte(sel), enabled)
	if err != nil {
		return err
	}
	if _, err := v.scope.Call(registry, input, nil); err != nil {
		return err
	}
	return emit(v.scope, &refunderABI, "RefundableUpdate", target, [4]byte(sel), enabled, validator, [4]byte(validatorSel))
}

// relayAndRefund forwards a whitelisted call and reimburses the caller for
// the gas it consumed. The whole relay runs under the reentrancy guard.
func (v *vault) relayAndRefund(input []byte, target common.Address, sel types.Selector, args []byte) (err error) {
	release, err := lock(v.scope)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := release(); err == nil {
			err = uerr
		}
	}()

	paused, err := v.scope.GetBool(refunderPausedSlot)
	if err != nil {
		return err
	}
	if paused {
		return vm.Revert(ErrPaused)
	}
	record, err := v.refundable(target, sel)
	if err != nil {
		return err
	}
	if !record.IsSupported {
		return vm.Revert(ErrNotRefundable)
	}
	priceCap, err := v.scope.GetUint(refunderGasPriceCapSlot)
	if err != nil {
		return err
	}
	gasPrice := v.scope.GasPrice()
	if gasPrice.Gt(priceCap) {
		return vm.Revert(ErrTooExpensiveGasPrice)
	}

	gasStart := v.scope.Gas()
	if record.HasValidator() {
		if err := v.validate(record, target, sel, args); err != nil {
			return err
		}
	}
	call := make([]byte, 0, types.SelectorLength+len(args))
	call = append(append(call, sel[:]...), args...)
	if _, err := v.scope.Call(target, call, nil); err != nil {
		log.Debug("Relayed call failed", "target", target, "selector", sel, "err", err)
		return vm.Revert(ErrFuncCallNotSuccessful)
	}
	intrinsic, err := core.IntrinsicGas(input, false)
	if err != nil {
		return err
	}
	refundGas := intrinsic + (gasStart - v.scope.Gas()) + RelaySettlementGas
	amount, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(refundGas), gasPrice)

	balance, err := v.scope.SelfBalance()
	if err != nil {
		return err
	}
	if overflow || amount.Gt(balance) {
		return vm.Revert(ErrInsufficientBalance)
	}
	caller := v.scope.Caller()
	if err := v.scope.Transfer(caller, amount); err != nil {
		return vm.Revert(ErrRefundTransferFailed)
	}
	return emit(v.scope, &refunderABI, "RelayAndRefund", caller, target, [4]byte(sel), amount.ToBig())
}

// validate asks the validating contract whether the relay may be refunded.
func (v *vault) validate(record Refundable, target common.Address, sel types.Selector, args []byte) error {
	packed, err := validatorABI.Methods["validate"].Inputs.Pack(v.scope.Caller(), target, [4]byte(sel), args)
	if err != nil {
		return err
	}
	input := append(record.ValidatingIdentifier.Bytes(), packed...)
	ret, err := v.scope.Call(record.ValidatingContract, input, nil)
	if err != nil {
		log.Debug("Refund validator failed", "validator", record.ValidatingContract, "err", err)
		return vm.Revert(ErrContractReverted)
	}
	out, err := validatorABI.Methods["validate"].Outputs.Unpack(ret)
	if err != nil {
		return vm.Revert(ErrContractReverted)
	}
	if approved, _ := out[0].(bool); !approved {
		return vm.Revert(ErrNotEligibleForRefunding)
	}
	return nil
}
