// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/HITEYY/go-refunder/core"
	"github.com/HITEYY/go-refunder/core/state"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// EstimateGas returns the lowest gas limit with which call succeeds, found by
// binary search between the intrinsic gas and the gas cap. Calls forward all
// but one 64th of their gas, so the limit can exceed the gas actually used.
func (b *Backend) EstimateGas(ctx context.Context, call types.CallMsg) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		lo uint64 // highest gas limit that failed
		hi = b.config.BlockGasLimit
	)
	if call.Gas >= params.TxGas {
		hi = call.Gas
	}
	// Cap the search by what the sender can pay for.
	if call.GasPrice != nil && !call.GasPrice.IsZero() {
		available := b.balance(call.From)
		if call.Value != nil {
			if call.Value.Gt(available) {
				return 0, core.ErrInsufficientFunds
			}
			available.Sub(available, call.Value)
		}
		allowance := new(uint256.Int).Div(available, call.GasPrice)
		if allowance.IsUint64() && hi > allowance.Uint64() {
			log.Debug("Gas estimation capped by limited funds", "balance", available, "fundable", allowance, "gasprice", call.GasPrice)
			hi = allowance.Uint64()
		}
	}
	intrinsic, err := core.IntrinsicGas(call.Data, call.To == nil)
	if err != nil {
		return 0, err
	}
	if intrinsic > 0 {
		lo = intrinsic - 1
	}
	// Make sure the call succeeds at the cap, reporting the failure otherwise.
	failed, result, err := b.executeWithGas(call, hi)
	if err != nil {
		return 0, err
	}
	if failed {
		if result != nil && !errors.Is(result.Err, vm.ErrOutOfGas) {
			return 0, fmt.Errorf("gas required exceeds allowance or always failing transaction: %w", result.Err)
		}
		return 0, fmt.Errorf("gas required exceeds allowance (%d)", hi)
	}
	for lo+1 < hi {
		mid := lo + (hi-lo)/2
		failed, _, err := b.executeWithGas(call, mid)
		if err != nil {
			return 0, err
		}
		if failed {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi, nil
}

func (b *Backend) executeWithGas(call types.CallMsg, gas uint64) (bool, *core.ExecutionResult, error) {
	result, err := b.execute(b.toMessage(call, gas))
	if err != nil {
		if errors.Is(err, core.ErrIntrinsicGas) {
			return true, nil, nil
		}
		return true, nil, err
	}
	return result.Failed(), result, nil
}

func (b *Backend) balance(addr common.Address) *uint256.Int {
	return state.New(b.db).GetBalance(addr)
}
