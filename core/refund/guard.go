// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package refund

import (
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/ethereum/go-ethereum/common"
)

var (
	guardSlot   = vm.Slot(0) // transient
	guardLocked = common.Hash{31: 1}
)

// reentrancyGuard is a transient lock held for the whole of a relay. Transient
// storage is cleared at the end of every transaction and rolled back with the
// frame, so a lock can never outlive the call that took it.
type reentrancyGuard struct {
	scope *vm.Scope
}

// lock acquires the guard or fails if it is already held. The returned
// release func must be deferred by the caller.
func lock(scope *vm.Scope) (release func() error, err error) {
	g := &reentrancyGuard{scope: scope}
	held, err := scope.GetTransientState(guardSlot)
	if err != nil {
		return nil, err
	}
	if held == guardLocked {
		return nil, vm.Revert(ErrReentrantCall)
	}
	if err := scope.SetTransientState(guardSlot, guardLocked); err != nil {
		return nil, err
	}
	return g.unlock, nil
}

func (g *reentrancyGuard) unlock() error {
	return g.scope.SetTransientState(guardSlot, common.Hash{})
}
