// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package vm

import (
	"errors"
)

// List of host execution errors
var (
	ErrOutOfGas                 = errors.New("out of gas")
	ErrDepth                    = errors.New("max call depth exceeded")
	ErrInsufficientBalance      = errors.New("insufficient balance for transfer")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrExecutionReverted        = errors.New("execution reverted")
	ErrMaxCodeSizeExceeded      = errors.New("max code size exceeded")
	ErrWriteProtection          = errors.New("write protection")
	ErrNonceUintOverflow        = errors.New("nonce uint64 overflow")
	ErrInvalidCode              = errors.New("invalid native code")
	ErrUnknownContract          = errors.New("unknown native contract")
)
