// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package refund

import (
	"errors"
)

// Failures of the refund contracts. They surface wrapped in a vm.RevertError,
// so errors.Is matches both the named failure and vm.ErrExecutionReverted.
var (
	// Authorization
	ErrNotAnOwner         = errors.New("not an owner")
	ErrRefunderNotACaller = errors.New("refunder not a caller")

	// Policy and state
	ErrPaused                  = errors.New("refunder paused")
	ErrNotRefundable           = errors.New("not refundable")
	ErrTooExpensiveGasPrice    = errors.New("too expensive gas price")
	ErrNotEligibleForRefunding = errors.New("not eligible for refunding")
	ErrReentrantCall           = errors.New("reentrant call")
	ErrAlreadyInitialized      = errors.New("already initialized")

	// External call outcome
	ErrContractReverted       = errors.New("contract reverted")
	ErrFuncCallNotSuccessful  = errors.New("function call not successful")
	ErrRefundTransferFailed   = errors.New("refund transfer failed")
	ErrWithdrawTransferFailed = errors.New("withdraw transfer failed")

	// Resource
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Indexing and registration
	ErrInvalidRefunderIndex = errors.New("invalid refunder index")
	ErrInvalidVersion       = errors.New("invalid version")
	ErrAlreadyRegistered    = errors.New("already registered")

	// Dispatch
	ErrUnknownMethod    = errors.New("unknown method")
	ErrInvalidArguments = errors.New("invalid arguments")
)

var errRefunderCreatedNotFound = errors.New("no RefunderCreated event in receipt")
