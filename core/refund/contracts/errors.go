// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package contracts

import "errors"

var (
	ErrGreetingTooLong = errors.New("greeting too long")
	ErrNotOwner        = errors.New("caller is not the owner")
	ErrValidatorError  = errors.New("validator error")
	ErrUnknownMethod   = errors.New("unknown method")
	ErrInvalidArgs     = errors.New("invalid arguments")
)
