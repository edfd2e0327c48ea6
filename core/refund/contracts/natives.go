// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

// Package contracts holds collaborator contracts used to exercise refund
// vaults: a relay target and a validating contract.
package contracts

import "github.com/HITEYY/go-refunder/core/vm"

const (
	GreeterName   = "Greeter"
	PermitterName = "Permitter"
)

// Natives is the set of collaborator contracts.
var Natives = vm.Natives{
	GreeterName:   greeterNative{},
	PermitterName: permitterNative{},
}
