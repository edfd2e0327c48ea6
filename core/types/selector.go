// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorLength is the expected length of a function selector.
const SelectorLength = 4

// Selector is the 4 byte identifier of a callable function signature.
type Selector [SelectorLength]byte

// SelectorFromSig returns the selector of a canonical function signature such
// as "setGreeting(string)".
func SelectorFromSig(sig string) Selector {
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(sig))[:SelectorLength])
	return s
}

// BytesToSelector takes the first 4 bytes of b. Shorter input is right padded.
func BytesToSelector(b []byte) Selector {
	var s Selector
	copy(s[:], b)
	return s
}

// HexToSelector parses a 0x-prefixed 4 byte hex string.
func HexToSelector(str string) (Selector, error) {
	b, err := hexutil.Decode(str)
	if err != nil {
		return Selector{}, err
	}
	if len(b) != SelectorLength {
		return Selector{}, fmt.Errorf("invalid selector length %d", len(b))
	}
	return BytesToSelector(b), nil
}

// Bytes returns a copy of the selector bytes.
func (s Selector) Bytes() []byte { return append([]byte(nil), s[:]...) }

// Hex returns the 0x-prefixed hex encoding.
func (s Selector) Hex() string { return hexutil.Encode(s[:]) }

func (s Selector) String() string { return s.Hex() }

// IsZero reports whether the selector is unset.
func (s Selector) IsZero() bool { return s == Selector{} }
