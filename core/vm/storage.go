// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// Storage layout helpers. Slots follow the Solidity layout rules so state
// written by native contracts can be read with the usual tooling.

package vm

import (
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

func keccak(data ...[]byte) (h common.Hash) {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// Slot returns the n-th fixed storage slot.
func Slot(n uint64) common.Hash {
	return uint256.NewInt(n).Bytes32()
}

// AddressKey is the mapping key of an address: left padded to 32 bytes.
func AddressKey(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

// SelectorKey is the mapping key of a bytes4 value: right padded to 32 bytes.
func SelectorKey(sel types.Selector) common.Hash {
	var h common.Hash
	copy(h[:], sel[:])
	return h
}

// MappingSlot returns the slot of key in the mapping rooted at slot.
func MappingSlot(slot, key common.Hash) common.Hash {
	return keccak(key[:], slot[:])
}

// ArrayDataSlot returns the first element slot of the dynamic array rooted at
// slot.
func ArrayDataSlot(slot common.Hash) common.Hash {
	return keccak(slot[:])
}

// OffsetSlot returns slot + n.
func OffsetSlot(slot common.Hash, n uint64) common.Hash {
	base := new(uint256.Int).SetBytes32(slot[:])
	return base.Add(base, uint256.NewInt(n)).Bytes32()
}

// ArraySlot returns the slot of element i of the dynamic array rooted at slot.
func ArraySlot(slot common.Hash, i uint64) common.Hash {
	return OffsetSlot(ArrayDataSlot(slot), i)
}

// GetUint reads a slot as an unsigned integer.
func (s *Scope) GetUint(slot common.Hash) (*uint256.Int, error) {
	word, err := s.GetState(slot)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes32(word[:]), nil
}

// SetUint writes an unsigned integer to a slot.
func (s *Scope) SetUint(slot common.Hash, v *uint256.Int) error {
	return s.SetState(slot, v.Bytes32())
}

// GetAddress reads a slot as an address.
func (s *Scope) GetAddress(slot common.Hash) (common.Address, error) {
	word, err := s.GetState(slot)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(word[:]), nil
}

// SetAddress writes an address to a slot.
func (s *Scope) SetAddress(slot common.Hash, addr common.Address) error {
	return s.SetState(slot, AddressKey(addr))
}

// GetBool reads a slot as a boolean.
func (s *Scope) GetBool(slot common.Hash) (bool, error) {
	word, err := s.GetState(slot)
	if err != nil {
		return false, err
	}
	return word != (common.Hash{}), nil
}

// SetBool writes a boolean to a slot.
func (s *Scope) SetBool(slot common.Hash, v bool) error {
	var word common.Hash
	if v {
		word[common.HashLength-1] = 1
	}
	return s.SetState(slot, word)
}

// GetBytes reads a dynamic byte string. Values shorter than 32 bytes share
// the root slot with their length; longer ones live at keccak(slot).
func (s *Scope) GetBytes(slot common.Hash) ([]byte, error) {
	root, err := s.GetState(slot)
	if err != nil {
		return nil, err
	}
	if root[common.HashLength-1]&1 == 0 {
		size := int(root[common.HashLength-1] / 2)
		return common.CopyBytes(root[:size]), nil
	}
	size := new(uint256.Int).SetBytes32(root[:]).Uint64() / 2
	data := make([]byte, 0, size)
	for i := uint64(0); uint64(len(data)) < size; i++ {
		word, err := s.GetState(ArraySlot(slot, i))
		if err != nil {
			return nil, err
		}
		data = append(data, word[:min(uint64(common.HashLength), size-uint64(len(data)))]...)
	}
	return data, nil
}

// SetBytes writes a dynamic byte string, clearing words of a previous longer
// value.
func (s *Scope) SetBytes(slot common.Hash, data []byte) error {
	root, err := s.GetState(slot)
	if err != nil {
		return err
	}
	var prevWords uint64
	if root[common.HashLength-1]&1 == 1 {
		prevSize := new(uint256.Int).SetBytes32(root[:]).Uint64() / 2
		prevWords = (prevSize + common.HashLength - 1) / common.HashLength
	}
	var words uint64
	if len(data) < common.HashLength {
		var word common.Hash
		copy(word[:], data)
		word[common.HashLength-1] = byte(len(data) * 2)
		if err := s.SetState(slot, word); err != nil {
			return err
		}
	} else {
		if err := s.SetUint(slot, uint256.NewInt(uint64(len(data))*2+1)); err != nil {
			return err
		}
		for i := 0; i < len(data); i += common.HashLength {
			var word common.Hash
			copy(word[:], data[i:])
			if err := s.SetState(ArraySlot(slot, words), word); err != nil {
				return err
			}
			words++
		}
	}
	for i := words; i < prevWords; i++ {
		if err := s.SetState(ArraySlot(slot, i), common.Hash{}); err != nil {
			return err
		}
	}
	return nil
}
