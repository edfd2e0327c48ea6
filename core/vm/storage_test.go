// Copyright 2025 The go-obsidian Authors

package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/HITEYY/go-refunder/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

func TestSlots(t *testing.T) {
	slot := Slot(4)
	key := AddressKey(common.HexToAddress("0x00000000000000000000000000000000000000ff"))
	if key[31] != 0xff || key[0] != 0 {
		t.Fatalf("address key not left padded: %x", key)
	}
	if have, want := MappingSlot(slot, key), crypto.Keccak256Hash(key[:], slot[:]); have != want {
		t.Fatalf("mapping slot mismatch: have %x want %x", have, want)
	}
	sel := SelectorKey(types.Selector{0xa9, 0x05, 0x9c, 0xbb})
	if sel[0] != 0xa9 || sel[31] != 0 {
		t.Fatalf("selector key not right padded: %x", sel)
	}
	data := ArrayDataSlot(slot)
	if data != crypto.Keccak256Hash(slot[:]) {
		t.Fatalf("array data slot mismatch: %x", data)
	}
	want := new(uint256.Int).AddUint64(new(uint256.Int).SetBytes(data[:]), 3).Bytes32()
	if have := ArraySlot(slot, 3); have != common.Hash(want) {
		t.Fatalf("array slot mismatch: have %x want %x", have, want)
	}
}

func TestBytesStorage(t *testing.T) {
	evm, statedb := newTestEVM()
	addr := deploy(t, evm, NativeCode("Counter", nil))
	scope := newScope(evm, sender, addr, nil, 10_000_000, false)
	slot := Slot(3)

	tests := [][]byte{
		[]byte("Hello, world!"),
		[]byte(strings.Repeat("x", 31)),
		[]byte(strings.Repeat("y", 32)),
		[]byte(strings.Repeat("z", 70)),
		nil,
	}
	for _, data := range tests {
		if err := scope.SetBytes(slot, data); err != nil {
			t.Fatal(err)
		}
		have, err := scope.GetBytes(slot)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(have, data) {
			t.Fatalf("bytes mismatch: have %q want %q", have, data)
		}
	}
	// The 70 byte value used three words; all are cleared again.
	for i := uint64(0); i < 3; i++ {
		if word := statedb.GetState(addr, ArraySlot(slot, i)); word != (common.Hash{}) {
			t.Fatalf("word %d not cleared: %x", i, word)
		}
	}
}

func TestValueStorage(t *testing.T) {
	evm, _ := newTestEVM()
	addr := deploy(t, evm, NativeCode("Counter", nil))
	scope := newScope(evm, sender, addr, nil, 1_000_000, false)

	if err := scope.SetAddress(Slot(0), sender); err != nil {
		t.Fatal(err)
	}
	if have, err := scope.GetAddress(Slot(0)); err != nil || have != sender {
		t.Fatalf("address mismatch: have %s err %v", have, err)
	}
	if err := scope.SetBool(Slot(1), true); err != nil {
		t.Fatal(err)
	}
	if have, err := scope.GetBool(Slot(1)); err != nil || !have {
		t.Fatalf("bool mismatch: have %v err %v", have, err)
	}
	if err := scope.SetUint(Slot(2), uint256.NewInt(150)); err != nil {
		t.Fatal(err)
	}
	if have, err := scope.GetUint(Slot(2)); err != nil || have.Uint64() != 150 {
		t.Fatalf("uint mismatch: have %v err %v", have, err)
	}
}

func TestNativeCodeMarkers(t *testing.T) {
	code := NativeCode("Refunder", []byte{1, 2, 3})
	name, args, err := ParseNativeCode(code)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Refunder" || !bytes.Equal(args, []byte{1, 2, 3}) {
		t.Fatalf("marker mismatch: name %q args %x", name, args)
	}
	for _, bad := range [][]byte{nil, {NativeCodePrefix}, {NativeCodePrefix, 5, 'a'}, {0x60, 1, 'a'}} {
		if _, _, err := ParseNativeCode(bad); err != ErrInvalidCode {
			t.Fatalf("marker %x accepted", bad)
		}
	}
	target := common.HexToAddress("0xbebebebebebebebebebebebebebebebebebebebe")
	clone := CloneCode(target)
	if len(clone) != CloneCodeLength || CloneCodeLength != 45 {
		t.Fatalf("clone length mismatch: have %d", len(clone))
	}
	if have, ok := ParseCloneCode(clone); !ok || have != target {
		t.Fatalf("clone target mismatch: have %s", have)
	}
	if _, ok := ParseCloneCode(code); ok {
		t.Fatal("native marker parsed as clone")
	}
	merged := MergeNatives(Natives{"A": counter{}}, Natives{"B": counter{}})
	if len(merged) != 2 {
		t.Fatalf("merged size mismatch: have %d want 2", len(merged))
	}
}
