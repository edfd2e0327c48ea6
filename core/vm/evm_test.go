// Copyright 2025 The go-obsidian Authors

package vm

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/HITEYY/go-refunder/core/state"
	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/holiman/uint256"
)

var (
	errTest = errors.New("test revert")
	errBoom = errors.New("boom")

	sender = common.HexToAddress("0x1000000000000000000000000000000000000001")
)

const (
	opIncrement byte = iota + 1
	opRevert
	opFail
	opCall
	opEmit
	opWhoami
	opStaticIncrement
)

// counter is a test contract driven by a one byte opcode.
type counter struct{}

func (counter) Construct(scope *Scope, args []byte) error {
	return scope.SetBytes(Slot(1), args)
}

func (counter) Run(scope *Scope, input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, nil
	}
	switch input[0] {
	case opIncrement, opRevert, opFail:
		n, err := scope.GetUint(Slot(0))
		if err != nil {
			return nil, err
		}
		if err := scope.SetUint(Slot(0), n.AddUint64(n, 1)); err != nil {
			return nil, err
		}
		switch input[0] {
		case opRevert:
			return nil, Revert(errTest)
		case opFail:
			return nil, errBoom
		}
		return nil, nil
	case opCall:
		return scope.Call(common.BytesToAddress(input[1:21]), input[21:], nil)
	case opEmit:
		return nil, scope.Emit([]common.Hash{{1}, {2}}, input[1:])
	case opWhoami:
		return append(scope.Address().Bytes(), scope.Caller().Bytes()...), nil
	case opStaticIncrement:
		return scope.StaticCall(scope.Address(), []byte{opIncrement})
	}
	return nil, Revert(errTest)
}

func newTestEVM() (*EVM, *state.StateDB) {
	statedb := state.New(memorydb.New())
	statedb.AddBalance(sender, uint256.NewInt(1_000_000))
	blockCtx := BlockContext{
		CanTransfer: func(db StateDB, addr common.Address, amount *uint256.Int) bool {
			return db.GetBalance(addr).Cmp(amount) >= 0
		},
		Transfer: func(db StateDB, from, to common.Address, amount *uint256.Int) {
			db.SubBalance(from, amount)
			db.AddBalance(to, amount)
		},
		BlockNumber: big.NewInt(1),
	}
	evm := NewEVM(blockCtx, TxContext{Origin: sender, GasPrice: uint256.NewInt(1)}, statedb, params.DefaultConfig, Natives{"Counter": counter{}})
	return evm, statedb
}

func deploy(t *testing.T, evm *EVM, code []byte) common.Address {
	t.Helper()
	_, addr, _, err := evm.Create(sender, code, 1_000_000, new(uint256.Int))
	if err != nil {
		t.Fatalf("failed to deploy: %v", err)
	}
	return addr
}

func TestCreate(t *testing.T) {
	evm, statedb := newTestEVM()

	code := NativeCode("Counter", []byte("ctor"))
	want := crypto.CreateAddress(sender, 0)
	_, addr, left, err := evm.Create(sender, code, 1_000_000, new(uint256.Int))
	if err != nil {
		t.Fatal(err)
	}
	if addr != want {
		t.Fatalf("address mismatch: have %s want %s", addr, want)
	}
	stored := statedb.GetCode(addr)
	if !bytes.Equal(stored, NativeCode("Counter", nil)) {
		t.Fatalf("stored code mismatch: have %x", stored)
	}
	// One SLOAD and one SSTORE for the short constructor string, then the
	// code deposit.
	used := params.SloadGas + params.SstoreSetGas + uint64(len(stored))*params.CreateDataGas
	if have := 1_000_000 - left; have != used {
		t.Fatalf("gas mismatch: have %d want %d", have, used)
	}
	if statedb.GetNonce(addr) != 1 || statedb.GetNonce(sender) != 1 {
		t.Fatalf("nonce mismatch: contract %d sender %d", statedb.GetNonce(addr), statedb.GetNonce(sender))
	}

	// Unknown contracts and bad markers are rejected and consume all gas.
	for _, code := range [][]byte{NativeCode("Missing", nil), {0x60, 0x00}} {
		_, _, left, err := evm.Create(sender, code, 1_000_000, new(uint256.Int))
		if err == nil {
			t.Fatalf("deployed %x", code)
		}
		if left != 0 {
			t.Fatalf("failed create returned %d gas", left)
		}
	}
}

func TestCallGas(t *testing.T) {
	evm, statedb := newTestEVM()
	addr := deploy(t, evm, NativeCode("Counter", nil))

	const gas = 100_000
	_, left, err := evm.Call(sender, addr, []byte{opIncrement}, gas, new(uint256.Int))
	if err != nil {
		t.Fatal(err)
	}
	if have, want := gas-left, params.SloadGas+params.SstoreSetGas; have != want {
		t.Fatalf("first increment gas mismatch: have %d want %d", have, want)
	}
	_, left, err = evm.Call(sender, addr, []byte{opIncrement}, gas, new(uint256.Int))
	if err != nil {
		t.Fatal(err)
	}
	if have, want := gas-left, params.SloadGas+params.SstoreResetGas; have != want {
		t.Fatalf("second increment gas mismatch: have %d want %d", have, want)
	}
	if have := statedb.GetState(addr, Slot(0)); have != common.BigToHash(big.NewInt(2)) {
		t.Fatalf("counter mismatch: have %x", have)
	}
	_, _, err = evm.Call(sender, addr, []byte{opIncrement}, params.SloadGas+1, new(uint256.Int))
	if !errors.Is(err, ErrOutOfGas) {
		t.Fatalf("error mismatch: have %v want %v", err, ErrOutOfGas)
	}
}

func TestRevertReturnsGas(t *testing.T) {
	evm, statedb := newTestEVM()
	addr := deploy(t, evm, NativeCode("Counter", nil))

	const gas = 100_000
	ret, left, err := evm.Call(sender, addr, []byte{opRevert}, gas, new(uint256.Int))
	if !errors.Is(err, ErrExecutionReverted) || !errors.Is(err, errTest) {
		t.Fatalf("error mismatch: have %v", err)
	}
	if have, want := gas-left, params.SloadGas+params.SstoreSetGas; have != want {
		t.Fatalf("gas mismatch: have %d want %d", have, want)
	}
	if reason, ok := RevertReason(ret); !ok || reason != errTest.Error() {
		t.Fatalf("revert reason mismatch: have %q", reason)
	}
	if have := statedb.GetState(addr, Slot(0)); have != (common.Hash{}) {
		t.Fatalf("reverted write persisted: %x", have)
	}

	_, left, err = evm.Call(sender, addr, []byte{opFail}, gas, new(uint256.Int))
	if !errors.Is(err, errBoom) {
		t.Fatalf("error mismatch: have %v want %v", err, errBoom)
	}
	if left != 0 {
		t.Fatalf("failed call returned %d gas", left)
	}
	if have := statedb.GetState(addr, Slot(0)); have != (common.Hash{}) {
		t.Fatalf("failed write persisted: %x", have)
	}
}

func TestCloneDelegates(t *testing.T) {
	evm, statedb := newTestEVM()
	master := deploy(t, evm, NativeCode("Counter", nil))
	clone := deploy(t, evm, CloneCode(master))

	if impl, ok := ParseCloneCode(statedb.GetCode(clone)); !ok || impl != master {
		t.Fatalf("clone code mismatch: %x", statedb.GetCode(clone))
	}
	const gas = 100_000
	_, left, err := evm.Call(sender, clone, []byte{opIncrement}, gas, new(uint256.Int))
	if err != nil {
		t.Fatal(err)
	}
	if have, want := gas-left, params.CallGas+params.SloadGas+params.SstoreSetGas; have != want {
		t.Fatalf("gas mismatch: have %d want %d", have, want)
	}
	if have := statedb.GetState(clone, Slot(0)); have != common.BigToHash(big.NewInt(1)) {
		t.Fatalf("clone counter mismatch: have %x", have)
	}
	if have := statedb.GetState(master, Slot(0)); have != (common.Hash{}) {
		t.Fatalf("master storage written: %x", have)
	}
	ret, _, err := evm.Call(sender, clone, []byte{opWhoami}, gas, new(uint256.Int))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ret[:20], clone.Bytes()) || !bytes.Equal(ret[20:], sender.Bytes()) {
		t.Fatalf("delegate context mismatch: %x", ret)
	}
}

func TestValueTransfer(t *testing.T) {
	evm, statedb := newTestEVM()
	addr := deploy(t, evm, NativeCode("Counter", nil))

	_, _, err := evm.Call(sender, addr, nil, 100_000, uint256.NewInt(1000))
	if err != nil {
		t.Fatal(err)
	}
	if have := statedb.GetBalance(addr); have.Uint64() != 1000 {
		t.Fatalf("balance mismatch: have %v want 1000", have)
	}
	// A reverted call rolls back the transfer.
	_, _, err = evm.Call(sender, addr, []byte{opRevert}, 100_000, uint256.NewInt(1000))
	if !errors.Is(err, errTest) {
		t.Fatalf("error mismatch: have %v want %v", err, errTest)
	}
	if have := statedb.GetBalance(addr); have.Uint64() != 1000 {
		t.Fatalf("balance mismatch after revert: have %v want 1000", have)
	}
	_, _, err = evm.Call(sender, addr, nil, 100_000, uint256.NewInt(10_000_000))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("error mismatch: have %v want %v", err, ErrInsufficientBalance)
	}
}

func TestScopeTransfer(t *testing.T) {
	evm, statedb := newTestEVM()
	addr := deploy(t, evm, NativeCode("Counter", nil))
	statedb.AddBalance(addr, uint256.NewInt(500))

	recipient := common.HexToAddress("0x2000000000000000000000000000000000000002")
	scope := newScope(evm, sender, addr, nil, 100_000, false)
	if err := scope.Transfer(recipient, uint256.NewInt(200)); err != nil {
		t.Fatal(err)
	}
	if have, want := 100_000-scope.Gas(), params.CallGas+params.CallValueTransferGas-params.CallStipend; have != want {
		t.Fatalf("gas mismatch: have %d want %d", have, want)
	}
	if have := statedb.GetBalance(recipient); have.Uint64() != 200 {
		t.Fatalf("recipient balance mismatch: have %v", have)
	}
	if err := scope.Transfer(recipient, uint256.NewInt(301)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("error mismatch: have %v want %v", err, ErrInsufficientBalance)
	}
}

func TestStaticCall(t *testing.T) {
	evm, statedb := newTestEVM()
	addr := deploy(t, evm, NativeCode("Counter", nil))

	_, _, err := evm.StaticCall(sender, addr, []byte{opIncrement}, 100_000)
	if !errors.Is(err, ErrWriteProtection) {
		t.Fatalf("error mismatch: have %v want %v", err, ErrWriteProtection)
	}
	_, _, err = evm.Call(sender, addr, []byte{opStaticIncrement}, 100_000, new(uint256.Int))
	if !errors.Is(err, ErrWriteProtection) {
		t.Fatalf("error mismatch: have %v want %v", err, ErrWriteProtection)
	}
	if _, _, err = evm.StaticCall(sender, addr, []byte{opEmit}, 100_000); !errors.Is(err, ErrWriteProtection) {
		t.Fatalf("static emit: have %v want %v", err, ErrWriteProtection)
	}
	if have := statedb.GetState(addr, Slot(0)); have != (common.Hash{}) {
		t.Fatalf("static call wrote state: %x", have)
	}
}

func TestNestedCallForwardsGas(t *testing.T) {
	evm, statedb := newTestEVM()
	outer := deploy(t, evm, NativeCode("Counter", nil))
	inner := deploy(t, evm, NativeCode("Counter", nil))

	input := append([]byte{opCall}, inner.Bytes()...)
	input = append(input, opRevert)
	_, _, err := evm.Call(sender, outer, input, 100_000, new(uint256.Int))
	if !errors.Is(err, errTest) {
		t.Fatalf("inner revert not propagated: %v", err)
	}
	input[len(input)-1] = opIncrement
	if _, _, err := evm.Call(sender, outer, input, 100_000, new(uint256.Int)); err != nil {
		t.Fatal(err)
	}
	if have := statedb.GetState(inner, Slot(0)); have != common.BigToHash(big.NewInt(1)) {
		t.Fatalf("inner counter mismatch: have %x", have)
	}
	// Without enough gas for the callee the inner write runs out of gas.
	_, _, err = evm.Call(sender, outer, input, params.CallGas+params.SloadGas+100, new(uint256.Int))
	if !errors.Is(err, ErrOutOfGas) {
		t.Fatalf("error mismatch: have %v want %v", err, ErrOutOfGas)
	}
}

func TestDepthLimit(t *testing.T) {
	evm, _ := newTestEVM()
	addr := deploy(t, evm, NativeCode("Counter", nil))

	evm.depth = int(params.CallCreateDepth) + 1
	_, left, err := evm.Call(sender, addr, []byte{opIncrement}, 100_000, new(uint256.Int))
	if !errors.Is(err, ErrDepth) {
		t.Fatalf("error mismatch: have %v want %v", err, ErrDepth)
	}
	if left != 100_000 {
		t.Fatalf("depth failure consumed gas: %d left", left)
	}
}

func TestEmit(t *testing.T) {
	evm, statedb := newTestEVM()
	addr := deploy(t, evm, NativeCode("Counter", nil))

	data := []byte("0123456789")
	_, left, err := evm.Call(sender, addr, append([]byte{opEmit}, data...), 100_000, new(uint256.Int))
	if err != nil {
		t.Fatal(err)
	}
	if have, want := 100_000-left, params.LogGas+2*params.LogTopicGas+uint64(len(data))*params.LogDataGas; have != want {
		t.Fatalf("gas mismatch: have %d want %d", have, want)
	}
	logs := statedb.Logs()
	if len(logs) != 1 {
		t.Fatalf("log count mismatch: have %d want 1", len(logs))
	}
	if logs[0].Address != addr || !bytes.Equal(logs[0].Data, data) || len(logs[0].Topics) != 2 {
		t.Fatalf("log mismatch: %+v", logs[0])
	}
}

func TestTransientStorage(t *testing.T) {
	evm, statedb := newTestEVM()
	addr := deploy(t, evm, NativeCode("Counter", nil))

	scope := newScope(evm, sender, addr, nil, 100_000, false)
	slot, value := Slot(7), common.Hash{31: 1}
	if err := scope.SetTransientState(slot, value); err != nil {
		t.Fatal(err)
	}
	if have, err := scope.GetTransientState(slot); err != nil || have != value {
		t.Fatalf("transient mismatch: have %x err %v", have, err)
	}
	if have := statedb.GetState(addr, slot); have != (common.Hash{}) {
		t.Fatalf("transient write reached storage: %x", have)
	}
	if have, want := 100_000-scope.Gas(), params.TstoreGas+params.TloadGas; have != want {
		t.Fatalf("gas mismatch: have %d want %d", have, want)
	}
}
