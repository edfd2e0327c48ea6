// Copyright 2025 The go-obsidian Authors

package backend

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/HITEYY/go-refunder/accounts/bind"
	"github.com/HITEYY/go-refunder/core"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/holiman/uint256"
)

var (
	testKey, _ = crypto.HexToECDSA("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	testAddr   = crypto.PubkeyToAddress(testKey.PublicKey)
	recipient  = common.HexToAddress("0x2000000000000000000000000000000000000002")

	errOdd = errors.New("odd input")
)

// store keeps the first input byte in slot zero and rejects odd values.
type store struct{}

func (store) Run(scope *vm.Scope, input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, nil
	}
	if input[0]%2 == 1 {
		return nil, vm.Revert(errOdd)
	}
	if err := scope.SetState(vm.Slot(0), common.Hash{31: input[0]}); err != nil {
		return nil, err
	}
	return []byte{input[0]}, nil
}

var (
	testNatives = vm.Natives{"Store": store{}}
	storeAddr   = common.HexToAddress("0x5700000000000000000000000000000000000000")
	testAlloc   = Alloc{
		testAddr:  {Balance: big.NewInt(int64(params.TxGas) * 1_000_000_000_000)},
		storeAddr: {Nonce: 1, Code: vm.NativeCode("Store", nil)},
	}
)

func signTx(t *testing.T, nonce uint64, to *common.Address, value uint64, gas uint64, data []byte) *types.Transaction {
	t.Helper()
	tx, err := types.SignTx(&types.Transaction{
		Nonce:    nonce,
		GasPrice: uint256.MustFromBig(DefaultGasPrice),
		Gas:      gas,
		To:       to,
		Value:    uint256.NewInt(value),
		Data:     data,
	}, params.DefaultChainID, testKey)
	if err != nil {
		t.Fatal(err)
	}
	return tx
}

func TestSendTransaction(t *testing.T) {
	sim := NewSimulated(testNatives, testAlloc)
	defer sim.Close()
	ctx := context.Background()

	before, _ := sim.BalanceAt(ctx, testAddr, nil)
	tx := signTx(t, 0, &recipient, 1000, params.TxGas, nil)
	if err := sim.SendTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}
	receipt, err := bind.WaitMined(ctx, sim, tx)
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Failed() || receipt.GasUsed != params.TxGas || receipt.BlockNumber != 1 {
		t.Fatalf("receipt mismatch: %+v", receipt)
	}
	if have, _ := sim.BalanceAt(ctx, recipient, nil); have.Uint64() != 1000 {
		t.Fatalf("recipient balance mismatch: have %v want 1000", have)
	}
	want := new(big.Int).Sub(before, big.NewInt(1000))
	want.Sub(want, receipt.Fee().ToBig())
	if have, _ := sim.BalanceAt(ctx, testAddr, nil); have.Cmp(want) != 0 {
		t.Fatalf("sender balance mismatch: have %v want %v", have, want)
	}
	if nonce, _ := sim.PendingNonceAt(ctx, testAddr); nonce != 1 {
		t.Fatalf("nonce mismatch: have %d want 1", nonce)
	}
	if head, _ := sim.BlockNumber(ctx); head != 1 {
		t.Fatalf("head mismatch: have %d want 1", head)
	}
	mined, err := sim.TransactionByHash(ctx, tx.Hash())
	if err != nil {
		t.Fatal(err)
	}
	if mined.Hash() != tx.Hash() {
		t.Fatalf("transaction mismatch: have %s want %s", mined.Hash(), tx.Hash())
	}
	if _, err := sim.TransactionReceipt(ctx, common.Hash{1}); !errors.Is(err, bind.ErrNotMined) {
		t.Fatalf("error mismatch: have %v want %v", err, bind.ErrNotMined)
	}
	if _, err := sim.BalanceAt(ctx, testAddr, big.NewInt(0)); err == nil {
		t.Fatal("historic state served")
	}
}

func TestInvalidTransaction(t *testing.T) {
	sim := NewSimulated(testNatives, testAlloc)
	defer sim.Close()
	ctx := context.Background()

	err := sim.SendTransaction(ctx, signTx(t, 5, &recipient, 0, params.TxGas, nil))
	if !errors.Is(err, core.ErrNonceTooHigh) {
		t.Fatalf("error mismatch: have %v want %v", err, core.ErrNonceTooHigh)
	}
	err = sim.SendTransaction(ctx, signTx(t, 0, &recipient, 0, params.TxGas-1, nil))
	if !errors.Is(err, core.ErrIntrinsicGas) {
		t.Fatalf("error mismatch: have %v want %v", err, core.ErrIntrinsicGas)
	}
	if head, _ := sim.BlockNumber(ctx); head != 0 {
		t.Fatalf("invalid transaction mined: head %d", head)
	}
}

func TestFailedExecutionIsMined(t *testing.T) {
	sim := NewSimulated(testNatives, testAlloc)
	defer sim.Close()
	ctx := context.Background()

	tx := signTx(t, 0, &storeAddr, 0, 100_000, []byte{3})
	if err := sim.SendTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}
	receipt, err := sim.TransactionReceipt(ctx, tx.Hash())
	if err != nil {
		t.Fatal(err)
	}
	if !receipt.Failed() || !errors.Is(receipt.Err, errOdd) || receipt.RevertReason != errOdd.Error() {
		t.Fatalf("receipt mismatch: status %d err %v reason %q", receipt.Status, receipt.Err, receipt.RevertReason)
	}
	if nonce, _ := sim.NonceAt(ctx, testAddr, nil); nonce != 1 {
		t.Fatalf("nonce mismatch: have %d want 1", nonce)
	}
}

func TestCallContract(t *testing.T) {
	sim := NewSimulated(testNatives, testAlloc)
	defer sim.Close()
	ctx := context.Background()

	ret, err := sim.CallContract(ctx, types.CallMsg{From: testAddr, To: &storeAddr, Data: []byte{4}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ret) != 1 || ret[0] != 4 {
		t.Fatalf("return mismatch: %x", ret)
	}
	// Calls never persist.
	slot, err := sim.StorageAt(ctx, storeAddr, vm.Slot(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	if common.BytesToHash(slot) != (common.Hash{}) {
		t.Fatalf("call persisted state: %x", slot)
	}
	_, err = sim.CallContract(ctx, types.CallMsg{From: testAddr, To: &storeAddr, Data: []byte{5}}, nil)
	if !errors.Is(err, errOdd) {
		t.Fatalf("error mismatch: have %v want %v", err, errOdd)
	}
}

func TestEstimateGas(t *testing.T) {
	sim := NewSimulated(testNatives, testAlloc)
	defer sim.Close()
	ctx := context.Background()

	gas, err := sim.EstimateGas(ctx, types.CallMsg{From: testAddr, To: &storeAddr, Data: []byte{2}})
	if err != nil {
		t.Fatal(err)
	}
	intrinsic, _ := core.IntrinsicGas([]byte{2}, false)
	if want := intrinsic + params.SstoreSetGas; gas != want {
		t.Fatalf("estimate mismatch: have %d want %d", gas, want)
	}
	_, err = sim.EstimateGas(ctx, types.CallMsg{From: testAddr, To: &storeAddr, Data: []byte{1}})
	if !errors.Is(err, errOdd) {
		t.Fatalf("error mismatch: have %v want %v", err, errOdd)
	}
	// A price the sender cannot pay for leaves no room for the call.
	poor := common.HexToAddress("0x3000000000000000000000000000000000000003")
	_, err = sim.EstimateGas(ctx, types.CallMsg{From: poor, To: &storeAddr, Data: []byte{2}, GasPrice: uint256.NewInt(1)})
	if err == nil {
		t.Fatal("estimated a call the sender cannot afford")
	}
}

func TestReopen(t *testing.T) {
	db := memorydb.New()
	sim, err := New(db, params.DefaultConfig, testNatives, testAlloc)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	tx := signTx(t, 0, &storeAddr, 0, 100_000, []byte{8})
	if err := sim.SendTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}

	// Reopening ignores the allocation and keeps the chain.
	reopened, err := New(db, params.DefaultConfig, testNatives, nil)
	if err != nil {
		t.Fatal(err)
	}
	if head, _ := reopened.BlockNumber(ctx); head != 1 {
		t.Fatalf("head mismatch: have %d want 1", head)
	}
	slot, _ := reopened.StorageAt(ctx, storeAddr, vm.Slot(0), nil)
	if common.BytesToHash(slot) != (common.Hash{31: 8}) {
		t.Fatalf("storage mismatch: %x", slot)
	}
	receipt, err := reopened.TransactionReceipt(ctx, tx.Hash())
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Failed() {
		t.Fatal("receipt lost its status")
	}

	other := &params.ChainConfig{ChainID: big.NewInt(5), BlockGasLimit: params.DefaultConfig.BlockGasLimit}
	if _, err := New(db, other, testNatives, nil); !errors.Is(err, errChainIDMismatch) {
		t.Fatalf("error mismatch: have %v want %v", err, errChainIDMismatch)
	}
}
