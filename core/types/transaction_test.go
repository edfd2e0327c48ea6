// Copyright 2026 The go-obsidian Authors

package types

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

func TestTransactionZeroValueDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("zero-value tx should not panic: %v", r)
		}
	}()
	tx := new(Transaction)
	_ = tx.Hash()
	_ = tx.SigHash(big.NewInt(1))
	_ = tx.Cost()
	_, _, _ = tx.RawSignatureValues()
}

func TestTransactionSenderRecovery(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	chainID := big.NewInt(1719)
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")

	tx, err := SignTx(&Transaction{
		Nonce:    3,
		GasPrice: uint256.NewInt(150),
		Gas:      100000,
		To:       &to,
		Value:    uint256.NewInt(7),
		Data:     []byte{0xde, 0xad},
	}, chainID, key)
	if err != nil {
		t.Fatalf("SignTx: %v", err)
	}
	from, err := Sender(tx, chainID)
	if err != nil {
		t.Fatalf("Sender failed: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey)
	if from != want {
		t.Fatalf("sender mismatch: have %s want %s", from, want)
	}

	if _, err := Sender(tx, big.NewInt(1)); !errors.Is(err, ErrInvalidChainId) {
		t.Fatalf("wrong chain: have %v want %v", err, ErrInvalidChainId)
	}
	tampered := tx.Copy()
	tampered.Data = []byte{0xbe, 0xef}
	if from, err := Sender(tampered, chainID); err == nil && from == want {
		t.Fatalf("tampered tx recovered original sender")
	}
}

func TestTransactionCost(t *testing.T) {
	tx := &Transaction{GasPrice: uint256.NewInt(10), Gas: 21000, Value: uint256.NewInt(5)}
	if have, want := tx.Cost().Uint64(), uint64(210005); have != want {
		t.Fatalf("cost mismatch: have %d want %d", have, want)
	}
}

func TestTransactionCreationEncoding(t *testing.T) {
	tx := &Transaction{ChainID: uint256.NewInt(1719), GasPrice: uint256.NewInt(1), Gas: 60000, Value: new(uint256.Int), Data: []byte{0xef}}
	enc, err := rlp.EncodeToBytes(tx)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var dec Transaction
	if err := rlp.DecodeBytes(enc, &dec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.To != nil {
		t.Fatalf("creation tx decoded with recipient %s", dec.To)
	}
	if dec.Hash() != tx.Hash() {
		t.Fatalf("hash mismatch: have %s want %s", dec.Hash(), tx.Hash())
	}
}

func TestSelectorFromSig(t *testing.T) {
	sel := SelectorFromSig("transfer(address,uint256)")
	if have, want := sel.Hex(), "0xa9059cbb"; have != want {
		t.Fatalf("selector mismatch: have %s want %s", have, want)
	}
	parsed, err := HexToSelector("0xa9059cbb")
	if err != nil {
		t.Fatalf("HexToSelector: %v", err)
	}
	if parsed != sel {
		t.Fatalf("parsed selector mismatch: have %s want %s", parsed, sel)
	}
	if _, err := HexToSelector("0xa9059c"); err == nil {
		t.Fatalf("short selector accepted")
	}
	if !(Selector{}).IsZero() || sel.IsZero() {
		t.Fatalf("IsZero mismatch")
	}
}
