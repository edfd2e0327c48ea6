// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// Signed transactions submitted to the refunder chain. A relayer signs a
// transaction calling relayAndRefund on a vault and is reimbursed from it.

package types

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

var (
	ErrInvalidSig     = errors.New("invalid transaction v, r, s values")
	ErrInvalidChainId = errors.New("invalid chain id for signer")
)

// Transaction is a legacy-style, replay protected transaction.
type Transaction struct {
	ChainID  *uint256.Int
	Nonce    uint64
	GasPrice *uint256.Int
	Gas      uint64
	To       *common.Address `rlp:"nil"` // nil means contract creation
	Value    *uint256.Int
	Data     []byte

	// Signature values
	V *uint256.Int
	R *uint256.Int
	S *uint256.Int
}

// Copy returns a deep copy of the transaction.
func (tx *Transaction) Copy() *Transaction {
	cpy := &Transaction{
		Nonce: tx.Nonce,
		Gas:   tx.Gas,
		Data:  common.CopyBytes(tx.Data),
	}
	if tx.To != nil {
		to := *tx.To
		cpy.To = &to
	}
	if tx.ChainID != nil {
		cpy.ChainID = new(uint256.Int).Set(tx.ChainID)
	}
	if tx.GasPrice != nil {
		cpy.GasPrice = new(uint256.Int).Set(tx.GasPrice)
	}
	if tx.Value != nil {
		cpy.Value = new(uint256.Int).Set(tx.Value)
	}
	if tx.V != nil {
		cpy.V = new(uint256.Int).Set(tx.V)
	}
	if tx.R != nil {
		cpy.R = new(uint256.Int).Set(tx.R)
	}
	if tx.S != nil {
		cpy.S = new(uint256.Int).Set(tx.S)
	}
	return cpy
}

// Hash returns the transaction hash.
func (tx *Transaction) Hash() common.Hash {
	return rlpHash(tx)
}

// SigHash returns the hash to be signed by the sender.
func (tx *Transaction) SigHash(chainID *big.Int) common.Hash {
	return rlpHash([]interface{}{
		bigOrZero(chainID),
		tx.Nonce,
		uint256OrZero(tx.GasPrice),
		tx.Gas,
		tx.To,
		uint256OrZero(tx.Value),
		tx.Data,
	})
}

// Cost returns gas * gasPrice + value.
func (tx *Transaction) Cost() *uint256.Int {
	total := new(uint256.Int).Mul(uint256.NewInt(tx.Gas), uint256OrZero(tx.GasPrice))
	return total.Add(total, uint256OrZero(tx.Value))
}

// RawSignatureValues returns the V, R, S signature values of the transaction.
func (tx *Transaction) RawSignatureValues() (v, r, s *big.Int) {
	return uint256ToBig(tx.V), uint256ToBig(tx.R), uint256ToBig(tx.S)
}

// SignTx signs the transaction for the given chain and returns a signed copy.
func SignTx(tx *Transaction, chainID *big.Int, prv *ecdsa.PrivateKey) (*Transaction, error) {
	h := tx.SigHash(chainID)
	sig, err := crypto.Sign(h[:], prv)
	if err != nil {
		return nil, err
	}
	cpy := tx.Copy()
	cpy.ChainID = uint256.MustFromBig(chainID)
	cpy.R = new(uint256.Int).SetBytes(sig[:32])
	cpy.S = new(uint256.Int).SetBytes(sig[32:64])
	cpy.V = uint256.NewInt(uint64(sig[64]))
	return cpy, nil
}

// Sender recovers the address that signed the transaction for chainID.
func Sender(tx *Transaction, chainID *big.Int) (common.Address, error) {
	if tx.ChainID == nil || tx.ChainID.ToBig().Cmp(chainID) != 0 {
		return common.Address{}, fmt.Errorf("%w: have %v want %v", ErrInvalidChainId, tx.ChainID, chainID)
	}
	if tx.V == nil || tx.R == nil || tx.S == nil || !tx.V.IsUint64() || tx.V.Uint64() > 1 {
		return common.Address{}, ErrInvalidSig
	}
	v := byte(tx.V.Uint64())
	if !crypto.ValidateSignatureValues(v, tx.R.ToBig(), tx.S.ToBig(), true) {
		return common.Address{}, ErrInvalidSig
	}
	sig := make([]byte, crypto.SignatureLength)
	r, s := tx.R.Bytes32(), tx.S.Bytes32()
	copy(sig[:32], r[:])
	copy(sig[32:64], s[:])
	sig[64] = v

	h := tx.SigHash(chainID)
	pub, err := crypto.SigToPub(h[:], sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func rlpHash(x interface{}) (h common.Hash) {
	sha := sha3.NewLegacyKeccak256()
	rlp.Encode(sha, x)
	sha.Sum(h[:0])
	return h
}

func uint256ToBig(v *uint256.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToBig()
}

func uint256OrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
