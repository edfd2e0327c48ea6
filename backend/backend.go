// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.
//
// Package backend implements a single-writer chain that mines every submitted
// transaction into its own block. It serves contract bindings in tests and the
// refunder command line tool.

package backend

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/HITEYY/go-refunder/accounts/bind"
	"github.com/HITEYY/go-refunder/core"
	"github.com/HITEYY/go-refunder/core/rawdb"
	"github.com/HITEYY/go-refunder/core/state"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/log"
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

const (
	// DefaultBlockPeriod is the number of seconds between two blocks.
	DefaultBlockPeriod = 2

	// inmemoryReceipts is the number of recent receipts to keep in memory
	inmemoryReceipts = 1024
)

var (
	// DefaultGasPrice is the price suggested to transactors when none is configured.
	DefaultGasPrice = big.NewInt(ethparams.GWei)

	errBlockNumberUnsupported = errors.New("backend cannot access blocks other than the latest block")
	errChainIDMismatch        = errors.New("database chain id does not match config")
)

// Account is a genesis account.
type Account struct {
	Balance *big.Int
	Nonce   uint64
	Code    []byte
}

// Alloc specifies the initial state of a new chain.
type Alloc map[common.Address]Account

// Backend is a chain that executes transactions immediately. All writes go
// through one lock, so transactions never interleave.
type Backend struct {
	db        ethdb.KeyValueStore
	config    *params.ChainConfig
	processor *core.StateProcessor
	coinbase  common.Address
	gasPrice  *big.Int

	mu       sync.Mutex
	head     uint64
	receipts *lru.Cache[common.Hash, *types.Receipt] // Recent receipts, carrying execution errors
	logger   log.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithCoinbase sets the account collecting transaction fees.
func WithCoinbase(coinbase common.Address) Option {
	return func(b *Backend) { b.coinbase = coinbase }
}

// WithGasPrice sets the gas price suggested to transactors.
func WithGasPrice(price *big.Int) Option {
	return func(b *Backend) { b.gasPrice = new(big.Int).Set(price) }
}

// New opens a chain on db running natives. A fresh database is initialised
// with config and alloc; an existing one must match config.
func New(db ethdb.KeyValueStore, config *params.ChainConfig, natives vm.Natives, alloc Alloc, opts ...Option) (*Backend, error) {
	if err := config.CheckConfigValid(); err != nil {
		return nil, err
	}
	b := &Backend{
		db:        db,
		config:    config,
		processor: core.NewStateProcessor(config, natives),
		gasPrice:  new(big.Int).Set(DefaultGasPrice),
		receipts:  lru.NewCache[common.Hash, *types.Receipt](inmemoryReceipts),
		logger:    log.New("module", "backend", "chainid", config.ChainID),
	}
	for _, opt := range opts {
		opt(b)
	}
	if stored := rawdb.ReadChainConfig(db); stored != nil {
		if stored.ChainID.Cmp(config.ChainID) != 0 {
			return nil, fmt.Errorf("%w: have %v want %v", errChainIDMismatch, stored.ChainID, config.ChainID)
		}
		b.head = rawdb.ReadHeadBlockNumber(db)
		b.logger.Info("Loaded chain", "head", b.head)
		return b, nil
	}
	if err := b.writeGenesis(alloc); err != nil {
		return nil, err
	}
	return b, nil
}

// NewSimulated creates an in-memory chain with the default config.
func NewSimulated(natives vm.Natives, alloc Alloc, opts ...Option) *Backend {
	b, err := New(memorydb.New(), params.DefaultConfig, natives, alloc, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Backend) writeGenesis(alloc Alloc) error {
	statedb := state.New(b.db)
	for addr, account := range alloc {
		if account.Balance != nil {
			balance, overflow := uint256.FromBig(account.Balance)
			if overflow {
				return fmt.Errorf("genesis balance of %s overflows", addr)
			}
			statedb.AddBalance(addr, balance)
		}
		if account.Nonce > 0 {
			statedb.SetNonce(addr, account.Nonce)
		}
		if len(account.Code) > 0 {
			statedb.SetCode(addr, account.Code)
		}
	}
	batch := b.db.NewBatch()
	statedb.Commit(batch)
	rawdb.WriteChainConfig(batch, b.config)
	rawdb.WriteHeadBlockNumber(batch, 0)
	if err := batch.Write(); err != nil {
		return err
	}
	b.logger.Info("Wrote genesis", "accounts", len(alloc))
	return nil
}

// Close releases the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Config returns the chain config.
func (b *Backend) Config() *params.ChainConfig {
	return b.config
}

func (b *Backend) blockContext(number uint64) vm.BlockContext {
	return core.NewEVMBlockContext(number, number*DefaultBlockPeriod, b.coinbase, b.config.BlockGasLimit)
}

func (b *Backend) checkBlockNumber(blockNumber *big.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if blockNumber != nil && blockNumber.Cmp(new(big.Int).SetUint64(b.head)) != 0 {
		return errBlockNumberUnsupported
	}
	return nil
}

// ChainID returns the chain id used for replay protection.
func (b *Backend) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(b.config.ChainID), nil
}

// BlockNumber returns the number of the latest block.
func (b *Backend) BlockNumber(ctx context.Context) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.head, nil
}

// BalanceAt returns the balance of an account at the latest block.
func (b *Backend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if err := b.checkBlockNumber(blockNumber); err != nil {
		return nil, err
	}
	return state.New(b.db).GetBalance(account).ToBig(), nil
}

// NonceAt returns the nonce of an account at the latest block.
func (b *Backend) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	if err := b.checkBlockNumber(blockNumber); err != nil {
		return 0, err
	}
	return state.New(b.db).GetNonce(account), nil
}

// PendingNonceAt returns the nonce the next transaction of account must use.
// Transactions are mined on submission, so pending equals latest.
func (b *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return b.NonceAt(ctx, account, nil)
}

// CodeAt returns the code of an account at the latest block.
func (b *Backend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if err := b.checkBlockNumber(blockNumber); err != nil {
		return nil, err
	}
	return state.New(b.db).GetCode(contract), nil
}

// StorageAt returns a storage slot of an account at the latest block.
func (b *Backend) StorageAt(ctx context.Context, contract common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error) {
	if err := b.checkBlockNumber(blockNumber); err != nil {
		return nil, err
	}
	value := state.New(b.db).GetState(contract, key)
	return value[:], nil
}

// SuggestGasPrice returns the configured gas price.
func (b *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(b.gasPrice), nil
}

// TransactionReceipt returns the receipt of a mined transaction.
func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if receipt, ok := b.receipts.Get(txHash); ok {
		return receipt, nil
	}
	receipt := rawdb.ReadReceipt(b.db, txHash)
	if receipt == nil {
		return nil, bind.ErrNotMined
	}
	return receipt, nil
}

// TransactionByHash returns a mined transaction.
func (b *Backend) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, error) {
	tx := rawdb.ReadTransaction(b.db, txHash)
	if tx == nil {
		return nil, bind.ErrNotMined
	}
	return tx, nil
}

// SendTransaction executes tx in a new block. Invalid transactions are
// rejected with an error; failed executions are mined with a failed receipt.
func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	number := b.head + 1
	statedb := state.New(b.db)
	receipt, err := b.processor.ApplyTransaction(statedb, b.blockContext(number), tx)
	if err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}
	batch := b.db.NewBatch()
	statedb.Commit(batch)
	rawdb.WriteTransaction(batch, number, tx)
	rawdb.WriteReceipt(batch, receipt)
	rawdb.WriteHeadBlockNumber(batch, number)
	if err := batch.Write(); err != nil {
		return err
	}
	b.head = number
	b.receipts.Add(tx.Hash(), receipt)

	if receipt.Failed() {
		b.logger.Warn("Transaction failed", "number", number, "hash", tx.Hash(), "gasUsed", receipt.GasUsed, "err", receipt.Err)
	} else {
		b.logger.Info("Mined transaction", "number", number, "hash", tx.Hash(), "gasUsed", receipt.GasUsed, "logs", len(receipt.Logs))
	}
	return nil
}

// toMessage converts a call request into a message that skips nonce checks.
func (b *Backend) toMessage(call types.CallMsg, gas uint64) *core.Message {
	msg := &core.Message{
		From:              call.From,
		To:                call.To,
		GasLimit:          gas,
		GasPrice:          new(uint256.Int),
		Value:             new(uint256.Int),
		Data:              call.Data,
		SkipAccountChecks: true,
	}
	if call.GasPrice != nil {
		msg.GasPrice.Set(call.GasPrice)
	}
	if call.Value != nil {
		msg.Value.Set(call.Value)
	}
	return msg
}

// execute runs msg on a throwaway copy of the latest state.
func (b *Backend) execute(msg *core.Message) (*core.ExecutionResult, error) {
	statedb := state.New(b.db)
	evm := vm.NewEVM(b.blockContext(b.head+1), core.NewEVMTxContext(msg), statedb, b.config, b.processor.Natives())
	return core.ApplyMessage(evm, msg)
}

// CallContract executes a read-only call against the latest state. Nothing
// it does is persisted.
func (b *Backend) CallContract(ctx context.Context, call types.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := b.checkBlockNumber(blockNumber); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	gas := call.Gas
	if gas == 0 {
		gas = b.config.BlockGasLimit
	}
	result, err := b.execute(b.toMessage(call, gas))
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return result.Revert(), result.Err
	}
	return result.Return(), nil
}
