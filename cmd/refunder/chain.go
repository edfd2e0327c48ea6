// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/HITEYY/go-refunder/accounts/bind"
	"github.com/HITEYY/go-refunder/backend"
	"github.com/HITEYY/go-refunder/core/refund"
	"github.com/HITEYY/go-refunder/core/refund/contracts"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/HITEYY/go-refunder/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

// chain is an opened datadir.
type chain struct {
	cfg        Config
	backend    *backend.Backend
	deployment *Deployment
}

// genesisAlloc funds every configured account.
func genesisAlloc(cfg Config) backend.Alloc {
	alloc := make(backend.Alloc, len(cfg.Keys))
	for _, key := range cfg.Keys {
		alloc[crypto.PubkeyToAddress(key.PublicKey)] = backend.Account{
			Balance: new(big.Int).Set(cfg.GenesisBalance),
		}
	}
	return alloc
}

// openBackend opens the chain database of the datadir, writing genesis on
// first use.
func openBackend(cfg Config) (*backend.Backend, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, err
	}
	db, err := leveldb.New(filepath.Join(cfg.DataDir, chainDataDir), cfg.DatabaseCache, cfg.DatabaseHandles, "refunder/db/chaindata/", false)
	if err != nil {
		return nil, fmt.Errorf("open chain database: %w", err)
	}
	natives := vm.MergeNatives(refund.Natives, contracts.Natives)
	b, err := backend.New(db, cfg.chainConfig(), natives, genesisAlloc(cfg),
		backend.WithCoinbase(cfg.Coinbase),
		backend.WithGasPrice(cfg.GasPrice),
	)
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// openChain opens an initialised datadir.
func openChain(cfg Config) (*chain, error) {
	deployment, err := readDeployment(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	if len(cfg.Keys) == 0 && len(deployment.DevKeys) > 0 {
		if cfg.Keys, err = parseKeys(deployment.DevKeys); err != nil {
			return nil, fmt.Errorf("load dev keys: %w", err)
		}
	}
	b, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	return &chain{cfg: cfg, backend: b, deployment: deployment}, nil
}

func (c *chain) Close() error {
	return c.backend.Close()
}

// transactor returns signing options for the configured account index.
func (c *chain) transactor(ctx context.Context, index int) (*bind.TransactOpts, error) {
	key, err := c.cfg.key(index)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, c.cfg.ChainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	opts.GasPrice = new(big.Int).Set(c.cfg.GasPrice)
	opts.GasLimit = c.cfg.GasLimit
	return opts, nil
}

func (c *chain) callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

// mined waits for tx and turns a failed execution into an error.
func (c *chain) mined(ctx context.Context, tx *types.Transaction, err error) (*types.Receipt, error) {
	if err != nil {
		return nil, err
	}
	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, err
	}
	log.Debug("Transaction mined", "hash", tx.Hash(), "block", receipt.BlockNumber, "gas", receipt.GasUsed, "status", receipt.Status)
	if receipt.Failed() {
		if receipt.Err != nil {
			return receipt, fmt.Errorf("transaction %s failed: %w", tx.Hash().TerminalString(), receipt.Err)
		}
		return receipt, fmt.Errorf("transaction %s failed: %s", tx.Hash().TerminalString(), receipt.RevertReason)
	}
	return receipt, nil
}

func (c *chain) refunder(addr string) (*refund.Refunder, error) {
	address, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}
	return refund.NewRefunder(address, c.backend), nil
}

// refunderTransactor binds the --refunder vault and the sending account.
func (c *chain) refunderTransactor(ctx *cli.Context) (*refund.Refunder, *bind.TransactOpts, error) {
	refunder, err := c.refunder(ctx.String(refunderFlag.Name))
	if err != nil {
		return nil, nil, err
	}
	opts, err := c.transactor(ctx.Context, ctx.Int(accountFlag.Name))
	if err != nil {
		return nil, nil, err
	}
	return refunder, opts, nil
}

func (c *chain) registry() *refund.Registry {
	return refund.NewRegistry(c.deployment.Registry, c.backend)
}

func (c *chain) factory() *refund.Factory {
	return refund.NewFactory(c.deployment.Factory, c.backend)
}
