// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package main

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	ethparams "github.com/ethereum/go-ethereum/params"
)

const (
	deploymentFile = "deployment.toml"
	chainDataDir   = "chaindata"
)

var (
	errNoKeys          = errors.New("no account keys configured")
	errAccountRange    = errors.New("account index out of range")
	errNotInitialized  = errors.New("datadir not initialised, run init first")
	errInvalidAmount   = errors.New("invalid amount")
	errInvalidAddress  = errors.New("invalid address")
	errAlreadyDeployed = errors.New("datadir already initialised")
)

// Config holds the settings of a refunder chain datadir.
type Config struct {
	DataDir        string
	ChainID        *big.Int
	BlockGasLimit  uint64
	Coinbase       common.Address
	GasPrice       *big.Int
	GasLimit       uint64 // 0 = estimate
	GenesisBalance *big.Int
	Keys           []*ecdsa.PrivateKey

	DatabaseCache   int
	DatabaseHandles int
}

func defaultConfig() Config {
	return Config{
		DataDir:         "refunder-data",
		ChainID:         new(big.Int).Set(params.DefaultChainID),
		BlockGasLimit:   params.DefaultConfig.BlockGasLimit,
		GasPrice:        big.NewInt(ethparams.GWei),
		GenesisBalance:  new(big.Int).Mul(big.NewInt(1000), big.NewInt(ethparams.Ether)),
		DatabaseCache:   16,
		DatabaseHandles: 16,
	}
}

// chainConfig returns the chain parameters described by the config.
func (c *Config) chainConfig() *params.ChainConfig {
	return &params.ChainConfig{
		ChainID:       new(big.Int).Set(c.ChainID),
		BlockGasLimit: c.BlockGasLimit,
	}
}

// key returns the private key of account index.
func (c *Config) key(index int) (*ecdsa.PrivateKey, error) {
	if len(c.Keys) == 0 {
		return nil, errNoKeys
	}
	if index < 0 || index >= len(c.Keys) {
		return nil, fmt.Errorf("%w: %d of %d", errAccountRange, index, len(c.Keys))
	}
	return c.Keys[index], nil
}

// refunder config.toml key mapping.
type fileConfig struct {
	DataDir         string   `toml:"datadir"`
	ChainID         int64    `toml:"chain_id"`
	BlockGasLimit   uint64   `toml:"block_gas_limit"`
	Coinbase        string   `toml:"coinbase"`
	GasPrice        string   `toml:"gas_price"`
	GasLimit        uint64   `toml:"gas_limit"`
	GenesisBalance  string   `toml:"genesis_balance"`
	Keys            []string `toml:"keys"`
	DatabaseCache   int      `toml:"database_cache"`
	DatabaseHandles int      `toml:"database_handles"`
}

// loadConfig overlays the TOML file at path onto cfg.
func loadConfig(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load refunder config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load refunder config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("datadir") {
		dir := strings.TrimSpace(raw.DataDir)
		if dir != "" && !filepath.IsAbs(dir) {
			dir = filepath.Join(filepath.Dir(path), dir)
		}
		cfg.DataDir = dir
	}
	if meta.IsDefined("chain_id") {
		if raw.ChainID <= 0 {
			return fmt.Errorf("load refunder config: invalid chain_id %d", raw.ChainID)
		}
		cfg.ChainID = big.NewInt(raw.ChainID)
	}
	if meta.IsDefined("block_gas_limit") {
		cfg.BlockGasLimit = raw.BlockGasLimit
	}
	if meta.IsDefined("coinbase") {
		addr, err := parseAddress(raw.Coinbase)
		if err != nil {
			return fmt.Errorf("load refunder config: coinbase: %w", err)
		}
		cfg.Coinbase = addr
	}
	if meta.IsDefined("gas_price") {
		price, err := parseAmount(raw.GasPrice)
		if err != nil {
			return fmt.Errorf("load refunder config: gas_price: %w", err)
		}
		cfg.GasPrice = price
	}
	if meta.IsDefined("gas_limit") {
		cfg.GasLimit = raw.GasLimit
	}
	if meta.IsDefined("genesis_balance") {
		balance, err := parseAmount(raw.GenesisBalance)
		if err != nil {
			return fmt.Errorf("load refunder config: genesis_balance: %w", err)
		}
		cfg.GenesisBalance = balance
	}
	if meta.IsDefined("keys") {
		keys, err := parseKeys(raw.Keys)
		if err != nil {
			return fmt.Errorf("load refunder config: %w", err)
		}
		cfg.Keys = keys
	}
	if meta.IsDefined("database_cache") {
		cfg.DatabaseCache = raw.DatabaseCache
	}
	if meta.IsDefined("database_handles") {
		cfg.DatabaseHandles = raw.DatabaseHandles
	}
	return nil
}

func parseKeys(hexkeys []string) ([]*ecdsa.PrivateKey, error) {
	keys := make([]*ecdsa.PrivateKey, 0, len(hexkeys))
	for i, h := range hexkeys {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(h), "0x"))
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// parseAddress parses a 0x-prefixed hex address.
func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", errInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// parseAmount parses a decimal amount of wei. The suffixes "gwei" and
// "ether" scale the value accordingly.
func parseAmount(s string) (*big.Int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	unit := big.NewInt(1)
	switch {
	case strings.HasSuffix(s, "gwei"):
		unit, s = big.NewInt(ethparams.GWei), strings.TrimSuffix(s, "gwei")
	case strings.HasSuffix(s, "ether"):
		unit, s = big.NewInt(ethparams.Ether), strings.TrimSuffix(s, "ether")
	case strings.HasSuffix(s, "wei"):
		s = strings.TrimSuffix(s, "wei")
	}
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", errInvalidAmount, s)
	}
	return v.Mul(v, unit), nil
}

// Deployment records the contracts and generated accounts of a datadir.
type Deployment struct {
	Registry  common.Address `toml:"registry"`
	Factory   common.Address `toml:"factory"`
	Greeter   common.Address `toml:"greeter,omitempty"`
	Permitter common.Address `toml:"permitter,omitempty"`

	// DevKeys are accounts generated by init when none were configured.
	DevKeys []string `toml:"dev_keys,omitempty"`
}

func readDeployment(datadir string) (*Deployment, error) {
	path := filepath.Join(datadir, deploymentFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, errNotInitialized
	}
	var d Deployment
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return nil, fmt.Errorf("load deployment: %w", err)
	}
	return &d, nil
}

func writeDeployment(datadir string, d *Deployment) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(d); err != nil {
		return fmt.Errorf("encode deployment: %w", err)
	}
	return os.WriteFile(filepath.Join(datadir, deploymentFile), buf.Bytes(), 0o600)
}
