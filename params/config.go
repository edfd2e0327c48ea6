// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package params

import (
	"fmt"
	"math/big"
)

// ChainConfig is the core config which determines the blockchain settings.
type ChainConfig struct {
	ChainID       *big.Int `json:"chainId"`       // chainId identifies the current chain and is used for replay protection
	BlockGasLimit uint64   `json:"blockGasLimit"` // upper bound for the gas limit of a single transaction
}

// DefaultChainID is the chain id used by local and test deployments.
var DefaultChainID = big.NewInt(1719)

// DefaultConfig contains the chain parameters of a local refunder chain.
var DefaultConfig = &ChainConfig{
	ChainID:       DefaultChainID,
	BlockGasLimit: 30_000_000,
}

// CheckConfigValid reports whether the config can be used to run a chain.
func (c *ChainConfig) CheckConfigValid() error {
	if c == nil {
		return fmt.Errorf("missing chain config")
	}
	if c.ChainID == nil || c.ChainID.Sign() <= 0 {
		return fmt.Errorf("invalid chain id %v", c.ChainID)
	}
	if c.BlockGasLimit < TxGas {
		return fmt.Errorf("block gas limit %d below intrinsic transaction gas %d", c.BlockGasLimit, TxGas)
	}
	return nil
}

func (c *ChainConfig) String() string {
	return fmt.Sprintf("{ChainID: %v BlockGasLimit: %d}", c.ChainID, c.BlockGasLimit)
}
