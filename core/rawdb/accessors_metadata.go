// Copyright 2024 The go-obsidian Authors
// This file is part of the go-obsidian library.

package rawdb

import (
	"encoding/json"

	"github.com/HITEYY/go-refunder/params"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
)

// ReadChainConfig retrieves the chain config the database was initialised
// with, nil for a fresh database.
func ReadChainConfig(db ethdb.KeyValueReader) *params.ChainConfig {
	data, _ := db.Get(configKey)
	if len(data) == 0 {
		return nil
	}
	var config params.ChainConfig
	if err := json.Unmarshal(data, &config); err != nil {
		log.Error("Invalid chain config JSON", "err", err)
		return nil
	}
	return &config
}

// WriteChainConfig writes the chain config to the database.
func WriteChainConfig(db ethdb.KeyValueWriter, cfg *params.ChainConfig) {
	if cfg == nil {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		log.Crit("Failed to JSON encode chain config", "err", err)
	}
	if err := db.Put(configKey, data); err != nil {
		log.Crit("Failed to store chain config", "err", err)
	}
}
