// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

// refunder runs a local refunder chain: it deploys the registry and factory,
// provisions vaults and relays calls through them.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML configuration file",
		EnvVars: []string{"REFUNDER_CONFIG"},
	}
	dataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the chain database and deployment record",
	}
	chainIDFlag = &cli.Int64Flag{
		Name:  "chainid",
		Usage: "Chain id used for replay protection",
	}
	gasPriceFlag = &cli.StringFlag{
		Name:  "gasprice",
		Usage: "Gas price of sent transactions (wei, or with gwei/ether suffix)",
	}
	gasLimitFlag = &cli.Uint64Flag{
		Name:  "gaslimit",
		Usage: "Gas limit of sent transactions (0 = estimate)",
	}
	accountFlag = &cli.IntFlag{
		Name:  "account",
		Usage: "Index of the configured key to send transactions from",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "refunder",
		Usage: "relay-and-refund vaults on a local chain",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			chainIDFlag,
			gasPriceFlag,
			gasLimitFlag,
			accountFlag,
			verbosityFlag,
		},
		Before: func(ctx *cli.Context) error {
			setupLogging(ctx.Int(verbosityFlag.Name))
			return nil
		},
		Commands: []*cli.Command{
			initCommand,
			createCommand,
			depositCommand,
			withdrawCommand,
			setGasPriceCapCommand,
			whitelistCommand,
			pauseCommand,
			unpauseCommand,
			relayCommand,
			inspectCommand,
			accountsCommand,
			refundersCommand,
		},
	}
}

func setupLogging(verbosity int) {
	fd := os.Stderr.Fd()
	useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(verbosity), useColor)
	log.SetDefault(log.NewLogger(handler))
}

// makeConfig assembles the configuration from defaults, the config file and
// command line flags, in increasing order of precedence.
func makeConfig(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		if err := loadConfig(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if ctx.IsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.String(dataDirFlag.Name)
	}
	if ctx.IsSet(chainIDFlag.Name) {
		cfg.ChainID.SetInt64(ctx.Int64(chainIDFlag.Name))
	}
	if ctx.IsSet(gasPriceFlag.Name) {
		price, err := parseAmount(ctx.String(gasPriceFlag.Name))
		if err != nil {
			return Config{}, fmt.Errorf("--%s: %w", gasPriceFlag.Name, err)
		}
		cfg.GasPrice = price
	}
	if ctx.IsSet(gasLimitFlag.Name) {
		cfg.GasLimit = ctx.Uint64(gasLimitFlag.Name)
	}
	if err := cfg.chainConfig().CheckConfigValid(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
