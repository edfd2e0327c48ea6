// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/HITEYY/go-refunder/core/refund"
	"github.com/HITEYY/go-refunder/core/refund/contracts"
	"github.com/HITEYY/go-refunder/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var (
	refunderFlag = &cli.StringFlag{
		Name:     "refunder",
		Usage:    "Address of the vault",
		Required: true,
	}
	amountFlag = &cli.StringFlag{
		Name:     "amount",
		Usage:    "Amount of native value (wei, or with gwei/ether suffix)",
		Required: true,
	}
	priceFlag = &cli.StringFlag{
		Name:     "price",
		Usage:    "Maximum refunded gas price (wei, or with gwei/ether suffix)",
		Required: true,
	}
	targetFlag = &cli.StringFlag{
		Name:  "target",
		Usage: "Address of the relayed contract",
	}
	selectorFlag = &cli.StringFlag{
		Name:  "selector",
		Usage: "Function selector as 0x-prefixed hex or canonical signature",
	}
	validatorFlag = &cli.StringFlag{
		Name:  "validator",
		Usage: "Address of the contract approving relays (empty = none)",
	}
	validatorSelectorFlag = &cli.StringFlag{
		Name:  "validator-selector",
		Usage: "Selector invoked on the validator",
	}
	disableFlag = &cli.BoolFlag{
		Name:  "disable",
		Usage: "Remove the pair from the whitelist",
	}
	argsFlag = &cli.StringFlag{
		Name:  "args",
		Usage: "Hex encoded arguments forwarded after the selector",
	}
	textFlag = &cli.StringFlag{
		Name:  "text",
		Usage: "Raw text forwarded after the selector, instead of --args",
	}
	greeterFlag = &cli.BoolFlag{
		Name:  "greeter",
		Usage: "Also deploy a greeter target and its permitter",
	}
	greetingFlag = &cli.StringFlag{
		Name:  "greeting",
		Usage: "Initial greeting of the deployed greeter",
		Value: "Hello, world!",
	}
)

var (
	initCommand = &cli.Command{
		Name:   "init",
		Usage:  "Write genesis and deploy the registry and factory",
		Flags:  []cli.Flag{greeterFlag, greetingFlag},
		Action: initChain,
	}
	createCommand = &cli.Command{
		Name:   "create",
		Usage:  "Create a vault owned by the sending account",
		Action: createRefunder,
	}
	depositCommand = &cli.Command{
		Name:   "deposit",
		Usage:  "Fund a vault",
		Flags:  []cli.Flag{refunderFlag, amountFlag},
		Action: deposit,
	}
	withdrawCommand = &cli.Command{
		Name:   "withdraw",
		Usage:  "Withdraw funds from a vault to its owner",
		Flags:  []cli.Flag{refunderFlag, amountFlag},
		Action: withdraw,
	}
	setGasPriceCapCommand = &cli.Command{
		Name:   "set-gas-price-cap",
		Usage:  "Set the maximum gas price a vault refunds",
		Flags:  []cli.Flag{refunderFlag, priceFlag},
		Action: setGasPriceCap,
	}
	whitelistCommand = &cli.Command{
		Name:   "whitelist",
		Usage:  "Add or remove a (target, selector) pair from a vault",
		Flags:  []cli.Flag{refunderFlag, targetFlag, selectorFlag, validatorFlag, validatorSelectorFlag, disableFlag},
		Action: whitelist,
	}
	pauseCommand = &cli.Command{
		Name:   "pause",
		Usage:  "Stop a vault from refunding relays",
		Flags:  []cli.Flag{refunderFlag},
		Action: func(ctx *cli.Context) error { return setPaused(ctx, true) },
	}
	unpauseCommand = &cli.Command{
		Name:   "unpause",
		Usage:  "Resume refunding relays",
		Flags:  []cli.Flag{refunderFlag},
		Action: func(ctx *cli.Context) error { return setPaused(ctx, false) },
	}
	relayCommand = &cli.Command{
		Name:   "relay",
		Usage:  "Relay a call through a vault and collect the refund",
		Flags:  []cli.Flag{refunderFlag, targetFlag, selectorFlag, argsFlag, textFlag},
		Action: relay,
	}
	inspectCommand = &cli.Command{
		Name:   "inspect",
		Usage:  "Show the settings of a vault",
		Flags:  []cli.Flag{refunderFlag, targetFlag, selectorFlag},
		Action: inspect,
	}
	accountsCommand = &cli.Command{
		Name:   "accounts",
		Usage:  "List the configured accounts and their balances",
		Action: listAccounts,
	}
	refundersCommand = &cli.Command{
		Name:   "refunders",
		Usage:  "List registered vaults, optionally those refunding a pair",
		Flags:  []cli.Flag{targetFlag, selectorFlag},
		Action: listRefunders,
	}
)

// withChain opens the configured datadir for the duration of fn.
func withChain(ctx *cli.Context, fn func(c *chain) error) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	c, err := openChain(cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func initChain(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	if _, err := readDeployment(cfg.DataDir); err == nil {
		return fmt.Errorf("%w: %s", errAlreadyDeployed, cfg.DataDir)
	}
	deployment := new(Deployment)
	if len(cfg.Keys) == 0 {
		key, err := crypto.GenerateKey()
		if err != nil {
			return err
		}
		cfg.Keys = append(cfg.Keys, key)
		deployment.DevKeys = append(deployment.DevKeys, hexutil.Encode(crypto.FromECDSA(key)))
		log.Warn("Generated development account", "address", crypto.PubkeyToAddress(key.PublicKey))
	}
	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	c := &chain{cfg: cfg, backend: b, deployment: deployment}
	defer c.Close()

	opts, err := c.transactor(ctx.Context, ctx.Int(accountFlag.Name))
	if err != nil {
		return err
	}
	registry, tx, _, err := refund.DeployRegistry(opts, b)
	if _, err := c.mined(ctx.Context, tx, err); err != nil {
		return fmt.Errorf("deploy registry: %w", err)
	}
	factory, tx, _, err := refund.DeployFactory(opts, b, registry)
	if _, err := c.mined(ctx.Context, tx, err); err != nil {
		return fmt.Errorf("deploy factory: %w", err)
	}
	deployment.Registry, deployment.Factory = registry, factory

	if ctx.Bool(greeterFlag.Name) {
		greetSel := types.SelectorFromSig("greet()")
		greeter, tx, _, err := contracts.DeployGreeter(opts, b, ctx.String(greetingFlag.Name), greetSel, nil)
		if _, err := c.mined(ctx.Context, tx, err); err != nil {
			return fmt.Errorf("deploy greeter: %w", err)
		}
		permitter, tx, _, err := contracts.DeployPermitter(opts, b, greeter, greetSel, nil)
		if _, err := c.mined(ctx.Context, tx, err); err != nil {
			return fmt.Errorf("deploy permitter: %w", err)
		}
		deployment.Greeter, deployment.Permitter = greeter, permitter
	}
	if err := writeDeployment(cfg.DataDir, deployment); err != nil {
		return err
	}
	log.Info("Initialised refunder chain", "datadir", cfg.DataDir, "chainid", cfg.ChainID)

	w := ctx.App.Writer
	fmt.Fprintf(w, "Registry:  %s\n", deployment.Registry)
	fmt.Fprintf(w, "Factory:   %s\n", deployment.Factory)
	if deployment.Greeter != (common.Address{}) {
		fmt.Fprintf(w, "Greeter:   %s\n", deployment.Greeter)
		fmt.Fprintf(w, "Permitter: %s\n", deployment.Permitter)
	}
	return nil
}

func createRefunder(ctx *cli.Context) error {
	return withChain(ctx, func(c *chain) error {
		opts, err := c.transactor(ctx.Context, ctx.Int(accountFlag.Name))
		if err != nil {
			return err
		}
		factory := c.factory()
		tx, err := factory.CreateRefunder(opts)
		receipt, err := c.mined(ctx.Context, tx, err)
		if err != nil {
			return err
		}
		created, err := factory.CreatedRefunder(receipt)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "Refunder: %s\nOwner:    %s\n", created.RefunderAddress, created.Owner)
		return nil
	})
}

func deposit(ctx *cli.Context) error {
	return withChain(ctx, func(c *chain) error {
		amount, err := parseAmount(ctx.String(amountFlag.Name))
		if err != nil {
			return err
		}
		refunder, opts, err := c.refunderTransactor(ctx)
		if err != nil {
			return err
		}
		opts.Value = amount
		tx, err := refunder.Deposit(opts)
		if _, err := c.mined(ctx.Context, tx, err); err != nil {
			return err
		}
		return printBalance(ctx, c, refunder)
	})
}

func withdraw(ctx *cli.Context) error {
	return withChain(ctx, func(c *chain) error {
		amount, err := parseAmount(ctx.String(amountFlag.Name))
		if err != nil {
			return err
		}
		refunder, opts, err := c.refunderTransactor(ctx)
		if err != nil {
			return err
		}
		tx, err := refunder.Withdraw(opts, amount)
		if _, err := c.mined(ctx.Context, tx, err); err != nil {
			return err
		}
		return printBalance(ctx, c, refunder)
	})
}

func setGasPriceCap(ctx *cli.Context) error {
	return withChain(ctx, func(c *chain) error {
		price, err := parseAmount(ctx.String(priceFlag.Name))
		if err != nil {
			return err
		}
		refunder, opts, err := c.refunderTransactor(ctx)
		if err != nil {
			return err
		}
		tx, err := refunder.SetGasPriceCap(opts, price)
		_, err = c.mined(ctx.Context, tx, err)
		return err
	})
}

func whitelist(ctx *cli.Context) error {
	return withChain(ctx, func(c *chain) error {
		target, sel, err := pairFlags(ctx)
		if err != nil {
			return err
		}
		var (
			validator    common.Address
			validatorSel types.Selector
		)
		if v := ctx.String(validatorFlag.Name); v != "" {
			if validator, err = parseAddress(v); err != nil {
				return err
			}
			if validatorSel, err = parseSelector(ctx.String(validatorSelectorFlag.Name)); err != nil {
				return fmt.Errorf("--%s: %w", validatorSelectorFlag.Name, err)
			}
		}
		refunder, opts, err := c.refunderTransactor(ctx)
		if err != nil {
			return err
		}
		tx, err := refunder.UpdateRefundable(opts, target, sel, !ctx.Bool(disableFlag.Name), validator, validatorSel)
		_, err = c.mined(ctx.Context, tx, err)
		return err
	})
}

func setPaused(ctx *cli.Context, paused bool) error {
	return withChain(ctx, func(c *chain) error {
		refunder, opts, err := c.refunderTransactor(ctx)
		if err != nil {
			return err
		}
		var tx *types.Transaction
		if paused {
			tx, err = refunder.Pause(opts)
		} else {
			tx, err = refunder.Unpause(opts)
		}
		_, err = c.mined(ctx.Context, tx, err)
		return err
	})
}

func relay(ctx *cli.Context) error {
	return withChain(ctx, func(c *chain) error {
		target, sel, err := pairFlags(ctx)
		if err != nil {
			return err
		}
		var args []byte
		if hex := ctx.String(argsFlag.Name); hex != "" {
			if args, err = hexutil.Decode(hex); err != nil {
				return fmt.Errorf("--%s: %w", argsFlag.Name, err)
			}
		}
		if ctx.IsSet(textFlag.Name) {
			args = []byte(ctx.String(textFlag.Name))
		}
		refunder, opts, err := c.refunderTransactor(ctx)
		if err != nil {
			return err
		}
		tx, err := refunder.RelayAndRefund(opts, target, sel, args)
		receipt, err := c.mined(ctx.Context, tx, err)
		if err != nil {
			return err
		}
		for _, l := range receipt.Logs {
			if l.Address != refunder.Address() {
				continue
			}
			event, err := refunder.ParseRelayAndRefund(*l)
			if err != nil {
				continue
			}
			fee := receipt.Fee().ToBig()
			w := ctx.App.Writer
			fmt.Fprintf(w, "Gas used: %d\n", receipt.GasUsed)
			fmt.Fprintf(w, "Fee:      %v\n", fee)
			fmt.Fprintf(w, "Refund:   %v\n", event.RefundAmount)
			fmt.Fprintf(w, "Net cost: %v\n", new(big.Int).Sub(fee, event.RefundAmount))
			return nil
		}
		return fmt.Errorf("no RelayAndRefund event in receipt %s", receipt.TxHash)
	})
}

func inspect(ctx *cli.Context) error {
	return withChain(ctx, func(c *chain) error {
		refunder, err := c.refunder(ctx.String(refunderFlag.Name))
		if err != nil {
			return err
		}
		opts := c.callOpts(ctx.Context)
		owner, err := refunder.Owner(opts)
		if err != nil {
			return err
		}
		registry, err := refunder.Registry(opts)
		if err != nil {
			return err
		}
		limit, err := refunder.GasPriceCap(opts)
		if err != nil {
			return err
		}
		paused, err := refunder.Paused(opts)
		if err != nil {
			return err
		}
		version, err := refund.NewRegistry(registry, c.backend).RefunderVersion(opts, refunder.Address())
		if err != nil {
			return err
		}
		w := ctx.App.Writer
		fmt.Fprintf(w, "Owner:         %s\n", owner)
		fmt.Fprintf(w, "Registry:      %s\n", registry)
		fmt.Fprintf(w, "Version:       %d\n", version)
		fmt.Fprintf(w, "Gas price cap: %v\n", limit)
		fmt.Fprintf(w, "Paused:        %t\n", paused)
		if err := printBalance(ctx, c, refunder); err != nil {
			return err
		}
		if !ctx.IsSet(targetFlag.Name) {
			return nil
		}
		target, sel, err := pairFlags(ctx)
		if err != nil {
			return err
		}
		record, err := refunder.GetRefundable(opts, target, sel)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Refundable:    %t\n", record.IsSupported)
		if record.HasValidator() {
			fmt.Fprintf(w, "Validator:     %s %s\n", record.ValidatingContract, record.ValidatingIdentifier)
		}
		return nil
	})
}

func listAccounts(ctx *cli.Context) error {
	return withChain(ctx, func(c *chain) error {
		w := ctx.App.Writer
		for i, key := range c.cfg.Keys {
			addr := crypto.PubkeyToAddress(key.PublicKey)
			balance, err := c.backend.BalanceAt(ctx.Context, addr, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d %s %v\n", i, addr, balance)
		}
		return nil
	})
}

func listRefunders(ctx *cli.Context) error {
	return withChain(ctx, func(c *chain) error {
		registry := c.registry()
		opts := c.callOpts(ctx.Context)
		w := ctx.App.Writer
		if ctx.IsSet(targetFlag.Name) {
			target, sel, err := pairFlags(ctx)
			if err != nil {
				return err
			}
			refunders, err := registry.RefundersFor(opts, target, sel)
			if err != nil {
				return err
			}
			for _, addr := range refunders {
				fmt.Fprintln(w, addr)
			}
			return nil
		}
		count, err := registry.GetRefundersCount(opts)
		if err != nil {
			return err
		}
		for i := int64(0); i < count.Int64(); i++ {
			addr, err := registry.GetRefunder(opts, big.NewInt(i))
			if err != nil {
				return err
			}
			version, err := registry.RefunderVersion(opts, addr)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s v%d\n", addr, version)
		}
		return nil
	})
}

func printBalance(ctx *cli.Context, c *chain, refunder *refund.Refunder) error {
	balance, err := c.backend.BalanceAt(ctx.Context, refunder.Address(), nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Balance:       %v\n", balance)
	return nil
}

// pairFlags parses the --target and --selector flags.
func pairFlags(ctx *cli.Context) (common.Address, types.Selector, error) {
	target, err := parseAddress(ctx.String(targetFlag.Name))
	if err != nil {
		return common.Address{}, types.Selector{}, fmt.Errorf("--%s: %w", targetFlag.Name, err)
	}
	sel, err := parseSelector(ctx.String(selectorFlag.Name))
	if err != nil {
		return common.Address{}, types.Selector{}, fmt.Errorf("--%s: %w", selectorFlag.Name, err)
	}
	return target, sel, nil
}

// parseSelector accepts a 0x-prefixed selector or a canonical signature such
// as "setGreeting(string)".
func parseSelector(s string) (types.Selector, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return types.Selector{}, fmt.Errorf("missing selector")
	case strings.HasPrefix(s, "0x"):
		return types.HexToSelector(s)
	case !strings.Contains(s, "("):
		return types.Selector{}, fmt.Errorf("invalid signature %q", s)
	}
	return types.SelectorFromSig(s), nil
}
