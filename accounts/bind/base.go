// Copyright 2025 The go-obsidian Authors
// This file is part of the go-obsidian library.

package bind

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/HITEYY/go-refunder/core/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// BoundContract is the base wrapper object that reflects a contract on the
// chain. It contains a collection of methods that are used by the
// higher level contract bindings to operate.
type BoundContract struct {
	address    common.Address     // Deployment address of the contract on the chain
	abi        abi.ABI            // Reflect based ABI to access the correct methods
	caller     ContractCaller     // Read interface to interact with the blockchain
	transactor ContractTransactor // Write interface to interact with the blockchain
}

// NewBoundContract creates a low level contract interface through which calls
// and transactions may be made through.
func NewBoundContract(address common.Address, abi abi.ABI, caller ContractCaller, transactor ContractTransactor) *BoundContract {
	return &BoundContract{
		address:    address,
		abi:        abi,
		caller:     caller,
		transactor: transactor,
	}
}

// Address returns the address the contract is bound to.
func (c *BoundContract) Address() common.Address {
	return c.address
}

// DeployContract deploys a contract onto the chain and wraps the API around
// it. Deployment code is the native code marker followed by the packed
// constructor arguments.
func DeployContract(opts *TransactOpts, abi abi.ABI, code []byte, backend ContractBackend) (common.Address, *types.Transaction, *BoundContract, error) {
	c := NewBoundContract(common.Address{}, abi, backend, backend)

	tx, err := c.transact(opts, nil, code)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	c.address = crypto.CreateAddress(opts.From, tx.Nonce)
	return c.address, tx, c, nil
}

// Call invokes the (constant) contract method with params as input values and
// sets the output to result. The result type might be a single field for simple
// returns, a slice of interfaces for anonymous returns and a struct for named
// returns.
func (c *BoundContract) Call(opts *CallOpts, results *[]interface{}, method string, params ...interface{}) error {
	if results == nil {
		results = new([]interface{})
	}
	// Don't crash on a lazy user
	if opts == nil {
		opts = new(CallOpts)
	}
	input, err := c.abi.Pack(method, params...)
	if err != nil {
		return err
	}
	ctx := ensureContext(opts.Context)
	msg := types.CallMsg{From: opts.From, To: &c.address, Data: input}
	output, err := c.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return err
	}
	if len(output) == 0 {
		// Make sure we have a contract to operate on, and bail out otherwise.
		if code, err := c.caller.CodeAt(ctx, c.address, nil); err != nil {
			return err
		} else if len(code) == 0 {
			return ErrNoCode
		}
	}
	if len(*results) == 0 {
		res, err := c.abi.Unpack(method, output)
		*results = res
		return err
	}
	res := *results
	return c.abi.UnpackIntoInterface(res[0], method, output)
}

// Transact invokes the (paid) contract method with params as input values.
func (c *BoundContract) Transact(opts *TransactOpts, method string, params ...interface{}) (*types.Transaction, error) {
	input, err := c.abi.Pack(method, params...)
	if err != nil {
		return nil, err
	}
	return c.transact(opts, &c.address, input)
}

// RawTransact initiates a transaction with the given raw calldata as input.
// It's usually used to initiate transactions for invoking **Fallback** function.
func (c *BoundContract) RawTransact(opts *TransactOpts, calldata []byte) (*types.Transaction, error) {
	return c.transact(opts, &c.address, calldata)
}

// Transfer initiates a plain transaction to move funds to the contract, calling
// its default method if one is available.
func (c *BoundContract) Transfer(opts *TransactOpts) (*types.Transaction, error) {
	return c.transact(opts, &c.address, nil)
}

// transact executes an actual transaction invocation, first deriving any missing
// authorization fields, and then scheduling the transaction for execution.
func (c *BoundContract) transact(opts *TransactOpts, contract *common.Address, input []byte) (*types.Transaction, error) {
	if opts.Signer == nil {
		return nil, errors.New("no signer to authorize the transaction with")
	}
	ctx := ensureContext(opts.Context)

	value, overflow := uint256.FromBig(bigOrZero(opts.Value))
	if overflow {
		return nil, errors.New("transaction value overflows uint256")
	}
	nonce, err := c.getNonce(opts)
	if err != nil {
		return nil, err
	}
	gasPrice := opts.GasPrice
	if gasPrice == nil {
		if gasPrice, err = c.transactor.SuggestGasPrice(ctx); err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}
	}
	price, overflow := uint256.FromBig(gasPrice)
	if overflow {
		return nil, errors.New("gas price overflows uint256")
	}
	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		if gasLimit, err = c.estimateGasLimit(opts, contract, input, price, value); err != nil {
			return nil, fmt.Errorf("failed to estimate gas needed: %w", err)
		}
	}
	rawTx := &types.Transaction{
		Nonce:    nonce,
		GasPrice: price,
		Gas:      gasLimit,
		To:       contract,
		Value:    value,
		Data:     input,
	}
	signedTx, err := opts.Signer(opts.From, rawTx)
	if err != nil {
		return nil, err
	}
	if err := c.transactor.SendTransaction(ctx, signedTx); err != nil {
		return nil, err
	}
	return signedTx, nil
}

func (c *BoundContract) estimateGasLimit(opts *TransactOpts, contract *common.Address, input []byte, gasPrice, value *uint256.Int) (uint64, error) {
	if contract != nil {
		// Gas estimation cannot succeed without code for method invocations.
		if code, err := c.caller.CodeAt(ensureContext(opts.Context), c.address, nil); err != nil {
			return 0, err
		} else if len(code) == 0 && len(input) > 0 {
			return 0, ErrNoCode
		}
	}
	msg := types.CallMsg{
		From:     opts.From,
		To:       contract,
		GasPrice: gasPrice,
		Value:    value,
		Data:     input,
	}
	return c.transactor.EstimateGas(ensureContext(opts.Context), msg)
}

func (c *BoundContract) getNonce(opts *TransactOpts) (uint64, error) {
	if opts.Nonce == nil {
		return c.transactor.PendingNonceAt(ensureContext(opts.Context), opts.From)
	}
	return opts.Nonce.Uint64(), nil
}

// UnpackLog unpacks a retrieved log into the provided output structure.
func (c *BoundContract) UnpackLog(out interface{}, event string, log types.Log) error {
	// Anonymous events are not supported.
	if len(log.Topics) == 0 {
		return errors.New("abi: no event signature")
	}
	if log.Topics[0] != c.abi.Events[event].ID {
		return errors.New("abi: event signature mismatch")
	}
	if len(log.Data) > 0 {
		if err := c.abi.UnpackIntoInterface(out, event, log.Data); err != nil {
			return err
		}
	}
	var indexed abi.Arguments
	for _, arg := range c.abi.Events[event].Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return abi.ParseTopics(out, indexed, log.Topics[1:])
}

// ensureContext is a helper method to ensure a context is not nil, even if the
// user specified it as such.
func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
