// Package inspect holds the read-only lookups: balances, transactions and calls.
package inspect

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/0xmhha/txmonkey/internal/client"
	"github.com/0xmhha/txmonkey/internal/txbuilder"
)

const balanceOfSignature = "balanceOf(address):(uint256)"

// maxConcurrentQueries bounds parallel balance lookups
const maxConcurrentQueries = 8

// Client is the read-only part of the RPC client
type Client interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*client.TransactionRecord, error)
	Call(ctx context.Context, req client.CallRequest) ([]byte, error)
}

// AccountBalance pairs an address with its balance in wei
type AccountBalance struct {
	Address common.Address
	Balance *big.Int
}

// Inspector performs single-call lookups with no added logic
type Inspector struct {
	client Client
}

// New creates an inspector
func New(client Client) *Inspector {
	return &Inspector{client: client}
}

// Balance returns the latest balance of account in wei
func (i *Inspector) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	return i.client.BalanceAt(ctx, account)
}

// Balances queries every account in parallel and returns them in input order
func (i *Inspector) Balances(ctx context.Context, accounts []common.Address) ([]AccountBalance, error) {
	results := make([]AccountBalance, len(accounts))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentQueries)

	for idx, addr := range accounts {
		eg.Go(func() error {
			b, err := i.client.BalanceAt(egCtx, addr)
			if err != nil {
				return fmt.Errorf("failed to get balance of %s: %w", addr.Hex(), err)
			}
			results[idx] = AccountBalance{Address: addr, Balance: b}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Transaction looks up a transaction by hash
func (i *Inspector) Transaction(ctx context.Context, hash common.Hash) (*client.TransactionRecord, error) {
	return i.client.TransactionByHash(ctx, hash)
}

// Call runs a read-only call. Calls carry no nonce.
func (i *Inspector) Call(ctx context.Context, req client.CallRequest) ([]byte, error) {
	return i.client.Call(ctx, req)
}

// TokenBalance returns the ERC20 balance of holder on token
func (i *Inspector) TokenBalance(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	method, err := txbuilder.ParseMethod(balanceOfSignature)
	if err != nil {
		return nil, err
	}
	data, err := method.Pack(holder)
	if err != nil {
		return nil, err
	}

	out, err := i.client.Call(ctx, client.CallRequest{To: &token, Data: data})
	if err != nil {
		return nil, err
	}

	values, err := method.Unpack(out)
	if err != nil {
		return nil, err
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result %T", values[0])
	}
	return amount, nil
}
