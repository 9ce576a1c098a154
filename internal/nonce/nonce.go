// Package nonce resolves the next nonce of a sender from the node.
//
// Every call is a fresh eth_getTransactionCount round trip against the
// "latest" view. There is no local ledger, so two concurrent senders for
// the same account will race.
package nonce

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnresolved is returned when the node could not report a transaction count
var ErrUnresolved = errors.New("nonce unresolved")

// TransactionCounter is the part of the RPC client the resolver needs
type TransactionCounter interface {
	TransactionCount(ctx context.Context, account common.Address) (uint64, error)
}

// Resolver fetches nonces on demand
type Resolver struct {
	client TransactionCounter
}

// NewResolver creates a resolver backed by the given client
func NewResolver(client TransactionCounter) *Resolver {
	return &Resolver{client: client}
}

// Resolve returns the next nonce for account
func (r *Resolver) Resolve(ctx context.Context, account common.Address) (uint64, error) {
	n, err := r.client.TransactionCount(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("%w for %s: %w", ErrUnresolved, account.Hex(), err)
	}
	return n, nil
}
