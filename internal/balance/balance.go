// Package balance reads account balances and converts between wei and ether.
package balance

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

// Decimals is the fixed scale between base units and display units
const Decimals = 18

var unit = big.NewInt(params.Ether)

// Reader is the part of the RPC client the oracle needs
type Reader interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
}

// Oracle queries balances. Nothing is cached.
type Oracle struct {
	client Reader
}

// NewOracle creates an oracle backed by the given client
func NewOracle(client Reader) *Oracle {
	return &Oracle{client: client}
}

// Balance returns the latest balance of account in wei
func (o *Oracle) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	b, err := o.client.BalanceAt(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", account.Hex(), err)
	}
	return b, nil
}

// DisplayBalance returns the latest balance of account in ether
func (o *Oracle) DisplayBalance(ctx context.Context, account common.Address) (string, error) {
	b, err := o.Balance(ctx, account)
	if err != nil {
		return "", err
	}
	return ToDisplayUnits(b), nil
}

// ToDisplayUnits formats a wei amount in ether without losing precision
func ToDisplayUnits(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	s := new(big.Rat).SetFrac(amount, unit).FloatString(Decimals)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// ParseDisplayUnits converts an ether amount such as "1" or "0.5" to wei
func ParseDisplayUnits(s string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	r.Mul(r, new(big.Rat).SetInt(unit))
	if !r.IsInt() {
		return nil, fmt.Errorf("amount %q has more than %d decimals", s, Decimals)
	}
	return new(big.Int).Set(r.Num()), nil
}
