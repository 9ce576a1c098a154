package txbuilder

import (
	"math/big"
)

// Default gas parameters, matching the values the harness has always sent with
const (
	DefaultGasLimit       uint64 = 0x7B0C
	DefaultDeployGasLimit uint64 = 0x47B760
)

// DefaultGasPrice is the fixed gas price (1 wei); there is no estimation
var DefaultGasPrice = big.NewInt(1)

// BuilderConfig holds configuration for transaction building
type BuilderConfig struct {
	// ChainID selects the EIP-155 signer. Nil signs without replay protection.
	ChainID *big.Int
}
