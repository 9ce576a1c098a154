// Package testing provides test utilities and helpers for txmonkey tests.
package testing

import (
	"crypto/ecdsa"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DevKeys are the well-known keys of the default development node accounts (DO NOT use in production)
var DevKeys = []string{
	"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
	"59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
	"5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a",
	"7c852118294e51e653712a81e05800f419141751be58f605c371e15141b007a6",
	"47e179ec197488593b187f80a00eb0da91f1b9d0b13f8733639f19c30a34926a",
}

// DevFundingAddress is the address of DevKeys[0]
var DevFundingAddress = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

// TestMnemonic is the well-known development mnemonic (DO NOT use in production)
const TestMnemonic = "test test test test test test test test test test test junk"

// TestChainID is the default chain ID for tests
var TestChainID = big.NewInt(1337)

// GenerateTestKey generates a random private key for testing
func GenerateTestKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	return key
}

// MustParseKey parses a hex private key or fails the test
func MustParseKey(t *testing.T, hexKey string) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		t.Fatalf("failed to parse private key: %v", err)
	}
	return key
}

// AddressFromKey returns the address for a private key
func AddressFromKey(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

// RandomAddress generates a random address for testing
func RandomAddress(t *testing.T) common.Address {
	t.Helper()
	return AddressFromKey(GenerateTestKey(t))
}

// Ether converts ether to wei
func Ether(n int64) *big.Int {
	wei := big.NewInt(n)
	return wei.Mul(wei, big.NewInt(1e18))
}
