// Package fixture loads the static account and token-contract definition used by the scenarios.
package fixture

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/0xmhha/txmonkey/internal/wallet"
)

// DefaultTransferSignature is the token call used for distribution
const DefaultTransferSignature = "transfer(address,uint256)"

var ErrNoBytecode = errors.New("fixture has no token contract bytecode")

// Entry is one account of the fixture
type Entry struct {
	Address string `mapstructure:"address"`
	Key     string `mapstructure:"key"`
}

// Contract holds the token contract creation payload
type Contract struct {
	Data     string `mapstructure:"data"`
	Transfer string `mapstructure:"transfer"`
}

// Fixture is the decoded fixture file
type Fixture struct {
	Accounts      []Entry  `mapstructure:"accounts"`
	From          Entry    `mapstructure:"from"`
	TokenContract Contract `mapstructure:"tokencontract"`
}

// Load reads a fixture file. The format follows the file extension (json, yaml, toml).
func Load(path string) (*Fixture, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}

	var f Fixture
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to decode fixture %s: %w", path, err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}

	return &f, nil
}

// Validate checks the structural requirements of the fixture
func (f *Fixture) Validate() error {
	if f.From.Key == "" {
		return errors.New("from.key is required")
	}
	if len(f.Accounts) == 0 {
		return wallet.ErrNoAccounts
	}
	for i, entry := range f.Accounts {
		if entry.Key == "" {
			return fmt.Errorf("accounts[%d].key is required", i)
		}
	}
	return nil
}

// Pool builds the account pool described by the fixture
func (f *Fixture) Pool() (*wallet.Pool, error) {
	accounts := make([]wallet.KeyPair, len(f.Accounts))
	for i, entry := range f.Accounts {
		accounts[i] = wallet.KeyPair{Address: entry.Address, Key: entry.Key}
	}
	return wallet.NewFromKeys(wallet.KeyPair{Address: f.From.Address, Key: f.From.Key}, accounts)
}

// TokenBytecode returns the decoded creation bytecode of the token contract
func (f *Fixture) TokenBytecode() ([]byte, error) {
	code := common.FromHex(f.TokenContract.Data)
	if len(code) == 0 {
		return nil, ErrNoBytecode
	}
	return code, nil
}

// TransferSignature returns the token transfer method signature
func (f *Fixture) TransferSignature() string {
	if f.TokenContract.Transfer == "" {
		return DefaultTransferSignature
	}
	return f.TokenContract.Transfer
}
