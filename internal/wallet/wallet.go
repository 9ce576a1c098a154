package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"

	"github.com/0xmhha/txmonkey/pkg/types"
)

var (
	ErrNoAccounts      = errors.New("account pool is empty")
	ErrAddressMismatch = errors.New("address does not match private key")
)

// Pool is the fixed set of accounts a scenario works with, plus the funding account.
// It is read-only after construction.
type Pool struct {
	funding  types.Account
	accounts []types.Account
}

// NewPool creates a pool from already loaded accounts
func NewPool(funding types.Account, accounts []types.Account) (*Pool, error) {
	if funding.Key == nil {
		return nil, errors.New("funding account has no private key")
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}

	copied := make([]types.Account, len(accounts))
	copy(copied, accounts)

	return &Pool{
		funding:  funding,
		accounts: copied,
	}, nil
}

// KeyPair is a hex private key with an optional expected address
type KeyPair struct {
	Address string
	Key     string
}

// NewFromKeys creates a pool from hex private keys.
// When an address is given it must match the address derived from the key.
func NewFromKeys(funding KeyPair, accounts []KeyPair) (*Pool, error) {
	fundingAccount, err := accountFromPair(funding)
	if err != nil {
		return nil, fmt.Errorf("invalid funding account: %w", err)
	}

	loaded := make([]types.Account, 0, len(accounts))
	for i, pair := range accounts {
		account, err := accountFromPair(pair)
		if err != nil {
			return nil, fmt.Errorf("invalid account %d: %w", i, err)
		}
		loaded = append(loaded, account)
	}

	return NewPool(fundingAccount, loaded)
}

// NewFromPrivateKey creates a pool whose accounts are derived from the funding key
func NewFromPrivateKey(privateKeyHex string, subAccounts uint64) (*Pool, error) {
	masterKey, err := ParseKey(privateKeyHex)
	if err != nil {
		return nil, err
	}

	// Sub-keys are keccak(masterKey || "subaccount-i")
	accounts := make([]types.Account, subAccounts)
	for i := uint64(0); i < subAccounts; i++ {
		seed := crypto.Keccak256(
			crypto.FromECDSA(masterKey),
			[]byte(fmt.Sprintf("subaccount-%d", i)),
		)
		subKey, err := crypto.ToECDSA(seed)
		if err != nil {
			return nil, fmt.Errorf("failed to derive sub-account %d: %w", i, err)
		}
		accounts[i] = accountFromKey(subKey)
	}

	return NewPool(accountFromKey(masterKey), accounts)
}

// NewFromMnemonic creates a pool from a BIP39 mnemonic.
// Index 0 is the funding account, indexes 1..n are the pool.
func NewFromMnemonic(mnemonic string, subAccounts uint64) (*Pool, error) {
	wallet, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}

	derive := func(index uint64) (*ecdsa.PrivateKey, error) {
		path := hdwallet.MustParseDerivationPath(fmt.Sprintf("m/44'/60'/0'/0/%d", index))
		account, err := wallet.Derive(path, false)
		if err != nil {
			return nil, err
		}
		return wallet.PrivateKey(account)
	}

	masterKey, err := derive(0)
	if err != nil {
		return nil, fmt.Errorf("failed to derive funding account: %w", err)
	}

	accounts := make([]types.Account, subAccounts)
	for i := uint64(0); i < subAccounts; i++ {
		key, err := derive(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to derive sub-account %d: %w", i, err)
		}
		accounts[i] = accountFromKey(key)
	}

	return NewPool(accountFromKey(masterKey), accounts)
}

// Funding returns the designated funding account
func (p *Pool) Funding() types.Account {
	return p.funding
}

// Accounts returns a copy of the pool accounts
func (p *Pool) Accounts() []types.Account {
	out := make([]types.Account, len(p.accounts))
	copy(out, p.accounts)
	return out
}

// Len returns the number of pool accounts
func (p *Pool) Len() int {
	return len(p.accounts)
}

// At returns the account at index i
func (p *Pool) At(i int) types.Account {
	return p.accounts[i]
}

// Recipients returns the pool accounts other than the funding account
func (p *Pool) Recipients() []types.Account {
	out := make([]types.Account, 0, len(p.accounts))
	for _, account := range p.accounts {
		if account.Address == p.funding.Address {
			continue
		}
		out = append(out, account)
	}
	return out
}

// Addresses returns all pool addresses
func (p *Pool) Addresses() []common.Address {
	addresses := make([]common.Address, len(p.accounts))
	for i, account := range p.accounts {
		addresses[i] = account.Address
	}
	return addresses
}

// ParseKey parses a hex private key with or without 0x prefix
func ParseKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

func accountFromPair(pair KeyPair) (types.Account, error) {
	key, err := ParseKey(pair.Key)
	if err != nil {
		return types.Account{}, err
	}
	account := accountFromKey(key)

	if pair.Address != "" {
		if !common.IsHexAddress(pair.Address) {
			return types.Account{}, fmt.Errorf("invalid address %q", pair.Address)
		}
		if common.HexToAddress(pair.Address) != account.Address {
			return types.Account{}, fmt.Errorf("%w: %s != %s", ErrAddressMismatch, pair.Address, account.Address.Hex())
		}
	}

	return account, nil
}

func accountFromKey(key *ecdsa.PrivateKey) types.Account {
	return types.Account{
		Address: crypto.PubkeyToAddress(key.PublicKey),
		Key:     key,
	}
}
