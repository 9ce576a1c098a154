package txbuilder

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	txtypes "github.com/0xmhha/txmonkey/pkg/types"
)

// Builder assembles and signs legacy transactions
type Builder struct {
	config *BuilderConfig
}

// New creates a new builder
func New(config *BuilderConfig) *Builder {
	if config == nil {
		config = &BuilderConfig{}
	}
	return &Builder{config: config}
}

// Build produces an unsigned transaction from a request and a resolved nonce.
// Values are taken as given; no bounds are checked.
func (b *Builder) Build(req *txtypes.TransactionRequest, nonce uint64) *types.Transaction {
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	// Legacy transaction (type 0) for compatibility with development nodes
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: req.GasPrice,
		Gas:      req.GasLimit,
		To:       req.To,
		Value:    value,
		Data:     req.Data,
	})
}

// Sign signs a built transaction and returns it with its network encoding
func (b *Builder) Sign(tx *types.Transaction, key *ecdsa.PrivateKey) (*types.Transaction, []byte, error) {
	signedTx, err := SignTransaction(tx, b.config.ChainID, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	rawTx, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}

	return signedTx, rawTx, nil
}

// SignTransaction signs a transaction with the given private key
func SignTransaction(tx *types.Transaction, chainID *big.Int, key *ecdsa.PrivateKey) (*types.Transaction, error) {
	var signer types.Signer
	if chainID == nil {
		signer = types.HomesteadSigner{}
	} else {
		signer = types.LatestSignerForChainID(chainID)
	}
	return types.SignTx(tx, signer, key)
}

// ContractAddress returns the address a creation transaction from sender with nonce deploys to
func ContractAddress(sender common.Address, nonce uint64) common.Address {
	return crypto.CreateAddress(sender, nonce)
}

// AddressFromKey returns the address for a private key
func AddressFromKey(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
