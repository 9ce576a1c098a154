package types

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Account is a loaded (address, private key) pair
type Account struct {
	Address common.Address
	Key     *ecdsa.PrivateKey
}

// TransactionRequest represents a transaction to be built and sent.
// A nil To marks a contract creation; a nil Nonce means it has not been resolved yet.
type TransactionRequest struct {
	From     common.Address
	To       *common.Address
	Nonce    *uint64
	GasLimit uint64
	GasPrice *big.Int
	Value    *big.Int
	Data     []byte
}

// IsCreation returns true if the request deploys a contract
func (r *TransactionRequest) IsCreation() bool {
	return r.To == nil
}

// SubmissionResult holds what the node returned for a submitted transaction
type SubmissionResult struct {
	TxHash common.Hash
	Nonce  uint64

	// ContractAddress is only set for creation requests
	ContractAddress *common.Address
}
