package txbuilder

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	txtypes "github.com/0xmhha/txmonkey/pkg/types"
)

// NewRequest creates a fresh request. Pass a nil to for contract creation.
func NewRequest(from common.Address, to *common.Address, value *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte) *txtypes.TransactionRequest {
	var recipient *common.Address
	if to != nil {
		addr := *to
		recipient = &addr
	}

	return &txtypes.TransactionRequest{
		From:     from,
		To:       recipient,
		GasLimit: gasLimit,
		GasPrice: copyBig(gasPrice),
		Value:    copyBig(value),
		Data:     common.CopyBytes(data),
	}
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
