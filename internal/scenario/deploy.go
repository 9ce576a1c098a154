package scenario

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xmhha/txmonkey/internal/fixture"
	"github.com/0xmhha/txmonkey/internal/txbuilder"
)

// DeployResult describes a deploy run, complete or not
type DeployResult struct {
	Contract     common.Address
	DeployTxHash common.Hash
	Distribution *Summary
}

// Deploy creates the token contract from the funding account, then transfers
// TokenAmount to every pool account. The first failure in either phase ends
// the run with a *FatalDeployError; the partial result is still returned.
func (r *Runner) Deploy(ctx context.Context) (*DeployResult, error) {
	result, err := r.deploy(ctx)
	r.finish(ScenarioDeploy, err)
	return result, err
}

func (r *Runner) deploy(ctx context.Context) (*DeployResult, error) {
	if len(r.contract.Bytecode) == 0 {
		return nil, &FatalDeployError{Phase: PhaseDeploy, Index: -1, Err: fixture.ErrNoBytecode}
	}
	transfer, err := txbuilder.ParseMethod(r.contract.TransferSignature)
	if err != nil {
		return nil, &FatalDeployError{Phase: PhaseDeploy, Index: -1, Err: err}
	}

	deployer := r.pool.Funding()

	// Phase A: contract creation
	req := txbuilder.NewRequest(deployer.Address, nil, nil, r.params.DeployGasLimit, r.params.GasPrice, r.contract.Bytecode)
	created, err := r.sender.Send(ctx, req, deployer.Key)
	if err != nil {
		r.logger.Error("Contract deployment failed", "from", deployer.Address, "err", err)
		return nil, &FatalDeployError{Phase: PhaseDeploy, Index: -1, Err: err}
	}

	result := &DeployResult{
		Contract:     *created.ContractAddress,
		DeployTxHash: created.TxHash,
	}
	r.logger.Info("Contract deployed", "address", result.Contract, "hash", result.DeployTxHash, "nonce", created.Nonce)

	// Phase B: distribution, all or nothing
	accounts := r.pool.Accounts()
	token := result.Contract
	summary, err := r.batch(ctx, ScenarioDeploy, len(accounts), AbortOnError, func(ctx context.Context, i int) ItemResult {
		data, err := transfer.Pack(accounts[i].Address, r.params.TokenAmount)
		if err != nil {
			return ItemResult{From: deployer.Address, To: token, Err: err}
		}
		req := txbuilder.NewRequest(deployer.Address, &token, nil, r.params.DeployGasLimit, r.params.GasPrice, data)
		item := r.send(ctx, req, deployer.Key)
		item.To = accounts[i].Address
		return item
	})
	result.Distribution = summary
	if err != nil {
		var itemErr *PerItemError
		if errors.As(err, &itemErr) {
			return result, &FatalDeployError{Phase: PhaseDistribute, Index: itemErr.Index, Err: itemErr.Err}
		}
		return result, &FatalDeployError{Phase: PhaseDistribute, Index: summary.Attempts(), Err: err}
	}

	return result, nil
}
