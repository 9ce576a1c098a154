package scenario

import (
	"context"

	"github.com/0xmhha/txmonkey/internal/txbuilder"
)

// Random sends Iterations transfers of TransferValue between random distinct
// accounts of the pool. The funding account must hold at least MinBalance,
// otherwise nothing is sent and an *InsufficientBalanceError is returned.
func (r *Runner) Random(ctx context.Context) (*Summary, error) {
	accounts := r.pool.Accounts()
	if len(accounts) < 2 {
		r.finish(ScenarioRandom, ErrPoolTooSmall)
		return nil, ErrPoolTooSmall
	}

	funding := r.pool.Funding()
	bal, err := r.oracle.Balance(ctx, funding.Address)
	if err != nil {
		r.finish(ScenarioRandom, err)
		return nil, err
	}
	if bal.Cmp(r.params.MinBalance) < 0 {
		err := &InsufficientBalanceError{Address: funding.Address, Balance: bal, Threshold: r.params.MinBalance}
		r.finish(ScenarioRandom, err)
		return nil, err
	}

	r.logger.Info("Sending random transfers", "iterations", r.params.Iterations, "accounts", len(accounts), "value", r.params.TransferValue)

	summary, err := r.batch(ctx, ScenarioRandom, r.params.Iterations, ContinueOnError, func(ctx context.Context, _ int) ItemResult {
		from, to := r.pickPair(len(accounts))
		recipient := accounts[to].Address
		req := txbuilder.NewRequest(accounts[from].Address, &recipient, r.params.TransferValue, r.params.GasLimit, r.params.GasPrice, nil)
		return r.send(ctx, req, accounts[from].Key)
	})
	r.finish(ScenarioRandom, err)
	return summary, err
}

// pickPair draws two distinct indices in [0, n) uniformly, redrawing on a collision
func (r *Runner) pickPair(n int) (int, int) {
	for {
		from, to := r.rng.IntN(n), r.rng.IntN(n)
		if from != to {
			return from, to
		}
	}
}
