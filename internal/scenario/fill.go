package scenario

import (
	"context"

	"github.com/0xmhha/txmonkey/internal/txbuilder"
)

// Fill sends FundValue from the funding account to every other account once.
// Failed sends are recorded in the summary and the sweep continues.
func (r *Runner) Fill(ctx context.Context) (*Summary, error) {
	funding := r.pool.Funding()
	recipients := r.pool.Recipients()

	r.logger.Info("Funding accounts", "from", funding.Address, "accounts", len(recipients), "value", r.params.FundValue)

	summary, err := r.batch(ctx, ScenarioFill, len(recipients), ContinueOnError, func(ctx context.Context, i int) ItemResult {
		to := recipients[i].Address
		req := txbuilder.NewRequest(funding.Address, &to, r.params.FundValue, r.params.GasLimit, r.params.GasPrice, nil)
		return r.send(ctx, req, funding.Key)
	})
	r.finish(ScenarioFill, err)
	return summary, err
}
