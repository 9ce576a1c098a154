// Package scenario sequences many sends into the fill, random and deploy flows.
//
// Fill and Random are best-effort: a failed attempt is recorded and the loop
// moves on. Deploy is all-or-nothing: the creation and every distribution
// transfer must succeed or the run ends with a *FatalDeployError.
package scenario

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"math/rand/v2"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/time/rate"

	"github.com/0xmhha/txmonkey/internal/fixture"
	"github.com/0xmhha/txmonkey/internal/txbuilder"
	"github.com/0xmhha/txmonkey/internal/util/progress"
	"github.com/0xmhha/txmonkey/internal/wallet"
	txtypes "github.com/0xmhha/txmonkey/pkg/types"
)

// Scenario names used in logs, metrics and summaries
const (
	ScenarioFill   = "fill"
	ScenarioRandom = "random"
	ScenarioDeploy = "deploy"
)

// DefaultIterations is the random loop length when none is configured
const DefaultIterations = 10

// Submitter signs and submits a single request
type Submitter interface {
	Send(ctx context.Context, req *txtypes.TransactionRequest, key *ecdsa.PrivateKey) (*txtypes.SubmissionResult, error)
}

// BalanceReader returns the balance of an account in wei
type BalanceReader interface {
	Balance(ctx context.Context, account common.Address) (*big.Int, error)
}

// Params are the fixed values every scenario sends with
type Params struct {
	GasLimit       uint64
	DeployGasLimit uint64
	GasPrice       *big.Int
	TransferValue  *big.Int
	FundValue      *big.Int
	TokenAmount    *big.Int
	MinBalance     *big.Int
	Iterations     int
}

// DefaultParams returns the values the harness sends with when nothing is configured
func DefaultParams() Params {
	fund, _ := new(big.Int).SetString("2000000000000000", 16)
	return Params{
		GasLimit:       txbuilder.DefaultGasLimit,
		DeployGasLimit: txbuilder.DefaultDeployGasLimit,
		GasPrice:       new(big.Int).Set(txbuilder.DefaultGasPrice),
		TransferValue:  big.NewInt(1),
		FundValue:      fund,
		TokenAmount:    big.NewInt(6000),
		MinBalance:     big.NewInt(1e18),
		Iterations:     DefaultIterations,
	}
}

// Contract is the token the deploy scenario creates and distributes
type Contract struct {
	Bytecode          []byte
	TransferSignature string
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger attempts are reported to
func WithLogger(logger log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithLimiter paces sends; they stay sequential
func WithLimiter(l *rate.Limiter) Option {
	return func(r *Runner) {
		r.limiter = l
	}
}

// WithRecorder reports attempt and run counts
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithRand sets the source of random account pairs
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) {
		r.rng = rng
	}
}

// WithProgress shows a progress bar per batch
func WithProgress(enabled bool) Option {
	return func(r *Runner) {
		r.progress = enabled
	}
}

// Runner drives the scenarios against one account pool
type Runner struct {
	sender   Submitter
	oracle   BalanceReader
	pool     *wallet.Pool
	contract Contract
	params   Params

	logger   log.Logger
	limiter  *rate.Limiter
	recorder Recorder
	rng      *rand.Rand
	progress bool
}

// NewRunner creates a runner. Zero params fall back to DefaultParams.
func NewRunner(sender Submitter, oracle BalanceReader, pool *wallet.Pool, contract Contract, params Params, opts ...Option) (*Runner, error) {
	if sender == nil || oracle == nil {
		return nil, errors.New("sender and balance oracle are required")
	}
	if pool == nil {
		return nil, wallet.ErrNoAccounts
	}
	if contract.TransferSignature == "" {
		contract.TransferSignature = fixture.DefaultTransferSignature
	}

	r := &Runner{
		sender:   sender,
		oracle:   oracle,
		pool:     pool,
		contract: contract,
		params:   withDefaults(params),
		logger:   log.Root(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return r, nil
}

// Params returns the effective parameters
func (r *Runner) Params() Params {
	return r.params
}

func withDefaults(p Params) Params {
	d := DefaultParams()
	if p.GasLimit == 0 {
		p.GasLimit = d.GasLimit
	}
	if p.DeployGasLimit == 0 {
		p.DeployGasLimit = d.DeployGasLimit
	}
	if p.GasPrice == nil {
		p.GasPrice = d.GasPrice
	}
	if p.TransferValue == nil {
		p.TransferValue = d.TransferValue
	}
	if p.FundValue == nil {
		p.FundValue = d.FundValue
	}
	if p.TokenAmount == nil {
		p.TokenAmount = d.TokenAmount
	}
	if p.MinBalance == nil {
		p.MinBalance = d.MinBalance
	}
	if p.Iterations <= 0 {
		p.Iterations = d.Iterations
	}
	return p
}

// batch runs a batch with the runner's logger, pacing, progress and metrics
func (r *Runner) batch(ctx context.Context, scenario string, n int, policy Policy, step Step) (*Summary, error) {
	bar := progress.New(r.progress, n, scenario+" txs")
	return RunBatch(ctx, n, policy, BatchOptions{
		Scenario: scenario,
		Logger:   r.logger,
		Limiter:  r.limiter,
		Bar:      bar,
		Recorder: r.recorder,
	}, step)
}

// send submits a fresh request and converts the outcome into an ItemResult
func (r *Runner) send(ctx context.Context, req *txtypes.TransactionRequest, key *ecdsa.PrivateKey) ItemResult {
	item := ItemResult{From: req.From}
	if req.To != nil {
		item.To = *req.To
	}

	r.logger.Debug("Sending", "from", req.From, "to", item.To, "value", req.Value)
	result, err := r.sender.Send(ctx, req, key)
	if err != nil {
		item.Err = err
		return item
	}
	item.TxHash = result.TxHash
	return item
}

func (r *Runner) finish(scenario string, err error) {
	if r.recorder == nil {
		return
	}
	outcome := OutcomeCompleted
	if err != nil {
		outcome = OutcomeAborted
	}
	r.recorder.RecordScenario(scenario, outcome)
}
