package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/0xmhha/txmonkey/internal/util/progress"
)

// Policy decides what a batch does after a failed item
type Policy int

const (
	// ContinueOnError records the failure and moves on to the next item
	ContinueOnError Policy = iota
	// AbortOnError stops the batch at the first failure
	AbortOnError
)

func (p Policy) String() string {
	switch p {
	case ContinueOnError:
		return "continue"
	case AbortOnError:
		return "abort"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Run outcomes passed to Recorder.RecordScenario
const (
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
)

// Recorder receives per-attempt and per-run counts
type Recorder interface {
	RecordTxSent(scenario string)
	RecordTxFailed(scenario string)
	RecordScenario(scenario, outcome string)
}

// ItemResult is the outcome of one send attempt
type ItemResult struct {
	Index  int
	From   common.Address
	To     common.Address
	TxHash common.Hash
	Err    error
}

// Failed returns true if the attempt failed
func (r ItemResult) Failed() bool {
	return r.Err != nil
}

// Summary collects every attempt of a batch in order
type Summary struct {
	Scenario string
	Items    []ItemResult
	Aborted  bool
	Duration time.Duration
}

// Attempts returns the number of send attempts made
func (s *Summary) Attempts() int {
	return len(s.Items)
}

// Succeeded returns the number of attempts the node accepted
func (s *Summary) Succeeded() int {
	n := 0
	for _, item := range s.Items {
		if !item.Failed() {
			n++
		}
	}
	return n
}

// Failed returns the number of failed attempts
func (s *Summary) Failed() int {
	return s.Attempts() - s.Succeeded()
}

// Step performs the index-th attempt of a batch
type Step func(ctx context.Context, index int) ItemResult

// BatchOptions carries the optional collaborators of RunBatch
type BatchOptions struct {
	Scenario string
	Logger   log.Logger
	Limiter  *rate.Limiter
	Bar      *progressbar.ProgressBar
	Recorder Recorder
}

// RunBatch runs step for every index in [0, n), one at a time. Failures are
// wrapped in *PerItemError. Under AbortOnError the first failure stops the
// batch and is returned; under ContinueOnError the returned error is only set
// when pacing fails.
func RunBatch(ctx context.Context, n int, policy Policy, opts BatchOptions, step Step) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Root()
	}

	start := time.Now()
	summary := &Summary{
		Scenario: opts.Scenario,
		Items:    make([]ItemResult, 0, n),
	}

	for i := 0; i < n; i++ {
		if opts.Limiter != nil {
			if err := opts.Limiter.Wait(ctx); err != nil {
				summary.Aborted = true
				summary.Duration = time.Since(start)
				return summary, fmt.Errorf("rate limiter error: %w", err)
			}
		}

		item := step(ctx, i)
		item.Index = i
		progress.Add(opts.Bar, 1)

		if item.Err == nil {
			summary.Items = append(summary.Items, item)
			recordSent(opts.Recorder, opts.Scenario)
			logger.Info("Tx sent", "scenario", opts.Scenario, "index", i, "from", item.From, "to", item.To, "hash", item.TxHash)
			continue
		}

		itemErr := &PerItemError{Index: i, From: item.From, To: item.To, Err: item.Err}
		item.Err = itemErr
		summary.Items = append(summary.Items, item)
		recordFailed(opts.Recorder, opts.Scenario)
		logger.Warn("Tx failed", "scenario", opts.Scenario, "index", i, "from", item.From, "to", item.To, "err", itemErr.Err)

		if policy == AbortOnError {
			summary.Aborted = true
			summary.Duration = time.Since(start)
			return summary, itemErr
		}
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

func recordSent(r Recorder, scenario string) {
	if r != nil {
		r.RecordTxSent(scenario)
	}
}

func recordFailed(r Recorder, scenario string) {
	if r != nil {
		r.RecordTxFailed(scenario)
	}
}
