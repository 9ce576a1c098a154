package scenario

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0xmhha/txmonkey/internal/balance"
)

var (
	// ErrInsufficientBalance matches every *InsufficientBalanceError
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrFatalDeploy matches every *FatalDeployError
	ErrFatalDeploy = errors.New("deploy aborted")
	// ErrPoolTooSmall is returned when random transfers need more distinct accounts
	ErrPoolTooSmall = errors.New("random transfers need at least two accounts")
)

// InsufficientBalanceError aborts the random loop before any send
type InsufficientBalanceError struct {
	Address   common.Address
	Balance   *big.Int
	Threshold *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%v: %s holds %s ether, need %s",
		ErrInsufficientBalance, e.Address.Hex(), balance.ToDisplayUnits(e.Balance), balance.ToDisplayUnits(e.Threshold))
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// Deploy phases
const (
	PhaseDeploy     = "deploy"
	PhaseDistribute = "distribute"
)

// FatalDeployError ends the deploy scenario. Index is the failed distribution
// transfer and is -1 for the deploy phase.
type FatalDeployError struct {
	Phase string
	Index int
	Err   error
}

func (e *FatalDeployError) Error() string {
	if e.Phase == PhaseDistribute {
		return fmt.Sprintf("%v: transfer %d failed: %v", ErrFatalDeploy, e.Index, e.Err)
	}
	return fmt.Sprintf("%v: %s failed: %v", ErrFatalDeploy, e.Phase, e.Err)
}

func (e *FatalDeployError) Unwrap() error {
	return e.Err
}

func (e *FatalDeployError) Is(target error) bool {
	return target == ErrFatalDeploy
}

// PerItemError records one failed attempt of a batch. Fill and Random keep it
// in the summary and never return it.
type PerItemError struct {
	Index int
	From  common.Address
	To    common.Address
	Err   error
}

func (e *PerItemError) Error() string {
	return fmt.Sprintf("item %d (%s -> %s): %v", e.Index, e.From.Hex(), e.To.Hex(), e.Err)
}

func (e *PerItemError) Unwrap() error {
	return e.Err
}
