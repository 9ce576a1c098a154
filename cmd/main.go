package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/0xmhha/txmonkey/internal/balance"
	"github.com/0xmhha/txmonkey/internal/client"
	"github.com/0xmhha/txmonkey/internal/config"
	"github.com/0xmhha/txmonkey/internal/fixture"
	"github.com/0xmhha/txmonkey/internal/metrics"
	"github.com/0xmhha/txmonkey/internal/scenario"
	"github.com/0xmhha/txmonkey/internal/sender"
	"github.com/0xmhha/txmonkey/internal/txbuilder"
	"github.com/0xmhha/txmonkey/internal/util/mathutil"
	"github.com/0xmhha/txmonkey/internal/wallet"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "txmonkey",
		Short: "Development transaction harness for Ethereum nodes",
		Long: `TxMonkey generates, signs and submits transactions against a development node:
funding test accounts, random peer-to-peer transfers and a token deploy-and-distribute run.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newRandomCmd(),
		newFillCmd(),
		newDeployCmd(),
		newBalanceCmd(),
		newBalancesCmd(),
		newTxCmd(),
		newCallCmd(),
		newTokenBalanceCmd(),
	)
	return rootCmd
}

// app holds what every command shares for one invocation
type app struct {
	cfg     *config.Config
	client  *client.Client
	metrics *metrics.Metrics
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogger(cfg)

	cli, err := client.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	a := &app{cfg: cfg, client: cli}
	if cfg.MetricsEnabled {
		a.metrics = metrics.NewMetrics("txmonkey")
		if err := a.metrics.Start(cmd.Context(), cfg.MetricsPort); err != nil {
			cli.Close()
			return nil, fmt.Errorf("failed to start metrics server: %w", err)
		}
		log.Info("Metrics endpoint started", "port", cfg.MetricsPort)
	}
	return a, nil
}

func (a *app) Close() {
	if a.metrics != nil && a.metrics.IsRunning() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metrics.Stop(ctx); err != nil {
			log.Warn("Failed to stop metrics server", "err", err)
		}
	}
	a.client.Close()
}

func setupLogger(cfg *config.Config) {
	level := log.LevelInfo
	if cfg.Verbose {
		level = log.LevelDebug
	}

	var handler slog.Handler
	if cfg.LogFormat == config.LogFormatJSON {
		handler = log.JSONHandlerWithLevel(os.Stderr, level)
	} else {
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, level, false)
	}
	log.SetDefault(log.NewLogger(handler))
}

// loadPool builds the account pool from the mnemonic, the private key or the fixture, in that order
func (a *app) loadPool() (*wallet.Pool, scenario.Contract, error) {
	switch {
	case a.cfg.Mnemonic != "":
		pool, err := wallet.NewFromMnemonic(a.cfg.Mnemonic, a.cfg.Accounts)
		return pool, scenario.Contract{}, err
	case a.cfg.PrivateKey != "":
		pool, err := wallet.NewFromPrivateKey(a.cfg.PrivateKey, a.cfg.Accounts)
		return pool, scenario.Contract{}, err
	}

	fx, err := fixture.Load(a.cfg.Fixture)
	if err != nil {
		return nil, scenario.Contract{}, err
	}
	pool, err := fx.Pool()
	if err != nil {
		return nil, scenario.Contract{}, fmt.Errorf("invalid fixture %s: %w", a.cfg.Fixture, err)
	}

	contract := scenario.Contract{TransferSignature: fx.TransferSignature()}
	code, err := fx.TokenBytecode()
	switch {
	case err == nil:
		contract.Bytecode = code
	case errors.Is(err, fixture.ErrNoBytecode):
		log.Debug("Fixture has no token bytecode", "fixture", a.cfg.Fixture)
	default:
		return nil, scenario.Contract{}, err
	}
	return pool, contract, nil
}

func (a *app) chainID(ctx context.Context) (*big.Int, error) {
	if id := a.cfg.ChainIDValue(); id != nil {
		return id, nil
	}
	id, err := a.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return id, nil
}

func (a *app) newRunner(ctx context.Context) (*scenario.Runner, error) {
	pool, contract, err := a.loadPool()
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	chainID, err := a.chainID(ctx)
	if err != nil {
		return nil, err
	}

	amounts, err := a.cfg.ParseAmounts()
	if err != nil {
		return nil, err
	}
	iterations, err := mathutil.Uint64ToInt(a.cfg.Iterations)
	if err != nil {
		return nil, fmt.Errorf("iterations: %w", err)
	}

	var senderOpts []sender.Option
	runnerOpts := []scenario.Option{
		scenario.WithLogger(log.Root()),
		scenario.WithProgress(a.cfg.Progress),
	}
	if a.metrics != nil {
		senderOpts = append(senderOpts, sender.WithObserver(a.metrics))
		runnerOpts = append(runnerOpts, scenario.WithRecorder(a.metrics))
	}
	if a.cfg.RateLimit > 0 {
		runnerOpts = append(runnerOpts, scenario.WithLimiter(rate.NewLimiter(rate.Limit(a.cfg.RateLimit), 1)))
	}

	s := sender.New(a.client, txbuilder.New(&txbuilder.BuilderConfig{ChainID: chainID}), senderOpts...)
	params := scenario.Params{
		GasLimit:       a.cfg.GasLimit,
		DeployGasLimit: a.cfg.DeployGasLimit,
		GasPrice:       amounts.GasPrice,
		TransferValue:  amounts.Value,
		FundValue:      amounts.FundValue,
		TokenAmount:    amounts.TokenAmount,
		MinBalance:     amounts.MinBalance,
		Iterations:     iterations,
	}

	log.Info("Accounts loaded", "funding", pool.Funding().Address, "accounts", pool.Len(), "chainid", chainID)

	return scenario.NewRunner(s, balance.NewOracle(a.client), pool, contract, params, runnerOpts...)
}
