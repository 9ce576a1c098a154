package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/0xmhha/txmonkey/internal/balance"
	"github.com/0xmhha/txmonkey/internal/client"
	"github.com/0xmhha/txmonkey/internal/inspect"
)

// withApp runs fn with a freshly loaded app and closes it afterwards
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

func newRandomCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "random",
		Aliases: []string{"r"},
		Short:   "Send transfers between random pool accounts",
		Args:    cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			runner, err := a.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := runner.Random(cmd.Context())
			if summary != nil {
				summary.PrintTable(os.Stdout)
			}
			return err
		}),
	}
}

func newFillCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "fill",
		Aliases: []string{"f"},
		Short:   "Fund every pool account from the funding account",
		Args:    cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			runner, err := a.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := runner.Fill(cmd.Context())
			if summary != nil {
				summary.PrintTable(os.Stdout)
			}
			return err
		}),
	}
}

func newDeployCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "deploy",
		Aliases: []string{"d"},
		Short:   "Deploy the token contract and distribute tokens to every pool account",
		Args:    cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			runner, err := a.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			result, err := runner.Deploy(cmd.Context())
			if result != nil {
				fmt.Printf("Contract address: %s\n", result.Contract.Hex())
				fmt.Printf("Deploy tx:        %s\n", result.DeployTxHash.Hex())
				if result.Distribution != nil {
					result.Distribution.PrintTable(os.Stdout)
				}
			}
			return err
		}),
	}
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "balance <address>",
		Aliases: []string{"b"},
		Short:   "Print the balance of an address in ether",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			return printBalance(cmd.Context(), cmd.OutOrStdout(), balance.NewOracle(a.client), addr)
		}),
	}
}

func printBalance(ctx context.Context, w io.Writer, oracle *balance.Oracle, addr common.Address) error {
	display, err := oracle.DisplayBalance(ctx, addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Current balance: %s ether\n", display)
	return nil
}

func newBalancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Print the balance of the funding account and every pool account",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			pool, _, err := a.loadPool()
			if err != nil {
				return fmt.Errorf("failed to load accounts: %w", err)
			}

			addrs := append([]common.Address{pool.Funding().Address}, pool.Addresses()...)
			balances, err := inspect.New(a.client).Balances(cmd.Context(), addrs)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"#", "Role", "Address", "Balance (ether)"})
			table.SetBorder(true)
			for i, ab := range balances {
				role := "pool"
				if i == 0 {
					role = "funding"
				}
				table.Append([]string{fmt.Sprintf("%d", i), role, ab.Address.Hex(), balance.ToDisplayUnits(ab.Balance)})
			}
			table.Render()
			return nil
		}),
	}
}

func newTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tx <hash>",
		Aliases: []string{"t"},
		Short:   "Look up a transaction by hash",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			raw, err := hexutil.Decode(args[0])
			if err != nil || len(raw) != common.HashLength {
				return fmt.Errorf("invalid transaction hash %q", args[0])
			}

			rec, err := inspect.New(a.client).Transaction(cmd.Context(), common.BytesToHash(raw))
			if err != nil {
				return err
			}
			printTransaction(rec)
			return nil
		}),
	}
}

func printTransaction(rec *client.TransactionRecord) {
	tx := rec.Tx

	from := "-"
	if sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx); err == nil {
		from = sender.Hex()
	}
	to := "(contract creation)"
	if tx.To() != nil {
		to = tx.To().Hex()
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.SetBorder(true)
	table.AppendBulk([][]string{
		{"Hash", tx.Hash().Hex()},
		{"Type", fmt.Sprintf("%d", tx.Type())},
		{"Nonce", fmt.Sprintf("%d", tx.Nonce())},
		{"From", from},
		{"To", to},
		{"Value", fmt.Sprintf("%s ether", balance.ToDisplayUnits(tx.Value()))},
		{"Gas", fmt.Sprintf("%d", tx.Gas())},
		{"Gas Price", tx.GasPrice().String()},
		{"Data", fmt.Sprintf("%d bytes", len(tx.Data()))},
		{"Pending", fmt.Sprintf("%t", rec.Pending)},
	})
	table.Render()
}

func newCallCmd() *cobra.Command {
	var to, data, from string

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Execute a read-only contract call",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			target, err := parseAddress(to)
			if err != nil {
				return err
			}
			input, err := hexutil.Decode(data)
			if err != nil {
				return fmt.Errorf("invalid call data: %w", err)
			}

			req := client.CallRequest{To: &target, Data: input}
			if from != "" {
				if req.From, err = parseAddress(from); err != nil {
					return err
				}
			}

			out, err := inspect.New(a.client).Call(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Println(hexutil.Encode(out))
			return nil
		}),
	}

	cmd.Flags().StringVar(&to, "to", "", "contract address (required)")
	cmd.Flags().StringVar(&data, "data", "0x", "call data (hex)")
	cmd.Flags().StringVar(&from, "from", "", "caller address")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newTokenBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token-balance <token> <holder>",
		Short: "Print the token balance of a holder",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			token, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			holder, err := parseAddress(args[1])
			if err != nil {
				return err
			}

			amount, err := inspect.New(a.client).TokenBalance(cmd.Context(), token, holder)
			if err != nil {
				return err
			}
			fmt.Printf("Token balance: %s\n", amount)
			return nil
		}),
	}
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
