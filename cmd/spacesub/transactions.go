package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/spacesub/internal/cli"
	"github.com/Veraticus/spacesub/internal/service"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "List imported transactions",
		RunE:    runTransactions,
	}

	cmd.Flags().Bool("unlinked", false, "Only show transactions not attributed to a subscription")
	cmd.Flags().Int("limit", 50, "Maximum number of transactions to show (0 for all)")
	cmd.Flags().String("since", "", "Only show transactions on or after this date (YYYY-MM-DD)")

	return cmd
}

func runTransactions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	filter := service.TransactionFilter{}
	filter.UnlinkedOnly, _ = cmd.Flags().GetBool("unlinked")
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	if since, _ := cmd.Flags().GetString("since"); since != "" {
		start, err := time.Parse("2006-01-02", since)
		if err != nil {
			return fmt.Errorf("invalid --since date %q: %w", since, err)
		}
		filter.StartDate = &start
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	transactions, err := a.store.GetTransactions(ctx, a.userID, filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(transactions) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No transactions found"))
		return nil
	}

	fmt.Fprintln(out, cli.TransactionsTable(transactions))
	return nil
}
