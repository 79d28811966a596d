package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/spacesub/internal/cli"
	"github.com/Veraticus/spacesub/internal/common"
	"github.com/spf13/cobra"
)

const suggestionExpiredMessage = "suggestion not found or expired; run `spacesub suggestions` first"

func confirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <suggestion-id>",
		Short: "Turn a suggestion into a tracked subscription",
		Long: `Confirm a suggestion from the latest analysis. The subscription is created
and the suggestion's transactions are linked to it.`,
		Args: cobra.ExactArgs(1),
		RunE: runConfirm,
	}
}

func dismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <suggestion-id>",
		Short: "Discard a suggestion",
		Args:  cobra.ExactArgs(1),
		RunE:  runDismiss,
	}
}

func runConfirm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.service.Confirm(ctx, a.userID, args[0])
	if err != nil {
		return suggestionError(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.ConfirmSummary(&res.Subscription, res.LinkedTransactions))
	return nil
}

func runDismiss(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.service.Dismiss(ctx, a.userID, args[0]); err != nil {
		return suggestionError(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Suggestion dismissed"))
	return nil
}

func suggestionError(err error) error {
	if errors.Is(err, common.ErrSuggestionNotFound) {
		return common.NewUserError(suggestionExpiredMessage, err)
	}
	if errors.Is(err, common.ErrAlreadyLinked) {
		return common.NewUserError("these payments are already tracked; run `spacesub suggestions` to refresh", err)
	}
	return err
}
