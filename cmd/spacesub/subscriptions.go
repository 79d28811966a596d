package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spacesub/internal/cli"
	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/config"
	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/sheets"
	"github.com/Veraticus/spacesub/internal/subscriptions"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func subscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Manage tracked subscriptions",
		RunE:    runSubscriptionsList,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tracked subscriptions",
		RunE:  runSubscriptionsList,
	})
	cmd.AddCommand(subscriptionsAddCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one subscription",
		Args:  cobra.ExactArgs(1),
		RunE:  runSubscriptionsShow,
	})
	cmd.AddCommand(subscriptionsUpdateCmd())
	cmd.AddCommand(subscriptionsDeleteCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Export subscriptions and pending suggestions to Google Sheets",
		RunE:  runSubscriptionsExport,
	})

	return cmd
}

func subscriptionsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Track a subscription by hand",
		RunE:  runSubscriptionsAdd,
	}

	cmd.Flags().String("name", "", "Subscription name (required)")
	cmd.Flags().String("amount", "", "Amount charged per billing cycle (required)")
	cmd.Flags().String("currency", "", "ISO currency code (default RUB)")
	cmd.Flags().String("cycle", string(model.CycleMonthly), "Billing cycle (weekly, monthly, quarterly, yearly)")
	cmd.Flags().String("next-billing", "", "Next billing date (YYYY-MM-DD)")
	cmd.Flags().String("category", "", "Category")
	cmd.Flags().String("description", "", "Free-form description")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func subscriptionsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a tracked subscription",
		Long: `Change selected fields of a subscription. Only the flags you pass are
applied; --active=false keeps the subscription but drops it from monthly totals.
Pass --next-billing "" to clear the next billing date.`,
		Args: cobra.ExactArgs(1),
		RunE: runSubscriptionsUpdate,
	}

	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("amount", "", "Amount charged per billing cycle")
	cmd.Flags().String("currency", "", "ISO currency code")
	cmd.Flags().String("cycle", "", "Billing cycle (weekly, monthly, quarterly, yearly)")
	cmd.Flags().String("next-billing", "", "Next billing date (YYYY-MM-DD)")
	cmd.Flags().String("category", "", "Category")
	cmd.Flags().String("description", "", "Free-form description")
	cmd.Flags().Bool("active", true, "Whether the subscription is still being paid")

	return cmd
}

func subscriptionsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Stop tracking a subscription",
		Long:  `Delete a subscription. Its transactions become unlinked and can be detected again.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runSubscriptionsDelete,
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runSubscriptionsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	subs, err := a.service.List(ctx, a.userID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(subs) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No subscriptions tracked yet"))
		return nil
	}

	fmt.Fprintln(out, cli.SubscriptionsTable(subs))
	return nil
}

func runSubscriptionsAdd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	name, _ := flags.GetString("name")
	rawAmount, _ := flags.GetString("amount")
	currency, _ := flags.GetString("currency")
	rawCycle, _ := flags.GetString("cycle")
	rawNext, _ := flags.GetString("next-billing")
	category, _ := flags.GetString("category")
	description, _ := flags.GetString("description")

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return fmt.Errorf("invalid --amount %q: %w", rawAmount, err)
	}
	cycle, err := model.ParseBillingCycle(rawCycle)
	if err != nil {
		return err
	}

	var nextBilling time.Time
	if rawNext != "" {
		nextBilling, err = time.Parse("2006-01-02", rawNext)
		if err != nil {
			return fmt.Errorf("invalid --next-billing date %q: %w", rawNext, err)
		}
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sub, err := a.service.Create(ctx, a.userID, subscriptions.CreateRequest{
		Name:         name,
		Description:  description,
		Amount:       amount,
		Currency:     currency,
		BillingCycle: cycle,
		NextBilling:  nextBilling,
		Category:     category,
	})
	if err != nil {
		if errors.Is(err, subscriptions.ErrInvalidInput) {
			return common.NewUserError(err.Error(), err)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Tracking %s (%s)", sub.Name, sub.ID)))
	return nil
}

// updateRequest builds a partial update from the flags the user actually set.
func updateRequest(flags *pflag.FlagSet) (subscriptions.UpdateRequest, error) {
	var req subscriptions.UpdateRequest

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	req.Name = str("name")
	req.Currency = str("currency")
	req.Category = str("category")
	req.Description = str("description")

	if raw := str("amount"); raw != nil {
		amount, err := decimal.NewFromString(*raw)
		if err != nil {
			return req, fmt.Errorf("invalid --amount %q: %w", *raw, err)
		}
		req.Amount = &amount
	}
	if raw := str("cycle"); raw != nil {
		cycle, err := model.ParseBillingCycle(*raw)
		if err != nil {
			return req, err
		}
		req.BillingCycle = &cycle
	}
	if raw := str("next-billing"); raw != nil {
		var next time.Time
		if *raw != "" {
			parsed, err := time.Parse("2006-01-02", *raw)
			if err != nil {
				return req, fmt.Errorf("invalid --next-billing date %q: %w", *raw, err)
			}
			next = parsed
		}
		req.NextBilling = &next
	}
	if flags.Changed("active") {
		active, _ := flags.GetBool("active")
		req.IsActive = &active
	}

	if req.Empty() {
		return req, common.NewUserError("nothing to update; pass at least one flag such as --amount or --active=false", subscriptions.ErrInvalidInput)
	}
	return req, nil
}

func runSubscriptionsUpdate(cmd *cobra.Command, args []string) error {
	req, err := updateRequest(cmd.Flags())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sub, err := a.service.Update(ctx, a.userID, args[0], req)
	if err != nil {
		if errors.Is(err, subscriptions.ErrInvalidInput) {
			return common.NewUserError(err.Error(), err)
		}
		return subscriptionError(args[0], err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.SubscriptionDetail(sub))
	return nil
}

func runSubscriptionsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sub, err := a.service.Get(ctx, a.userID, args[0])
	if err != nil {
		return subscriptionError(args[0], err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.SubscriptionDetail(sub))
	return nil
}

func runSubscriptionsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sub, err := a.service.Get(ctx, a.userID, args[0])
	if err != nil {
		return subscriptionError(args[0], err)
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		reader := cli.NewNonBlockingReader(cmd.InOrStdin())
		ok, confirmErr := reader.Confirm(ctx, out, fmt.Sprintf("Delete %s?", sub.Name))
		if confirmErr != nil {
			return confirmErr
		}
		if !ok {
			fmt.Fprintln(out, cli.FormatInfo("Nothing deleted"))
			return nil
		}
	}

	if err := a.service.Delete(ctx, a.userID, sub.ID); err != nil {
		return subscriptionError(sub.ID, err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %s", sub.Name)))
	return nil
}

func runSubscriptionsExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sheetsCfg, err := config.LoadSheetsConfig()
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	subs, err := a.service.List(ctx, a.userID)
	if err != nil {
		return err
	}
	pending, err := a.service.Suggestions(ctx, a.userID)
	if err != nil {
		return err
	}

	writer, err := newReportWriter(ctx, *sheetsCfg)
	if err != nil {
		return err
	}

	report := sheets.BuildReport(a.userID, subs, pending, time.Now())
	if err := writer.Write(ctx, report); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
		fmt.Sprintf("Exported %d subscriptions and %d suggestions to %s", len(subs), len(pending), sheetsCfg.SpreadsheetName)))
	return nil
}

// newReportWriter is swapped out in tests.
var newReportWriter = func(ctx context.Context, cfg sheets.Config) (sheets.ReportWriter, error) {
	return sheets.NewWriter(ctx, cfg)
}

func subscriptionError(id string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("no subscription with id %s", id), err)
	}
	return err
}
