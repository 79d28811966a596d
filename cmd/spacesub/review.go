package main

import (
	"fmt"

	"github.com/Veraticus/spacesub/internal/cli"
	"github.com/Veraticus/spacesub/internal/tui"
	"github.com/Veraticus/spacesub/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review suggestions interactively",
		Long: `Open an interactive view of the detected recurring payments.
Confirm with c or enter, dismiss with d, re-analyze with r.`,
		RunE: runReview,
	}

	cmd.Flags().Bool("cached", false, "Start from the last analysis instead of re-analyzing")
	cmd.Flags().Bool("inline", false, "Render inline instead of using the alternate screen")
	cmd.Flags().String("theme", "", "Color theme (default, catppuccin-mocha)")
	_ = viper.BindPFlag("tui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := []tui.Option{tui.WithTheme(themes.ByName(viper.GetString("tui.theme")))}
	if cached, _ := cmd.Flags().GetBool("cached"); cached {
		opts = append(opts, tui.WithCachedSuggestions())
	}
	if inline, _ := cmd.Flags().GetBool("inline"); inline {
		opts = append(opts, tui.WithInline())
	}

	summary, err := tui.Run(ctx, a.service, a.userID, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
		fmt.Sprintf("Review finished: %d confirmed, %d dismissed", summary.Confirmed, summary.Dismissed)))
	return nil
}
