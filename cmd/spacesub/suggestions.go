package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/spacesub/internal/cli"
	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/recurring"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func suggestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "suggestions",
		Aliases: []string{"analyze"},
		Short:   "Detect recurring payments",
		Long: `Analyze unlinked transactions and list the recurring payments found.

Every run replaces the previous suggestions, so suggestion IDs from an earlier
run are no longer valid. Use --cached to list the last result without re-analyzing.`,
		RunE: runSuggestions,
	}

	cmd.Flags().Bool("cached", false, "List the last analysis result without re-analyzing")
	cmd.Flags().StringP("output", "o", outputTable, "Output format (table, json)")
	cmd.Flags().Bool("explain", false, "Show every candidate group and why it was accepted or rejected")

	return cmd
}

func runSuggestions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	output, _ := cmd.Flags().GetString("output")
	output = strings.ToLower(output)
	if output != outputTable && output != outputJSON {
		return fmt.Errorf("unknown output format %q (want %s or %s)", output, outputTable, outputJSON)
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if explain, _ := cmd.Flags().GetBool("explain"); explain {
		evaluations, explainErr := a.analyzer.Explain(ctx, a.userID)
		if explainErr != nil {
			return explainErr
		}
		writeEvaluations(out, evaluations)
		return nil
	}

	var suggestions []model.Suggestion
	if cached, _ := cmd.Flags().GetBool("cached"); cached {
		suggestions, err = a.service.Suggestions(ctx, a.userID)
	} else {
		suggestions, err = a.service.Analyze(ctx, a.userID)
	}
	if err != nil {
		return err
	}

	if output == outputJSON {
		return writeSuggestionsJSON(out, suggestions)
	}

	if len(suggestions) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No recurring payments detected"))
		return nil
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%d recurring payments detected", len(suggestions))))
	fmt.Fprintln(out, cli.SuggestionsTable(suggestions))
	fmt.Fprintln(out, cli.FormatInfo("Run `spacesub confirm <id>` to track one, or `spacesub review` to go through them interactively"))
	return nil
}

// suggestionView is the JSON shape of a suggestion.
type suggestionView struct {
	NextBilling      string          `json:"next_billing"`
	SuggestionID     string          `json:"suggestion_id"`
	Name             string          `json:"name"`
	Currency         string          `json:"currency"`
	BillingCycle     string          `json:"billing_cycle"`
	TransactionIDs   []string        `json:"transaction_ids"`
	Amount           decimal.Decimal `json:"amount"`
	Score            float64         `json:"score"`
	TransactionCount int             `json:"transaction_count"`
}

func writeSuggestionsJSON(w io.Writer, suggestions []model.Suggestion) error {
	views := make([]suggestionView, 0, len(suggestions))
	for _, s := range suggestions {
		views = append(views, suggestionView{
			SuggestionID:     s.SuggestionID,
			Name:             s.Name,
			Amount:           s.Amount,
			Currency:         s.Currency,
			BillingCycle:     string(s.BillingCycle),
			NextBilling:      s.NextBilling.Format(time.DateOnly),
			Score:            s.Score,
			TransactionIDs:   s.TransactionIDs,
			TransactionCount: s.TransactionCount,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

func writeEvaluations(w io.Writer, evaluations []recurring.Evaluation) {
	if len(evaluations) == 0 {
		fmt.Fprintln(w, cli.FormatInfo("No unlinked transactions to analyze"))
		return
	}

	for _, eval := range evaluations {
		var b strings.Builder
		fmt.Fprintf(&b, "Transactions: %d\n", eval.Group.Len())
		if len(eval.Gaps) > 0 {
			fmt.Fprintf(&b, "Gaps (days):  %v\n", eval.Gaps)
		}
		if eval.HasCycle {
			fmt.Fprintf(&b, "Cycle:        %s (%d±%d days)\n", eval.Cadence.Cycle, eval.Cadence.ExpectedDays, eval.Cadence.Tolerance)
			fmt.Fprintf(&b, "Score:        %.2f\n", recurring.RoundScore(eval.Score))
		}

		if eval.Suggestion != nil {
			fmt.Fprintf(&b, "Result:       %s", cli.StyleSuccess("suggested as "+eval.Suggestion.Name))
		} else {
			fmt.Fprintf(&b, "Result:       %s", cli.StyleWarning(eval.Reason))
		}

		fmt.Fprintln(w, cli.RenderBox(eval.Group.Key, b.String()))
	}
}
