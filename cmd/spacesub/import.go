package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/spacesub/internal/cli"
	"github.com/Veraticus/spacesub/internal/config"
	"github.com/Veraticus/spacesub/internal/importer"
	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/ofx"
	"github.com/Veraticus/spacesub/internal/plaid"
	"github.com/spf13/cobra"
)

const importHint = "Saved batches are kept; run the import again to finish, duplicates are skipped."

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions",
		Long: `Import transactions from a JSON document, OFX/QFX bank exports or Plaid.

Re-importing the same data is safe: transactions are de-duplicated.`,
	}

	cmd.PersistentFlags().BoolP("dry-run", "d", false, "Parse and validate without saving")

	cmd.AddCommand(importJSONCmd())
	cmd.AddCommand(importOFXCmd())
	cmd.AddCommand(importPlaidCmd())

	return cmd
}

func importJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "json <file|->",
		Short: "Import a JSON transaction document",
		Long: `Import transactions from a JSON document of the form

  {"transactions": [
    {"amount": 799, "currency": "RUB", "date": "2025-01-15", "description": "NETFLIX.COM"}
  ]}

Amounts must not be negative. Currency defaults to import.default_currency.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: runImportJSON,
	}
}

func importOFXCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX (Quicken) files exported from your bank.

Examples:
  # Import single file
  spacesub import ofx ~/Downloads/statement_jan_2025.qfx

  # Import all QFX files in a directory
  spacesub import ofx ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}
}

func importPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plaid",
		Short: "Sync transactions from Plaid",
		RunE:  runImportPlaid,
	}

	cmd.Flags().Int("days", 0, "Days of history to fetch (default from import.days)")

	return cmd
}

func runImportJSON(cmd *cobra.Command, args []string) error {
	userID, err := config.UserID()
	if err != nil {
		return err
	}
	importCfg, err := config.LoadImportConfig()
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, openErr := os.Open(args[0]) // #nosec G304
		if openErr != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], openErr)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	transactions, err := importer.ParseJSON(r, userID, importCfg.DefaultCurrency)
	if err != nil {
		return err
	}

	return saveImported(cmd, "json", transactions)
}

// expandFiles resolves glob patterns to existing files.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, statErr := os.Stat(pattern); statErr == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	userID, err := config.UserID()
	if err != nil {
		return err
	}
	importCfg, err := config.LoadImportConfig()
	if err != nil {
		return err
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	parser := ofx.NewParser(userID, importCfg.DefaultCurrency)
	ctx := cmd.Context()

	var all []model.Transaction
	seen := make(map[string]bool)
	for _, path := range files {
		transactions, parseErr := parseOFXFile(ctx, parser, path)
		if parseErr != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", parseErr)
			continue
		}

		added := 0
		for _, txn := range transactions {
			if !seen[txn.Hash] {
				seen[txn.Hash] = true
				all = append(all, txn)
				added++
			}
		}
		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(transactions),
			"added", added)
	}

	if len(all) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No transactions found in any file"))
		return nil
	}

	return saveImported(cmd, "ofx", all)
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(ctx, f)
}

func runImportPlaid(cmd *cobra.Command, _ []string) error {
	userID, err := config.UserID()
	if err != nil {
		return err
	}
	importCfg, err := config.LoadImportConfig()
	if err != nil {
		return err
	}
	if days, _ := cmd.Flags().GetInt("days"); days > 0 {
		importCfg.Days = days
	}

	plaidCfg, err := config.LoadPlaidConfig()
	if err != nil {
		return err
	}
	client, err := plaid.NewClient(*plaidCfg)
	if err != nil {
		return err
	}

	transactions, err := importer.FetchPlaid(cmd.Context(), client, userID, importCfg.Days, importCfg.DefaultCurrency)
	if err != nil {
		return err
	}

	return saveImported(cmd, plaid.SourceName, transactions)
}

// saveImported stores parsed transactions with a progress bar and prints a summary.
func saveImported(cmd *cobra.Command, source string, transactions []model.Transaction) error {
	out := cmd.OutOrStdout()

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions parsed, nothing saved", len(transactions))))
		if len(transactions) > 0 {
			fmt.Fprintln(out, cli.TransactionsTable(transactions))
		}
		return nil
	}

	if len(transactions) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("Nothing to import"))
		return nil
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := interrupts.HandleInterrupts(cmd.Context(), "Import", importHint)
	defer interrupts.Stop()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(transactions), "Saving transactions...")
	result, err := importer.New(store).
		WithProgress(cli.ProgressUpdater(bar)).
		Import(ctx, transactions)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.ImportSummary(source, len(transactions), result))
	return nil
}
