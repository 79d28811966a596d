package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ReportWriter exports a subscription report.
type ReportWriter interface {
	Write(ctx context.Context, report Report) error
}

var _ ReportWriter = (*Writer)(nil)

// Writer implements the ReportWriter interface for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Create the Sheets service
	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  slog.Default().With("component", "sheets"),
	}, nil
}

// Write replaces the sheet contents with the report.
func (w *Writer) Write(ctx context.Context, report Report) error {
	w.logger.Info("starting subscription export",
		"user_id", report.UserID,
		"subscriptions", len(report.Subscriptions),
		"suggestions", len(report.Suggestions))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if clearErr := common.WithRetry(ctx, func() error {
		return w.clearSheet(ctx, spreadsheetID)
	}, retryOpts); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	values := prepareReportData(report)

	err = common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, values)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, values)
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("subscription export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

// createSheetsService builds an authenticated Sheets API client.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	tokens, err := tokenSource(ctx, config)
	if err != nil {
		return nil, err
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokens)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

func tokenSource(ctx context.Context, config Config) (oauth2.TokenSource, error) {
	method, err := config.Auth()
	if err != nil {
		return nil, err
	}

	if method == AuthServiceAccount {
		jsonKey, readErr := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if readErr != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", readErr)
		}

		jwtConfig, parseErr := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if parseErr != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", parseErr)
		}
		return jwtConfig.TokenSource(ctx), nil
	}

	// The refresh token is obtained out of band; only the access token is minted here.
	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
	return oauthConfig.TokenSource(ctx, &oauth2.Token{
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
	}), nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		// Verify the spreadsheet exists and is accessible
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	// Create a new spreadsheet
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: "Subscriptions",
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

// clearSheet clears all data from the sheet.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// prepareReportData lays the report out as sheet rows.
func prepareReportData(report Report) [][]any {
	estimatedRows := 10 + len(report.MonthlyTotals) + len(report.Subscriptions) + len(report.Suggestions)
	values := make([][]any, 0, estimatedRows)

	values = append(values,
		[]any{"Subscriptions Report", report.GeneratedAt.Format("Jan 2, 2006 15:04")},
		[]any{},
		[]any{"Monthly Total"},
	)
	for _, currency := range report.Currencies() {
		values = append(values, []any{currency, report.MonthlyTotals[currency].InexactFloat64()})
	}

	values = append(values,
		[]any{},
		[]any{"Subscriptions"},
		[]any{"Name", "Cycle", "Amount", "Currency", "Monthly Cost", "Next Billing", "Category", "Active"},
	)
	for _, row := range report.Subscriptions {
		values = append(values, []any{
			row.Name,
			string(row.Cycle),
			row.Amount.InexactFloat64(),
			row.Currency,
			row.MonthlyCost.InexactFloat64(),
			formatDate(row.NextBilling),
			row.Category,
			row.IsActive,
		})
	}

	values = append(values,
		[]any{},
		[]any{"Pending Suggestions"},
		[]any{"Suggestion", "Name", "Cycle", "Amount", "Currency", "Next Billing", "Score", "Transactions"},
	)
	for _, row := range report.Suggestions {
		values = append(values, []any{
			row.ID,
			row.Name,
			string(row.Cycle),
			row.Amount.InexactFloat64(),
			row.Currency,
			formatDate(row.NextBilling),
			fmt.Sprintf("%.2f", row.Score),
			row.Transactions,
		})
	}

	return values
}

// writeData writes values in BatchSize chunks so large reports stay under
// the API payload limit.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for start := 0; start < len(values); start += w.config.BatchSize {
		batch := values[start:min(start+w.config.BatchSize, len(values))]

		_, err := w.service.Spreadsheets.Values.
			Update(spreadsheetID, fmt.Sprintf("A%d", start+1), &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write rows %d-%d: %w", start+1, start+len(batch), err)
		}

		w.logger.Debug("wrote batch", "start_row", start+1, "rows", len(batch))
	}
	return nil
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, values [][]any) error {
	update := &sheets.BatchUpdateSpreadsheetRequest{Requests: formattingRequests(values)}
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, update).Context(ctx).Do()
	return err
}

// formattingRequests styles the layout produced by prepareReportData: a large
// title, bold section and column headers, and money columns as numbers.
func formattingRequests(values [][]any) []*sheets.Request {
	requests := []*sheets.Request{
		textFormat(0, 0, 2, &sheets.TextFormat{Bold: true, FontSize: 16}),
	}

	for i, row := range values {
		// Section titles are single-cell rows; column headers follow them.
		if i == 0 || len(row) != 1 {
			continue
		}
		requests = append(requests, textFormat(int64(i), 0, 1, &sheets.TextFormat{Bold: true}))
		if i+1 < len(values) && len(values[i+1]) > 2 {
			requests = append(requests, textFormat(int64(i+1), 0, int64(len(values[i+1])), &sheets.TextFormat{Italic: true}))
		}
	}

	rows := int64(len(values))
	requests = append(requests,
		moneyFormat(1, rows, 1), // monthly totals
		moneyFormat(1, rows, 2), // subscription amount
		moneyFormat(1, rows, 4), // monthly cost
		&sheets.Request{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{Dimension: "COLUMNS", StartIndex: 0, EndIndex: 8},
			},
		},
		&sheets.Request{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{GridProperties: &sheets.GridProperties{FrozenRowCount: 1}},
				Fields:     "gridProperties.frozenRowCount",
			},
		},
	)
	return requests
}

func textFormat(row, startCol, endCol int64, format *sheets.TextFormat) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				StartRowIndex:    row,
				EndRowIndex:      row + 1,
				StartColumnIndex: startCol,
				EndColumnIndex:   endCol,
			},
			Cell:   &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{TextFormat: format}},
			Fields: "userEnteredFormat.textFormat",
		},
	}
}

func moneyFormat(startRow, endRow, col int64) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				StartRowIndex:    startRow,
				EndRowIndex:      endRow,
				StartColumnIndex: col,
				EndColumnIndex:   col + 1,
			},
			Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
				NumberFormat: &sheets.NumberFormat{Type: "NUMBER", Pattern: "#,##0.00"},
			}},
			Fields: "userEnteredFormat.numberFormat",
		},
	}
}
