// Package plaid syncs posted bank transactions through the Plaid API.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/model"
	"github.com/Veraticus/spacesub/internal/service"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"
)

// SourceName tags transactions imported from Plaid.
const SourceName = "plaid"

// Supported Plaid environments.
const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

const (
	dateLayout = "2006-01-02"
	// pageSize is the largest count /transactions/get accepts.
	pageSize = int32(500)
)

var environments = map[string]plaid.Environment{
	EnvSandbox:    plaid.Sandbox,
	EnvProduction: plaid.Production,
}

// Config holds Plaid API credentials for a single linked item.
type Config struct {
	ClientID    string
	Secret      string
	Environment string
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	required := []struct{ name, value string }{
		{"client ID", c.ClientID},
		{"secret", c.Secret},
		{"access token", c.AccessToken},
		{"environment", c.Environment},
	}
	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("%w: plaid %s is required", common.ErrMissingConfig, field.name)
		}
	}

	if _, ok := environments[c.Environment]; !ok {
		return fmt.Errorf("%w: plaid environment must be %s or %s", common.ErrInvalidConfig, EnvSandbox, EnvProduction)
	}
	return nil
}

// Client fetches transactions for one access token.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	accessToken string
	retryOpts   service.RetryOptions
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	configuration.UseEnvironment(environments[cfg.Environment])

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// GetTransactions returns the posted transactions between startDate and
// endDate. Pending transactions and rows without a usable date are skipped.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if startDate.After(endDate) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format(dateLayout),
		"end_date", endDate.Format(dateLayout))

	var fetched []plaid.Transaction
	for offset := int32(0); ; {
		page, total, err := c.fetchPage(ctx, startDate, endDate, offset)
		if err != nil {
			return nil, err
		}

		fetched = append(fetched, page...)
		offset += int32(len(page))
		if len(page) == 0 || offset >= total {
			break
		}
	}

	transactions := make([]model.Transaction, 0, len(fetched))
	skipped := 0
	for _, pt := range fetched {
		if pt.GetPending() {
			skipped++
			continue
		}
		txn, err := toTransaction(pt)
		if err != nil {
			c.logger.Warn("Skipping Plaid transaction", "transaction_id", pt.GetTransactionId(), "error", err)
			skipped++
			continue
		}
		transactions = append(transactions, txn)
	}

	c.logger.Info("Fetched transactions from Plaid",
		"fetched", len(fetched),
		"posted", len(transactions),
		"skipped", skipped)

	return transactions, nil
}

// fetchPage requests one page with retries and reports the server-side total.
func (c *Client) fetchPage(ctx context.Context, startDate, endDate time.Time, offset int32) ([]plaid.Transaction, int32, error) {
	var (
		page  []plaid.Transaction
		total int32
	)

	err := common.WithRetry(ctx, func() error {
		request := plaid.NewTransactionsGetRequest(c.accessToken, startDate.Format(dateLayout), endDate.Format(dateLayout))
		request.SetOptions(plaid.TransactionsGetRequestOptions{
			Count:  plaid.PtrInt32(pageSize),
			Offset: plaid.PtrInt32(offset),
		})

		resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
		if err != nil {
			return classifyError(err)
		}

		page = resp.GetTransactions()
		total = resp.GetTotalTransactions()
		c.logger.Debug("Fetched transaction page", "count", len(page), "offset", offset, "total", total)
		return nil
	}, c.retryOpts)

	return page, total, err
}

// classifyError keeps rate limits retryable; every other API error is final.
func classifyError(err error) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("%w: %w", common.ErrPlaidConnection, err)
	}

	if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		return common.Transient(fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidErr.ErrorMessage))
	}
	return common.Permanent(fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage))
}

// toTransaction maps a Plaid transaction. Plaid already reports money out as
// a positive amount; ownership and the final ID are assigned by the importer.
func toTransaction(pt plaid.Transaction) (model.Transaction, error) {
	date, err := time.Parse(dateLayout, pt.GetDate())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date %q: %w", pt.GetDate(), err)
	}

	merchant := pt.GetMerchantName()
	if merchant == "" {
		merchant = pt.GetName()
	}

	currency := pt.GetIsoCurrencyCode()
	if currency == "" {
		currency = pt.GetUnofficialCurrencyCode()
	}

	return model.Transaction{
		Date:         date,
		ID:           pt.GetTransactionId(),
		AccountID:    pt.GetAccountId(),
		Description:  pt.GetName(),
		MerchantName: cleanMerchantName(merchant),
		Amount:       decimal.NewFromFloat(pt.GetAmount()).Round(2),
		Currency:     strings.ToUpper(currency),
		Source:       SourceName,
	}, nil
}

var (
	legalSuffixes = []string{"Llc", "Inc", "Corp", "Corporation", "Company", "Co", "Ltd", "Limited"}
	// Russian legal forms precede the name: ООО "Яндекс", ИП Иванов.
	legalPrefixes = []string{"Ооо", "Оао", "Зао", "Пао", "Ао", "Ип"}
)

// cleanMerchantName title-cases a merchant name and strips legal forms and
// trailing processor reference numbers.
func cleanMerchantName(name string) string {
	name = strings.NewReplacer(`"`, " ", "«", " ", "»", " ").Replace(name)
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		words[i] = titleWord(word)
	}

	if n := len(words); n > 1 && len([]rune(words[n-1])) > 5 && isAllDigits(words[n-1]) {
		words = words[:n-1]
	}

	for len(words) > 1 && contains(legalSuffixes, words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	for len(words) > 1 && contains(legalPrefixes, words[0]) {
		words = words[1:]
	}

	return strings.Join(words, " ")
}

// titleWord upper-cases every letter that does not follow another letter,
// so "amazon.com" becomes "Amazon.Com" and "7-eleven" becomes "7-Eleven".
func titleWord(word string) string {
	runes := []rune(word)
	for i, r := range runes {
		if i == 0 || !unicode.IsLetter(runes[i-1]) {
			runes[i] = unicode.ToUpper(r)
		}
	}
	return string(runes)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

var _ TransactionFetcher = (*Client)(nil)
