// Package importer turns external transaction feeds into stored, user-owned
// transactions.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/shopspring/decimal"
)

// JSONSource is the default source tag for JSON imports.
const JSONSource = "json"

// ErrInvalidPayload is returned when an import document fails validation.
var ErrInvalidPayload = errors.New("invalid import payload")

// Payload is the JSON import document.
type Payload struct {
	Transactions []Record `json:"transactions"`
}

// Record is one transaction in a JSON import document.
type Record struct {
	Amount      *decimal.Decimal `json:"amount"`
	Currency    string           `json:"currency,omitempty"`
	Date        string           `json:"date"`
	Description string           `json:"description"`
	Source      string           `json:"source,omitempty"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseJSON decodes and validates an import document for userID. Amounts
// must be non-negative; a missing currency becomes defaultCurrency. IDs and
// hashes are derived from the content so re-importing a file is idempotent.
func ParseJSON(r io.Reader, userID, defaultCurrency string) ([]model.Transaction, error) {
	var payload Payload
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if len(payload.Transactions) == 0 {
		return nil, fmt.Errorf("%w: at least one transaction is required", ErrInvalidPayload)
	}

	var problems []string
	transactions := make([]model.Transaction, 0, len(payload.Transactions))
	for i, rec := range payload.Transactions {
		txn, err := rec.toTransaction(userID, defaultCurrency)
		if err != nil {
			problems = append(problems, fmt.Sprintf("transactions[%d]: %v", i, err))
			continue
		}
		transactions = append(transactions, txn)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(problems, "; "))
	}
	return transactions, nil
}

func (r Record) toTransaction(userID, defaultCurrency string) (model.Transaction, error) {
	if r.Amount == nil {
		return model.Transaction{}, errors.New("amount is required")
	}
	if r.Amount.IsNegative() {
		return model.Transaction{}, errors.New("amount must not be negative")
	}

	description := strings.TrimSpace(r.Description)
	if description == "" {
		return model.Transaction{}, errors.New("description is required")
	}

	date, err := parseDate(r.Date)
	if err != nil {
		return model.Transaction{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	source := strings.TrimSpace(r.Source)
	if source == "" {
		source = JSONSource
	}

	txn := model.Transaction{
		UserID:      userID,
		Date:        date,
		Description: r.Description,
		Amount:      *r.Amount,
		Currency:    currency,
		Source:      source,
	}
	txn.Hash = txn.GenerateHash()
	txn.ID = model.DeriveID(userID, source, txn.Hash)
	return txn, nil
}
