package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// transactionNamespace scopes IDs derived from source identifiers.
var transactionNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("spacesub:transaction"))

// Transaction represents a single payment transaction from any source.
type Transaction struct {
	Date           time.Time
	SubscriptionID *string // Set once the transaction is attributed to a confirmed subscription
	ID             string
	UserID         string
	AccountID      string
	Description    string // Raw transaction description
	MerchantName   string // Cleaned merchant name, if the source provides one
	Currency       string
	Source         string
	Hash           string
	Amount         decimal.Decimal // Positive amounts are money out
}

// IsLinked reports whether the transaction already belongs to a subscription.
func (t *Transaction) IsLinked() bool {
	return t.SubscriptionID != nil
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		t.UserID,
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Currency,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// DeriveID builds a deterministic transaction ID from source-specific parts,
// e.g. user, account and the bank's own transaction identifier.
func DeriveID(parts ...string) string {
	return uuid.NewSHA1(transactionNamespace, []byte(strings.Join(parts, "\x00"))).String()
}
