// Package sheets exports subscriptions and pending suggestions to Google Sheets.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/spacesub/internal/common"
)

// DefaultSpreadsheetName is used when creating a new spreadsheet.
const DefaultSpreadsheetName = "Subscriptions"

// AuthMethod identifies how the writer authenticates against Google.
type AuthMethod string

// Supported authentication methods.
const (
	AuthOAuth          AuthMethod = "oauth"
	AuthServiceAccount AuthMethod = "service_account"
)

// Config holds the configuration for the Google Sheets writer. Exactly one
// of the OAuth refresh-token triple or ServiceAccountPath must be set.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string // Empty creates a new spreadsheet on every export
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int // Rows per values.update call
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns the writer defaults without credentials.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		TimeZone:         "Europe/Moscow",
		SpreadsheetName:  DefaultSpreadsheetName,
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// Auth reports which credentials the config carries.
func (c Config) Auth() (AuthMethod, error) {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	switch {
	case hasOAuth && hasServiceAccount:
		return "", fmt.Errorf("%w: both OAuth2 credentials and a service account are configured", common.ErrInvalidConfig)
	case hasServiceAccount:
		return AuthServiceAccount, nil
	case hasOAuth:
		return AuthOAuth, nil
	default:
		return "", fmt.Errorf("%w: sheets needs a service account path or client id, client secret and refresh token", common.ErrMissingConfig)
	}
}

// Validate checks credentials and the write settings.
func (c Config) Validate() error {
	if _, err := c.Auth(); err != nil {
		return err
	}
	if c.SpreadsheetID == "" && c.SpreadsheetName == "" {
		return fmt.Errorf("%w: spreadsheet id or name is required", common.ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}
