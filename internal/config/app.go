package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/engine"
	"github.com/Veraticus/spacesub/internal/plaid"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabasePath    = "database.path"
	KeyUserID          = "user.id"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyStableIDs       = "analysis.stable_ids"
	KeyFetchTimeout    = "analysis.fetch_timeout"
	KeySuggestionStore = "suggestions.store"
	KeyDefaultCurrency = "import.default_currency"
	KeyImportDays      = "import.days"
)

// Suggestion store backends.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// SetDefaults registers default values for every known key.
func SetDefaults() {
	viper.SetDefault(KeyDatabasePath, filepath.Join(DataDir(), "spacesub.db"))
	viper.SetDefault(KeyUserID, "default")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogFormat, "console")
	viper.SetDefault(KeyStableIDs, false)
	viper.SetDefault(KeyFetchTimeout, 30*time.Second)
	viper.SetDefault(KeySuggestionStore, StoreSQLite)
	viper.SetDefault(KeyDefaultCurrency, "RUB")
	viper.SetDefault(KeyImportDays, 365)
	viper.SetDefault("plaid.environment", "sandbox")
}

// DatabasePath returns the expanded database location.
func DatabasePath() string {
	return ExpandPath(viper.GetString(KeyDatabasePath))
}

// UserID returns the user whose data commands operate on.
func UserID() (string, error) {
	id := strings.TrimSpace(viper.GetString(KeyUserID))
	if id == "" {
		return "", fmt.Errorf("%w: user id is required", common.ErrMissingConfig)
	}
	return id, nil
}

// LoadAnalysisConfig reads analyzer settings.
func LoadAnalysisConfig() (engine.Config, error) {
	cfg := engine.DefaultConfig()
	cfg.StableIDs = viper.GetBool(KeyStableIDs)

	if viper.IsSet(KeyFetchTimeout) {
		timeout := viper.GetDuration(KeyFetchTimeout)
		if timeout < 0 {
			return engine.Config{}, fmt.Errorf("%w: %s cannot be negative", common.ErrInvalidConfig, KeyFetchTimeout)
		}
		cfg.FetchTimeout = timeout
	}

	return cfg, nil
}

// SuggestionStore returns the configured suggestion store backend.
func SuggestionStore() (string, error) {
	switch store := strings.ToLower(viper.GetString(KeySuggestionStore)); store {
	case "", StoreSQLite:
		return StoreSQLite, nil
	case StoreMemory:
		return StoreMemory, nil
	default:
		return "", fmt.Errorf("%w: %s must be %q or %q, got %q",
			common.ErrInvalidConfig, KeySuggestionStore, StoreSQLite, StoreMemory, store)
	}
}

// ImportConfig holds settings shared by the import commands.
type ImportConfig struct {
	DefaultCurrency string
	Days            int
}

// LoadImportConfig reads import settings.
func LoadImportConfig() (ImportConfig, error) {
	cfg := ImportConfig{
		DefaultCurrency: strings.ToUpper(strings.TrimSpace(viper.GetString(KeyDefaultCurrency))),
		Days:            viper.GetInt(KeyImportDays),
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "RUB"
	}
	if cfg.Days <= 0 {
		return ImportConfig{}, fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyImportDays)
	}
	return cfg, nil
}

// LoadPlaidConfig reads Plaid credentials from viper, falling back to
// PLAID_* environment variables.
func LoadPlaidConfig() (*plaid.Config, error) {
	cfg := &plaid.Config{
		ClientID:    firstNonEmpty(viper.GetString("plaid.client_id"), os.Getenv("PLAID_CLIENT_ID")),
		Secret:      firstNonEmpty(viper.GetString("plaid.secret"), os.Getenv("PLAID_SECRET")),
		Environment: firstNonEmpty(viper.GetString("plaid.environment"), os.Getenv("PLAID_ENV")),
		AccessToken: firstNonEmpty(viper.GetString("plaid.access_token"), os.Getenv("PLAID_ACCESS_TOKEN")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
