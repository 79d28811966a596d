package config

import (
	"os"

	"github.com/Veraticus/spacesub/internal/sheets"
	"github.com/spf13/viper"
)

// sheetsSetting maps one sheets.Config field to its viper key and the
// GOOGLE_SHEETS_* variable consulted when the key is unset.
type sheetsSetting struct {
	field func(*sheets.Config) *string
	key   string
	env   string
	path  bool
}

var sheetsSettings = []sheetsSetting{
	{key: "sheets.client_id", env: "GOOGLE_SHEETS_CLIENT_ID", field: func(c *sheets.Config) *string { return &c.ClientID }},
	{key: "sheets.client_secret", env: "GOOGLE_SHEETS_CLIENT_SECRET", field: func(c *sheets.Config) *string { return &c.ClientSecret }},
	{key: "sheets.refresh_token", env: "GOOGLE_SHEETS_REFRESH_TOKEN", field: func(c *sheets.Config) *string { return &c.RefreshToken }},
	{key: "sheets.service_account_path", env: "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", path: true, field: func(c *sheets.Config) *string { return &c.ServiceAccountPath }},
	{key: "sheets.spreadsheet_id", env: "GOOGLE_SHEETS_SPREADSHEET_ID", field: func(c *sheets.Config) *string { return &c.SpreadsheetID }},
	{key: "sheets.spreadsheet_name", env: "GOOGLE_SHEETS_SPREADSHEET_NAME", field: func(c *sheets.Config) *string { return &c.SpreadsheetName }},
	{key: "sheets.time_zone", env: "GOOGLE_SHEETS_TIME_ZONE", field: func(c *sheets.Config) *string { return &c.TimeZone }},
}

// LoadSheetsConfig builds the export configuration. Each setting comes from
// viper (config file or SPACESUB_SHEETS_* env) first, then from the matching
// GOOGLE_SHEETS_* variable, then from sheets.DefaultConfig.
func LoadSheetsConfig() (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	for _, s := range sheetsSettings {
		value := firstNonEmpty(viper.GetString(s.key), os.Getenv(s.env))
		if value == "" {
			continue
		}
		if s.path {
			value = ExpandPath(value)
		}
		*s.field(&cfg) = value
	}

	if viper.IsSet("sheets.formatting") {
		cfg.EnableFormatting = viper.GetBool("sheets.formatting")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
