package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SPACESUB_TEST_DIR", "/data")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "~", want: home},
		{input: "~/db.sqlite", want: filepath.Join(home, "db.sqlite")},
		{input: "$SPACESUB_TEST_DIR/db.sqlite", want: "/data/db.sqlite"},
		{input: "/abs/path", want: "/abs/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestXDGDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	assert.Equal(t, "/xdg/config/spacesub", ConfigDir())
	assert.Equal(t, "/xdg/data/spacesub", DataDir())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	assert.Equal(t, filepath.Join(home, ".config", "spacesub"), ConfigDir())
	assert.Equal(t, filepath.Join(home, ".local", "share", "spacesub"), DataDir())
}

func TestDefaults(t *testing.T) {
	resetViper(t)

	id, err := UserID()
	require.NoError(t, err)
	assert.Equal(t, "default", id)

	store, err := SuggestionStore()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, store)

	imp, err := LoadImportConfig()
	require.NoError(t, err)
	assert.Equal(t, "RUB", imp.DefaultCurrency)
	assert.Equal(t, 365, imp.Days)

	analysis, err := LoadAnalysisConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, analysis.FetchTimeout)
	assert.False(t, analysis.StableIDs)

	assert.NotContains(t, DatabasePath(), "$HOME")
}

func TestLoadAnalysisConfig(t *testing.T) {
	resetViper(t)
	viper.Set(KeyStableIDs, true)
	viper.Set(KeyFetchTimeout, "5s")

	cfg, err := LoadAnalysisConfig()
	require.NoError(t, err)
	assert.True(t, cfg.StableIDs)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)

	viper.Set(KeyFetchTimeout, "-1s")
	_, err = LoadAnalysisConfig()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestSuggestionStore_Invalid(t *testing.T) {
	resetViper(t)
	viper.Set(KeySuggestionStore, "redis")

	_, err := SuggestionStore()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	viper.Set(KeySuggestionStore, "MEMORY")
	store, err := SuggestionStore()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, store)
}

func TestUserID_Blank(t *testing.T) {
	resetViper(t)
	viper.Set(KeyUserID, "  ")

	_, err := UserID()
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestLoadImportConfig(t *testing.T) {
	resetViper(t)
	viper.Set(KeyDefaultCurrency, "usd")
	viper.Set(KeyImportDays, 90)

	cfg, err := LoadImportConfig()
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, 90, cfg.Days)

	viper.Set(KeyImportDays, 0)
	_, err = LoadImportConfig()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadPlaidConfig(t *testing.T) {
	t.Setenv("PLAID_CLIENT_ID", "")
	t.Setenv("PLAID_SECRET", "")
	t.Setenv("PLAID_ACCESS_TOKEN", "")

	t.Run("from viper", func(t *testing.T) {
		resetViper(t)
		viper.Set("plaid.client_id", "client")
		viper.Set("plaid.secret", "secret")
		viper.Set("plaid.access_token", "access-sandbox-1")

		cfg, err := LoadPlaidConfig()
		require.NoError(t, err)
		assert.Equal(t, "client", cfg.ClientID)
		assert.Equal(t, "sandbox", cfg.Environment)
	})

	t.Run("env fallback", func(t *testing.T) {
		resetViper(t)
		t.Setenv("PLAID_CLIENT_ID", "env-client")
		t.Setenv("PLAID_SECRET", "env-secret")
		t.Setenv("PLAID_ACCESS_TOKEN", "env-token")

		cfg, err := LoadPlaidConfig()
		require.NoError(t, err)
		assert.Equal(t, "env-client", cfg.ClientID)
		assert.Equal(t, "env-token", cfg.AccessToken)
	})

	t.Run("missing", func(t *testing.T) {
		resetViper(t)

		_, err := LoadPlaidConfig()
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})

	t.Run("bad environment", func(t *testing.T) {
		resetViper(t)
		viper.Set("plaid.client_id", "client")
		viper.Set("plaid.secret", "secret")
		viper.Set("plaid.access_token", "token")
		viper.Set("plaid.environment", "development")

		_, err := LoadPlaidConfig()
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}

func TestLoadSheetsConfig(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEETS_SPREADSHEET_NAME",
		"GOOGLE_SHEETS_TIME_ZONE",
	} {
		t.Setenv(key, "")
	}

	t.Run("service account", func(t *testing.T) {
		resetViper(t)
		viper.Set("sheets.service_account_path", "~/keys/sa.json")
		viper.Set("sheets.spreadsheet_id", "sheet-1")

		cfg, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.NotContains(t, cfg.ServiceAccountPath, "~")
		assert.Equal(t, "sheet-1", cfg.SpreadsheetID)
	})

	t.Run("env name override", func(t *testing.T) {
		resetViper(t)
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "id")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")
		t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "Household")

		cfg, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.Equal(t, "Household", cfg.SpreadsheetName)
		assert.Equal(t, "Europe/Moscow", cfg.TimeZone)
	})

	t.Run("viper wins over env", func(t *testing.T) {
		resetViper(t)
		t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/env/sa.json")
		t.Setenv("GOOGLE_SHEETS_TIME_ZONE", "UTC")
		viper.Set("sheets.service_account_path", "/viper/sa.json")
		viper.Set("sheets.formatting", false)

		cfg, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.Equal(t, "/viper/sa.json", cfg.ServiceAccountPath)
		assert.Equal(t, "UTC", cfg.TimeZone)
		assert.False(t, cfg.EnableFormatting)
	})

	t.Run("no auth", func(t *testing.T) {
		resetViper(t)

		_, err := LoadSheetsConfig()
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(t.TempDir()))
	})

	t.Run("exports without overriding", func(t *testing.T) {
		dir := t.TempDir()
		content := "SPACESUB_DOTENV_FRESH=from-file\nSPACESUB_DOTENV_SET=from-file\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile), []byte(content), 0o600))

		t.Setenv("SPACESUB_DOTENV_SET", "from-shell")
		t.Cleanup(func() { _ = os.Unsetenv("SPACESUB_DOTENV_FRESH") })

		require.NoError(t, LoadDotEnv(dir))
		assert.Equal(t, "from-file", os.Getenv("SPACESUB_DOTENV_FRESH"))
		assert.Equal(t, "from-shell", os.Getenv("SPACESUB_DOTENV_SET"))
	})
}
