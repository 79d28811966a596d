package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DotEnvFile is the name of the optional secrets file in the config directory.
const DotEnvFile = ".env"

// LoadDotEnv exports variables from dir/.env into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, DotEnvFile)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
