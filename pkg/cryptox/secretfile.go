package cryptox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadSecretFile reads the secret stored at path. When the file does not
// exist a new 256-bit token is generated and written there with 0600
// permissions. Used for the password pepper and the secret box key.
func LoadSecretFile(path string) (string, error) {
	path = filepath.Clean(path)

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		secret := strings.TrimSpace(string(b))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", path)
		}
		return secret, nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create secret directory: %w", err)
	}

	secret, err := GenerateToken(TokenSize256)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(secret), 0o600); err != nil {
		return "", fmt.Errorf("failed to write secret file: %w", err)
	}
	return secret, nil
}
