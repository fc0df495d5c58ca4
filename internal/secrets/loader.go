// Package secrets resolves credentials such as storage connection URLs that
// may be given inline or through a file.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned by Load when neither a value nor a file is set.
var ErrNotConfigured = errors.New("secret is not configured")

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages, e.g. "storage url".
	Name  string
	Value string
	// File takes precedence over Value when set.
	File string
}

// Load returns the trimmed secret from the source.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file == "" {
		secret := strings.TrimSpace(src.Value)
		if secret == "" {
			return "", fmt.Errorf("%s: %w", name, ErrNotConfigured)
		}
		return secret, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("%s file %q is empty", name, file)
	}
	return secret, nil
}
