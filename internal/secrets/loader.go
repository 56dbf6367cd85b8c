// Package secrets resolves credentials from files or inline configuration.
package secrets

import (
	"cmp"
	"fmt"
	"os"
	"strings"
)

const visibleSuffix = 4

// Source names where a secret may come from.
type Source struct {
	// Name appears in error messages.
	Name  string
	Value string
	// File wins over Value when set.
	File string
}

// Load resolves the secret, trimmed. A configured but unreadable or empty file is an error
// even when Value is set.
func Load(src Source) (string, error) {
	name := cmp.Or(strings.TrimSpace(src.Name), "secret")

	if path := strings.TrimSpace(src.File); path != "" {
		return fromFile(name, path)
	}

	if value := strings.TrimSpace(src.Value); value != "" {
		return value, nil
	}

	return "", fmt.Errorf("%s is not configured", name)
}

func fromFile(name, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s from file %q: %w", name, path, err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("%s file %q is empty", name, path)
	}

	return value, nil
}

// Mask hides all but the last few characters of a secret for logging.
func Mask(secret string) string {
	runes := []rune(strings.TrimSpace(secret))
	if len(runes) <= visibleSuffix {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-visibleSuffix) + string(runes[len(runes)-visibleSuffix:])
}
