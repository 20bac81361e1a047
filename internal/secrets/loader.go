package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration, flags or
	// the environment.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
}

// Secret is the outcome of resolving a single credential.
type Secret struct {
	Name  string
	Value string
	// Err explains why the secret is absent. It is nil when Value is usable.
	Err error
}

// Present reports whether the secret resolved to a usable value.
func (s Secret) Present() bool {
	return s.Err == nil && s.Value != ""
}

// Load returns the resolved secret value from the provided source. When File is
// set it takes precedence over Value. The returned secret is always trimmed. An
// error is returned when neither File nor Value contain a usable secret.
func Load(src Source) (string, error) {
	name := sourceName(src)

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		src.File = file
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q is empty", name, src.File)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}

// Lookup resolves a credential whose absence is an expected condition.
// It never fails; the returned Secret tells whether the value is present.
func Lookup(src Source) Secret {
	value, err := Load(src)
	return Secret{Name: sourceName(src), Value: value, Err: err}
}

func sourceName(src Source) string {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}
	return name
}
