package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where an API key or password may come from.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret from configuration or flags.
	Value string
	// File points to a file holding the secret. It wins over Value.
	File string
	// Env names an environment variable consulted when File and Value are empty.
	Env string
}

// Load resolves src in the order File, Value, Env and returns the trimmed secret.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
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

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
		return "", fmt.Errorf("%s is not configured (set it in the config or %s)", name, env)
	}

	return "", fmt.Errorf("%s is not configured", name)
}

// Optional behaves like Load but treats a missing secret as empty.
// Errors reading a configured file are still returned.
func Optional(src Source) (string, error) {
	if strings.TrimSpace(src.File) == "" && strings.TrimSpace(src.Value) == "" {
		if env := strings.TrimSpace(src.Env); env == "" || strings.TrimSpace(os.Getenv(env)) == "" {
			return "", nil
		}
	}
	return Load(src)
}
