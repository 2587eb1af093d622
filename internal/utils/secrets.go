// Package utils holds small shared helpers.
package utils

import (
	"fmt"
	"os"
	"strings"
)

// ReadSecret reads a secret from the standard Docker Secrets path. For
// local runs without secret files, ReadSecretWithFallback accepts an
// environment variable instead.
func ReadSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadSecretWithFallback prefers the secret file and falls back to the
// named environment variable.
func ReadSecretWithFallback(secretName, envVar string) (string, error) {
	if secret, err := ReadSecret(secretName); err == nil {
		return secret, nil
	}
	if value := strings.TrimSpace(os.Getenv(envVar)); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("secret %s not found in /run/secrets or $%s", secretName, envVar)
}
