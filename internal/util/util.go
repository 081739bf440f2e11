package util

import (
	"os"
	"path/filepath"
	"strings"
)

// AppDirName is the per-user directory holding settings, logs and exported invoices.
const AppDirName = "invoice-drafter"

// WritablePath returns the cleaned WRITABLE_PATH environment variable when it is set.
// It accepts both uppercase and lowercase variants for compatibility with existing conventions.
func WritablePath() string {
	for _, key := range []string{"WRITABLE_PATH", "writable_path"} {
		if value, ok := os.LookupEnv(key); ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return filepath.Clean(trimmed)
			}
		}
	}
	return ""
}

// DataDir returns the directory the application writes to: WRITABLE_PATH when set, otherwise
// the user's config directory, falling back to the working directory.
func DataDir() string {
	if dir := WritablePath(); dir != "" {
		return dir
	}
	if base, errDir := os.UserConfigDir(); errDir == nil && base != "" {
		return filepath.Join(base, AppDirName)
	}
	return AppDirName
}

// MaskAccountNumber obscures a bank account number for logging, keeping only the last digits.
func MaskAccountNumber(account string) string {
	account = strings.TrimSpace(account)
	switch n := len(account); {
	case n > 8:
		return strings.Repeat("*", n-4) + account[n-4:]
	case n > 4:
		return strings.Repeat("*", n-2) + account[n-2:]
	case n > 0:
		return strings.Repeat("*", n)
	}
	return ""
}
