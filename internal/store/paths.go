package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/majordomo-labs/majordomo/internal/pathutil"
)

// ResolveDataDir resolves the configured data directory, falling back to
// ~/.majordomo, and ensures it exists.
func ResolveDataDir(configured string) (string, error) {
	var dir string
	if trimmed := strings.TrimSpace(configured); trimmed != "" {
		expanded, err := pathutil.Expand(trimmed)
		if err != nil {
			return "", err
		}
		dir = expanded
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".majordomo")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// AuditDBPath returns the audit database location inside the data directory.
func AuditDBPath(dataDir string) string {
	return filepath.Join(dataDir, "audit.db")
}
