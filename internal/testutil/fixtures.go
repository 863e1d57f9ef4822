package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFixture writes content to name inside a per-test temporary directory and
// returns the file path.
func WriteFixture(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
