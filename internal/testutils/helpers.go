package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteProgram stores source in a fresh temp directory and returns its path.
// It fails the test immediately on error.
func WriteProgram(t *testing.T, source string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "program.logo")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644), "Failed to write program")
	return path
}

// ReadJSON decodes the JSON document at path into a generic map.
func ReadJSON(t *testing.T, path string) map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "Failed to read %s", path)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc), "Invalid JSON in %s", path)
	return doc
}
