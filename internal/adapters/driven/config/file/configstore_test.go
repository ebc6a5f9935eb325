package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigStore_RoundTrip tests set, persistence and reload
func TestConfigStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("oracle.model", "gpt-4o-mini"))
	require.NoError(t, store.Set("oracle.timeout_seconds", 20))
	require.NoError(t, store.Set("verbose", true))

	assert.Equal(t, "gpt-4o-mini", store.GetString("oracle.model"))
	assert.Equal(t, 20, store.GetInt("oracle.timeout_seconds"))
	assert.True(t, store.GetBool("verbose"))

	// A fresh store reads the persisted file back.
	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", reloaded.GetString("oracle.model"))
	assert.Equal(t, 20, reloaded.GetInt("oracle.timeout_seconds"))
}

// TestConfigStore_NestedTOMLFlattened tests dot-notation access to
// nested tables
func TestConfigStore_NestedTOMLFlattened(t *testing.T) {
	dir := t.TempDir()
	content := "[oracle]\nmodel = \"gpt-4o\"\nrequests_per_minute = 30\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", store.GetString("oracle.model"))
	assert.Equal(t, 30, store.GetInt("oracle.requests_per_minute"))
}

// TestConfigStore_MissingAndMistyped tests zero-value fallbacks
func TestConfigStore_MissingAndMistyped(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "", store.GetString("absent"))
	assert.Equal(t, 0, store.GetInt("absent"))
	assert.False(t, store.GetBool("absent"))

	require.NoError(t, store.Set("oracle.model", 42))
	assert.Equal(t, "", store.GetString("oracle.model"))
}
