package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choripam/printd/internal/order"
)

func ledgerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "printed_orders.json")
}

func TestLoad_MissingFileYieldsEmpty(t *testing.T) {
	l := Load(ledgerPath(t))
	require.NotNil(t, l)
	assert.Equal(t, 0, l.Len())
}

func TestLoad_CorruptJSONYieldsEmpty(t *testing.T) {
	path := ledgerPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	l := Load(path)
	assert.Equal(t, 0, l.Len())
}

func TestLoad_LegacyArrayMigratesToEmpty(t *testing.T) {
	path := ledgerPath(t)
	require.NoError(t, os.WriteFile(path, []byte(`["O1", "O2"]`), 0o644))

	l := Load(path)
	assert.Equal(t, 0, l.Len(), "legacy id array carries no fingerprints and is discarded")

	_, found := l.Get("O1")
	assert.False(t, found)
}

func TestLoad_LegacyArrayWithLeadingWhitespace(t *testing.T) {
	path := ledgerPath(t)
	require.NoError(t, os.WriteFile(path, []byte("\n\t [\"O1\"]"), 0o644))

	l := Load(path)
	assert.Equal(t, 0, l.Len())
}

func TestCommitThenReload(t *testing.T) {
	path := ledgerPath(t)
	fp := order.Fingerprint{{Name: "chorizo", Quantity: 2}, {Name: "pan", Quantity: 2}}

	l := Load(path)
	require.NoError(t, l.Commit("O1", fp))

	reloaded := Load(path)
	got, found := reloaded.Get("O1")
	require.True(t, found)
	assert.True(t, fp.Equal(got))
}

func TestCommit_OverwritesPreviousFingerprint(t *testing.T) {
	path := ledgerPath(t)
	l := Load(path)

	require.NoError(t, l.Commit("O1", order.Fingerprint{{Name: "chorizo", Quantity: 2}}))
	require.NoError(t, l.Commit("O1", order.Fingerprint{{Name: "chorizo", Quantity: 3}}))

	got, found := Load(path).Get("O1")
	require.True(t, found)
	assert.True(t, order.Fingerprint{{Name: "chorizo", Quantity: 3}}.Equal(got))
}

func TestSave_LeavesNoTempDebris(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "printed_orders.json")

	l := Load(path)
	require.NoError(t, l.Commit("O1", order.Fingerprint{{Name: "pan", Quantity: 1}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "printed_orders.json", entries[0].Name())
}

func TestLoad_OnDiskFormatIsPairArrays(t *testing.T) {
	path := ledgerPath(t)

	require.NoError(t, os.WriteFile(path, []byte(`{"O1": [["chorizo", 2], ["pan", 2]]}`), 0o644))

	l := Load(path)
	got, found := l.Get("O1")
	require.True(t, found)
	assert.True(t, order.Fingerprint{{Name: "chorizo", Quantity: 2}, {Name: "pan", Quantity: 2}}.Equal(got))
}
