package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "tresorerie-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "tresorerie")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/tresorerie")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runTresorerie(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runTresorerie(t, "init", dir, "--name", "Seguin BTP", "--siret", "12345678900011")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "tresorerie.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Seguin BTP")
	assert.Contains(t, contents, "siret: \"12345678900011\"")
	assert.Contains(t, contents, "vat_regime: trimestriel")
}

func TestInit_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	_, err := runTresorerie(t, "init", dir, "--name", "Seguin BTP")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "tresorerie.db"))
	require.NoError(t, err, "database file should exist")
	assert.False(t, info.IsDir())

	exports, err := os.Stat(filepath.Join(dir, "exports"))
	require.NoError(t, err)
	assert.True(t, exports.IsDir())
}

func TestInit_RequiresName(t *testing.T) {
	dir := t.TempDir()
	_, err := runTresorerie(t, "init", dir)
	require.Error(t, err, "init without --name should fail")
}

func TestPrevisionLifecycle(t *testing.T) {
	dir := t.TempDir()
	_, err := runTresorerie(t, "init", dir, "--name", "Seguin BTP")
	require.NoError(t, err)
	cfg := filepath.Join(dir, "tresorerie.yaml")

	out, err := runTresorerie(t, "--config", cfg, "prevision", "add", "Loyer atelier",
		"--type", "sortie", "--amount", "800", "--date", "2025-03-01", "--recurrence", "mensuel")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Added prevision")

	out, err = runTresorerie(t, "--config", cfg, "prevision", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Loyer atelier")
	assert.Contains(t, out, "800.00")

	out, err = runTresorerie(t, "--config", cfg, "balance")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Solde actuel")
}

func TestSyncFromSnapshot(t *testing.T) {
	dir := t.TempDir()
	_, err := runTresorerie(t, "init", dir, "--name", "Seguin BTP")
	require.NoError(t, err)
	cfg := filepath.Join(dir, "tresorerie.yaml")

	snapshot := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(snapshot, []byte(`{
		"devis": [{"id": "fac-1", "numero": "F2025-001", "statut": "envoye",
			"total_ttc": 1200, "montant_paye": 200, "date_echeance": "2025-03-15"}],
		"depenses": [{"id": "dep-1", "description": "Ciment", "montant": 340.5, "date": "2025-03-02"}]
	}`), 0o644))

	out, err := runTresorerie(t, "--config", cfg, "sync", "--snapshot", snapshot)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Synced 2 records")

	// Idempotent: a second run materializes nothing.
	out, err = runTresorerie(t, "--config", cfg, "sync", "--snapshot", snapshot)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Synced 0 records")
}
