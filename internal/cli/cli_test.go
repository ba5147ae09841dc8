package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "catalog.db"))
	t.Setenv("ENVIRONMENT", "test")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date")
}

func TestSeedCommandIsIdempotent(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Created 3 media type(s)")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Created 0 media type(s), 0 categor(ies), 0 brand(s)")
}

func TestSeedCommandMissingFile(t *testing.T) {
	dir := setupEnv(t)

	_, err := run(t, "seed", "--file", filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	dir := setupEnv(t)
	target := filepath.Join(dir, "out.xlsx")

	out, err := run(t, "export", "services", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported services")

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Services")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
	assert.Equal(t, "id", rows[0][0])
}

func TestExportCommandRejectsUnknownKind(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "export", "gadgets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")

	_, err = run(t, "export")
	assert.Error(t, err)
}
