package statement

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scanAccepted = []string{".csv", ".xlsx", ".xls"}

func TestScan_FindsStatements(t *testing.T) {
	dir := t.TempDir()
	stmtDir := filepath.Join(dir, "statements")
	require.NoError(t, os.MkdirAll(stmtDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(stmtDir, "banco.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(stmtDir, "cartola.xlsx"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(stmtDir, "notas.txt"), []byte("data"), 0o644))

	files, err := Scan(dir, scanAccepted)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	stmtDir := filepath.Join(dir, "statements")
	require.NoError(t, os.MkdirAll(filepath.Join(stmtDir, "processed"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(stmtDir, "nuevo.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(stmtDir, "processed", "viejo.csv"), []byte("data"), 0o644))

	files, err := Scan(dir, scanAccepted)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "nuevo.csv", files[0].Name)
}

func TestScan_EmptyRoot(t *testing.T) {
	files, err := Scan(t.TempDir(), scanAccepted)
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	stmtDir := filepath.Join(dir, "statements")
	require.NoError(t, os.MkdirAll(stmtDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stmtDir, "banco.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "banco.csv"))

	_, err := os.Stat(filepath.Join(stmtDir, "banco.csv"))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(stmtDir, "processed", "banco.csv"))
	assert.NoError(t, err)
}

func TestWriteTemplateCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplateCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Fecha,Descripcion,Monto,Referencia,Cuenta", lines[0])

	// The template must survive its own parser.
	res, err := testParser().ParseCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Len(t, res.Transactions, 4)
}
