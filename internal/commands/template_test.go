package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concilia-dev/concilia/internal/statement"
)

func TestTemplate_WritesParsableCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plantilla.csv")
	require.NoError(t, execute(t, "template", "--format", "csv", "--out", out))

	parser := statement.NewParser(statement.DefaultOptions())
	result, err := parser.ParseFile(out)
	require.NoError(t, err)

	assert.True(t, result.OK())
	assert.NotEmpty(t, result.Transactions)
}

func TestTemplate_WritesParsableXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plantilla.xlsx")
	require.NoError(t, execute(t, "template", "--format", "xlsx", "--out", out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	parser := statement.NewParser(statement.DefaultOptions())
	result, err := parser.ParseXLSX(f)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.NotEmpty(t, result.Transactions)
}

func TestTemplate_RejectsUnknownFormat(t *testing.T) {
	assert.Error(t, execute(t, "template", "--format", "pdf"))
}
