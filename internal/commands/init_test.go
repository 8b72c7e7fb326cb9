package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concilia-dev/concilia/internal/config"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, execute(t, "init", dir, "--name", "Termas del Sur"))

	expectedDirs := []string{
		"statements",
		filepath.Join("statements", "processed"),
		"settlements",
		"exports",
		"logs",
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir())
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "Termas del Sur", cfg.Business.Name)
	assert.Equal(t, 1, cfg.Matching.BankWindowDays)

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(gitignore), "exports/")
}

func TestInit_RequiresName(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, execute(t, "init", dir))
}
