package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/concilia-dev/concilia/internal/buildinfo"
	"github.com/concilia-dev/concilia/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "concilia",
		Short:   "Bank and card reconciliation for hotel back offices",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newReconcileCommand())
	rootCmd.AddCommand(newSettlementCommand())
	rootCmd.AddCommand(newTemplateCommand())
	rootCmd.AddCommand(newAnalyzeCommand())

	return rootCmd
}

func newLogger(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Prefix: prefix})
}

func loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.Load(configPath(dir))
	if err != nil {
		return nil, fmt.Errorf("loading %s (run `concilia init` first?): %w", config.FileName, err)
	}
	return cfg, nil
}

func configPath(dir string) string {
	return filepath.Join(dir, config.FileName)
}
