package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/concilia-dev/concilia/internal/statement"
)

func newTemplateCommand() *cobra.Command {
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an example statement file with the expected columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(format, out)
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output path (default plantilla-cartola.<format>)")

	return cmd
}

func runTemplate(format, out string) error {
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unknown format %q, want csv or xlsx", format)
	}
	if out == "" {
		out = "plantilla-cartola." + format
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	if format == "csv" {
		err = statement.WriteTemplateCSV(f)
	} else {
		err = statement.WriteTemplateXLSX(f)
	}
	if err != nil {
		return fmt.Errorf("writing template: %w", err)
	}

	fmt.Printf("Wrote %s template to %s\n", format, out)
	return nil
}
