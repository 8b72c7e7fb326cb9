package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/concilia-dev/concilia/internal/model"
	"github.com/concilia-dev/concilia/internal/payments"
	"github.com/concilia-dev/concilia/internal/reconcile"
	"github.com/concilia-dev/concilia/internal/settlement"
)

func newSettlementCommand() *cobra.Command {
	var projectDir string
	var manual []string

	cmd := &cobra.Command{
		Use:   "settlement <settlement-file>",
		Short: "Match a card processor settlement against POS card sales",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(projectDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runSettlement(cmd.Context(), absDir, args[0], manual)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", ".", "project directory")
	cmd.Flags().StringArrayVar(&manual, "match", nil, "manual match as <settlement-id>:<sale-id> (repeatable)")

	return cmd
}

func runSettlement(ctx context.Context, projectDir, file string, manual []string) error {
	logger := newLogger("settlement")

	cfg, err := loadConfig(projectDir)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	settlements, err := settlement.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", file, err)
	}
	if len(settlements) == 0 {
		fmt.Println("No settlements in file")
		return nil
	}

	// Fetch card sales covering the settlement span, padded a day on
	// each side so edge-of-day sales are not missed.
	from, to := settlementSpan(settlements)
	from = from.AddDate(0, 0, -1)
	to = to.AddDate(0, 0, 1)

	store, err := payments.Open(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	sales, err := store.CardSales(ctx, from, to)
	if err != nil {
		return fmt.Errorf("fetching card sales: %w", err)
	}

	window := time.Duration(cfg.Matching.SettlementWindowMinutes) * time.Minute
	matched := reconcile.MatchSettlements(settlements, sales, window)

	for _, m := range manual {
		settID, saleID, found := strings.Cut(m, ":")
		if !found {
			return fmt.Errorf("invalid --match %q, want <settlement-id>:<sale-id>", m)
		}
		if err := reconcile.ManualMatchSettlement(settlements, sales, settID, saleID); err != nil {
			return err
		}
	}

	stats := reconcile.SummarizeSettlements(settlements, sales)
	fmt.Printf("%s: %d settlements, %d card sales\n", filepath.Base(file), stats.TotalSettlements, stats.TotalSales)
	fmt.Printf("  matched:   %d (%d automatic)\n", stats.Matched, matched)
	fmt.Printf("  unmatched: %d settlements / %d sales\n", stats.UnmatchedSettlements, stats.UnmatchedSales)
	fmt.Printf("  totals:    settled %s / sold %s (difference %s, fees %s)\n",
		stats.SettlementTotal, stats.SalesTotal, stats.Difference, stats.TotalFees)
	return nil
}

func settlementSpan(setts []model.CardSettlement) (time.Time, time.Time) {
	from, to := setts[0].Timestamp, setts[0].Timestamp
	for _, s := range setts[1:] {
		if s.Timestamp.Before(from) {
			from = s.Timestamp
		}
		if s.Timestamp.After(to) {
			to = s.Timestamp
		}
	}
	return from, to
}
