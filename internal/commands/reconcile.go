package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/concilia-dev/concilia/internal/config"
	"github.com/concilia-dev/concilia/internal/model"
	"github.com/concilia-dev/concilia/internal/payments"
	"github.com/concilia-dev/concilia/internal/reconcile"
	"github.com/concilia-dev/concilia/internal/statement"
)

func newReconcileCommand() *cobra.Command {
	var projectDir string
	var export bool
	var manual []string

	cmd := &cobra.Command{
		Use:   "reconcile [statement-file]",
		Short: "Match a bank statement against registered payments",
		Long: `Parses a bank statement, fetches payments registered in the business
database over the lookback window, and matches both sides by amount and
date. Without a file argument, every pending file in statements/ is
processed and moved to statements/processed/.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(projectDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			file := ""
			if len(args) > 0 {
				file = args[0]
			}
			return runReconcile(cmd.Context(), absDir, file, export, manual)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", ".", "project directory")
	cmd.Flags().BoolVar(&export, "export", false, "write a session report to exports/")
	cmd.Flags().StringArrayVar(&manual, "match", nil, "manual match as <transaction-id>:<payment-id> (repeatable)")

	return cmd
}

func runReconcile(ctx context.Context, projectDir, file string, export bool, manual []string) error {
	logger := newLogger("reconcile")

	cfg, err := loadConfig(projectDir)
	if err != nil {
		return err
	}

	var files []statement.FileInfo
	fromScan := file == ""
	if fromScan {
		files, err = statement.Scan(projectDir, cfg.Statement.AcceptedExtensions)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No statement files pending in statements/")
			return nil
		}
	} else {
		files = []statement.FileInfo{{Name: filepath.Base(file), Path: file}}
	}

	store, err := payments.Open(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	parser := statement.NewParser(statement.Options{
		AcceptedExtensions: cfg.Statement.AcceptedExtensions,
		MaxFileSizeMB:      cfg.Statement.MaxFileSizeMB,
	})

	for _, f := range files {
		if err := reconcileFile(ctx, cfg, parser, store, projectDir, f, export, manual, logger.With("file", f.Name)); err != nil {
			return err
		}
		if fromScan {
			if err := statement.MarkProcessed(projectDir, f.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func reconcileFile(ctx context.Context, cfg *config.Config, parser *statement.Parser, store payments.Store,
	projectDir string, f statement.FileInfo, export bool, manual []string, logger *log.Logger) error {

	result, err := parser.ParseFile(f.Path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", f.Name, err)
	}
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	if !result.OK() {
		for _, e := range result.Errors {
			logger.Error(e)
		}
		return fmt.Errorf("%s has %d invalid rows", f.Name, len(result.Errors))
	}

	to := time.Now()
	from := to.AddDate(0, 0, -cfg.Matching.PaymentLookbackDays)
	all, err := store.ConsolidatedPayments(ctx, from, to)
	if err != nil {
		return fmt.Errorf("fetching payments: %w", err)
	}
	candidates := payments.Reconcilable(all)

	window := time.Duration(cfg.Matching.BankWindowDays) * 24 * time.Hour
	matched := reconcile.MatchTransactions(result.Transactions, candidates, window)

	for _, m := range manual {
		txnID, payID, found := strings.Cut(m, ":")
		if !found {
			return fmt.Errorf("invalid --match %q, want <transaction-id>:<payment-id>", m)
		}
		if err := reconcile.ManualMatch(result.Transactions, candidates, txnID, payID); err != nil {
			return err
		}
	}

	stats := reconcile.Summarize(result.Transactions, candidates)
	printStats(f.Name, result, stats, matched)

	if export {
		return exportReport(projectDir, result.Transactions, candidates)
	}
	return nil
}

func printStats(name string, result *statement.Result, stats reconcile.Stats, autoMatched int) {
	fmt.Printf("%s: %d transactions (income %s, expense %s)\n",
		name, result.Summary.TotalTransactions, result.Summary.TotalIncome, result.Summary.TotalExpense)
	fmt.Printf("  matched:   %d transactions / %d payments (%d automatic)\n",
		stats.MatchedTransactions, stats.MatchedPayments, autoMatched)
	fmt.Printf("  unmatched: %d transactions / %d payments (%d pending)\n",
		stats.UnmatchedTransactions, stats.UnmatchedPayments, stats.PendingReconciliation)
	fmt.Printf("  totals:    bank %s / system %s (difference %s)\n",
		stats.TransactionTotal, stats.PaymentTotal, stats.Difference)
}

func exportReport(projectDir string, txns []model.Transaction, pays []model.Payment) error {
	sessionID := uuid.New().String()
	path := filepath.Join(projectDir, "exports", fmt.Sprintf("reconciliation-%s.csv", sessionID))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating exports dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer out.Close()

	if err := reconcile.WriteReport(out, sessionID, txns, pays); err != nil {
		return err
	}
	fmt.Printf("  report:    %s\n", path)
	return nil
}
