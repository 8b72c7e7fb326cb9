package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	openai "github.com/sashabaranov/go-openai"

	"github.com/concilia-dev/concilia/internal/analysis"
	"github.com/concilia-dev/concilia/internal/mail"
)

func newAnalyzeCommand() *cobra.Command {
	var projectDir string
	var since string
	var allMail bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize the business mailbox with AI",
		Long: `Reads unread mail over IMAP, filters spam, and asks a chat completion
model for a structured summary of the day's correspondence. The result
is printed as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(projectDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runAnalyze(cmd.Context(), absDir, since, allMail)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", ".", "project directory")
	cmd.Flags().StringVar(&since, "since", "", "only analyze mail since this date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&allMail, "all", false, "include already-read mail")

	return cmd
}

func runAnalyze(ctx context.Context, projectDir, since string, allMail bool) error {
	logger := newLogger("analyze")

	cfg, err := loadConfig(projectDir)
	if err != nil {
		return err
	}
	if cfg.AI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	sinceTime := time.Now().Truncate(24 * time.Hour)
	if since != "" {
		sinceTime, err = time.Parse("2006-01-02", since)
		if err != nil {
			return fmt.Errorf("invalid --since %q: %w", since, err)
		}
	}

	reader, err := mail.Dial(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.Mailbox, logger)
	if err != nil {
		return err
	}
	defer reader.Close()

	emails, err := reader.Fetch(mail.FetchOptions{
		Since:      sinceTime,
		UnreadOnly: !allMail,
		Limit:      cfg.AI.MaxEmails,
	})
	if err != nil {
		return err
	}
	logger.Info("fetched mail", "count", len(emails))

	analyzer := analysis.New(openai.NewClient(cfg.AI.APIKey), analysis.Options{
		Model:     cfg.AI.Model,
		MaxEmails: cfg.AI.MaxEmails,
		TextLimit: cfg.AI.TextLimit,
	}, logger)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)
	defer cancel()

	result, err := analyzer.Analyze(ctx, emails)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
