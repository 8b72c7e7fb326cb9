package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file written by `concilia init`.
const FileName = "concilia.yaml"

// Config represents the top-level concilia.yaml configuration.
type Config struct {
	Business  BusinessConfig  `yaml:"business"`
	Statement StatementConfig `yaml:"statement"`
	Matching  MatchingConfig  `yaml:"matching"`
	Database  DatabaseConfig  `yaml:"database"`
	Mail      MailConfig      `yaml:"mail"`
	AI        AIConfig        `yaml:"ai"`
}

// BusinessConfig identifies the property the books belong to.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// StatementConfig limits what statement files are accepted.
type StatementConfig struct {
	AcceptedExtensions []string `yaml:"accepted_extensions"`
	MaxFileSizeMB      int64    `yaml:"max_file_size_mb"`
}

// MatchingConfig controls the reconciliation tolerance windows.
type MatchingConfig struct {
	BankWindowDays          int `yaml:"bank_window_days"`
	SettlementWindowMinutes int `yaml:"settlement_window_minutes"`
	PaymentLookbackDays     int `yaml:"payment_lookback_days"`
}

// DatabaseConfig points at the Postgres instance holding system payments.
// Password comes from CONCILIA_DB_PASSWORD, never from the file.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	SSLMode  string `yaml:"ssl_mode"`
	Password string `yaml:"-"`
}

// DSN returns a Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// MailConfig points at the IMAP mailbox to analyze.
// Password comes from CONCILIA_IMAP_PASSWORD.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Mailbox  string `yaml:"mailbox"`
	Password string `yaml:"-"`
}

// AIConfig controls the email analysis call.
// The API key comes from OPENAI_API_KEY.
type AIConfig struct {
	Model          string `yaml:"model"`
	MaxEmails      int    `yaml:"max_emails"`
	TextLimit      int    `yaml:"text_limit"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	APIKey         string `yaml:"-"`
}

// Load reads a concilia.yaml file from disk and fills in secrets from
// the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Database.Password = os.Getenv("CONCILIA_DB_PASSWORD")
	cfg.Mail.Password = os.Getenv("CONCILIA_IMAP_PASSWORD")
	cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")

	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Statement: StatementConfig{
			AcceptedExtensions: []string{".csv", ".xlsx", ".xls"},
			MaxFileSizeMB:      10,
		},
		Matching: MatchingConfig{
			BankWindowDays:          1,
			SettlementWindowMinutes: 5,
			PaymentLookbackDays:     30,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			Name:    "concilia",
			User:    "concilia",
			SSLMode: "disable",
		},
		Mail: MailConfig{
			Host:    "imap.gmail.com",
			Port:    993,
			Mailbox: "INBOX",
		},
		AI: AIConfig{
			Model:          "gpt-4o-mini",
			MaxEmails:      50,
			TextLimit:      500,
			TimeoutSeconds: 60,
		},
	}
}
