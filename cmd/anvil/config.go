package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/anvildb/anvil/pkg/anvil"
)

// Config represents the anvil.yaml configuration file.
type Config struct {
	DatabaseURL   string `yaml:"database_url"`
	ModelFile     string `yaml:"model_file"`
	MigrationsDir string `yaml:"migrations_dir"`
	Dialect       string `yaml:"dialect"`
}

// loadConfig resolves configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults.
func loadConfig() (*Config, error) {
	// A local .env is a convenience for DATABASE_URL; missing is fine.
	_ = godotenv.Load()

	cfg := &Config{
		ModelFile:     "./models.yaml",
		MigrationsDir: "./migrations",
	}

	if data, err := os.ReadFile(configFile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		// Allow ${VAR} interpolation so credentials stay out of the file.
		cfg.DatabaseURL = os.Expand(cfg.DatabaseURL, os.Getenv)
	}

	if envURL := os.Getenv("DATABASE_URL"); envURL != "" && databaseURL == "" {
		cfg.DatabaseURL = envURL
	}
	if envModel := os.Getenv("ANVIL_MODEL_FILE"); envModel != "" {
		cfg.ModelFile = envModel
	}
	if envMigrations := os.Getenv("ANVIL_MIGRATIONS_DIR"); envMigrations != "" {
		cfg.MigrationsDir = envMigrations
	}

	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}

	return cfg, nil
}

// newClient builds an anvil client from the resolved config.
func newClient() (*anvil.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, anvil.ErrMissingDatabaseURL
	}

	opts := []anvil.Option{
		anvil.WithDatabaseURL(cfg.DatabaseURL),
		anvil.WithModelFile(cfg.ModelFile),
		anvil.WithMigrationsDir(cfg.MigrationsDir),
	}
	if cfg.Dialect != "" {
		opts = append(opts, anvil.WithDialect(cfg.Dialect))
	}

	return anvil.New(opts...)
}

// mustClient exits with a styled error when the client cannot be built.
func mustClient() *anvil.Client {
	client, err := newClient()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	return client
}
