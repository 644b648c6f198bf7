package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/khata-dev/khata/internal/accounts"
	"github.com/khata-dev/khata/internal/config"
	"github.com/khata-dev/khata/internal/gitops"
	"github.com/khata-dev/khata/internal/importer"
	"github.com/khata-dev/khata/internal/journal"
	"github.com/khata-dev/khata/internal/logger"
	"github.com/khata-dev/khata/internal/postgres"
)

type initOptions struct {
	name   string
	gstin  string
	state  string
	driver string
	dsn    string
	noGit  bool
}

func newInitCommand(global *globalOptions) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new khata project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := global.dir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			logCfg := logger.DefaultConfig()
			if global.logLevel != "" {
				logCfg.Level = global.logLevel
			}
			closer, err := logger.Setup(logCfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			hash, err := runInit(cmd.Context(), absDir, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized khata project at %s", absDir)
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", hash)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.gstin, "gstin", "", "business GSTIN")
	cmd.Flags().StringVar(&opts.state, "state", "", "state of registration")
	cmd.Flags().StringVar(&opts.driver, "driver", config.DriverCSV, "storage driver: csv or postgres")
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "postgres connection string (default $"+config.EnvDatabaseURL+")")
	cmd.Flags().BoolVar(&opts.noGit, "no-git", false, "do not create a git repository")

	return cmd
}

// runInit lays out a project directory and seeds the chart of accounts.
// It returns the initial commit hash, or "" with --no-git.
func runInit(ctx context.Context, dir string, opts initOptions) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return "", fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	dirs := []string{
		"accounts",
		journal.Dir,
		importer.Dir,
		importer.ProcessedDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(opts.name)
	cfg.Business.GSTIN = opts.gstin
	cfg.Business.State = opts.state
	cfg.SystemAccounts = config.SystemAccounts{
		Sales:     accounts.SeedSales,
		Purchase:  accounts.SeedPurchase,
		OutputTax: accounts.SeedOutputGST,
		InputTax:  accounts.SeedInputGST,
		Bank:      accounts.SeedBank,
	}
	cfg.Import.IncomeAccount = accounts.SeedService
	cfg.Storage = config.StorageConfig{Driver: opts.driver, DSN: opts.dsn}
	cfg.Git.AutoCommit = !opts.noGit

	// Validate against the environment too, without writing the env DSN
	// into the file.
	check := *cfg
	check.ApplyEnv()
	if err := check.Validate(); err != nil {
		return "", err
	}

	if err := seedStore(ctx, dir, &check); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	gitignore := "journal/.lock\njournal/.*.csv-*\n.env\n*.log\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, importer.Dir, ".gitkeep"), []byte{}, 0o644); err != nil {
		return "", fmt.Errorf("writing .gitkeep: %w", err)
	}

	if opts.noGit {
		return "", nil
	}
	if !gitops.IsRepo(dir) {
		if err := gitops.Init(ctx, dir); err != nil {
			return "", err
		}
	}
	hash, err := gitops.CommitAll(ctx, dir, "init: Initialize "+opts.name, gitAuthor(cfg))
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}

// seedStore writes the seed chart where the configured driver keeps it.
func seedStore(ctx context.Context, dir string, cfg *config.Config) error {
	chart := accounts.SeedChart()

	if cfg.Storage.Driver == config.DriverPostgres {
		store, err := postgres.Connect(ctx, cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		return store.SeedAccounts(ctx, chart)
	}

	if err := accounts.NewService(chart).Save(dir); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	if _, err := journal.Open(dir); err != nil {
		return err
	}
	return nil
}
