package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/khata-dev/khata/internal/config"
	"github.com/khata-dev/khata/internal/gitops"
	"github.com/khata-dev/khata/internal/journal"
	"github.com/khata-dev/khata/internal/ledger"
	"github.com/khata-dev/khata/internal/logger"
	"github.com/khata-dev/khata/internal/postgres"
)

// project is an opened khata project: its config, store and service.
type project struct {
	dir    string
	cfg    *config.Config
	svc    *ledger.Service
	log    zerolog.Logger
	closer []func()
}

// openProject loads <dir>/khata.yaml, configures logging and opens the
// configured store. Callers must call close.
func openProject(ctx context.Context, opts *globalOptions) (*project, error) {
	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.LoadProject(dir)
	if err != nil {
		return nil, fmt.Errorf("loading project at %s: %w", dir, err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	logCloser, err := setupLogger(cfg.Log, dir)
	if err != nil {
		return nil, err
	}

	p := &project{
		dir:    dir,
		cfg:    cfg,
		log:    logger.WithComponent("cli"),
		closer: []func(){func() { _ = logCloser.Close() }},
	}

	store, err := p.openStore(ctx)
	if err != nil {
		p.close()
		return nil, err
	}
	p.svc = ledger.NewService(store, cfg.SystemAccounts.Posting(),
		ledger.WithLogger(logger.WithComponent("ledger")))
	return p, nil
}

func (p *project) openStore(ctx context.Context) (ledger.Store, error) {
	switch p.cfg.Storage.Driver {
	case config.DriverPostgres:
		store, err := postgres.Connect(ctx, p.cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		p.closer = append(p.closer, store.Close)
		return store, nil
	default:
		return journal.Open(p.dir)
	}
}

func (p *project) close() {
	for i := len(p.closer) - 1; i >= 0; i-- {
		p.closer[i]()
	}
}

// commit records a mutating command in git when auto_commit is on and the
// project is a repository. A failed commit is logged, not returned: the
// books are already written.
func (p *project) commit(ctx context.Context, message string) {
	if !p.cfg.Git.AutoCommit || !gitops.IsRepo(p.dir) {
		return
	}
	hash, err := gitops.CommitIfChanged(ctx, p.dir, message, gitAuthor(p.cfg))
	if err != nil {
		p.log.Warn().Err(err).Str("message", message).Msg("auto-commit failed")
		return
	}
	if hash != "" {
		p.log.Debug().Str("commit", hash).Str("message", message).Msg("auto-committed")
	}
}

func gitAuthor(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}

// setupLogger applies cfg, resolving a relative log file against the
// project directory.
func setupLogger(cfg logger.Config, dir string) (io.Closer, error) {
	switch cfg.Output {
	case "", "stderr", "stdout":
	default:
		if !filepath.IsAbs(cfg.Output) {
			cfg.Output = filepath.Join(dir, cfg.Output)
		}
	}
	c, err := logger.Setup(cfg)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	return c, nil
}

// withProject opens the project, runs fn and closes it again.
func withProject(ctx context.Context, opts *globalOptions, fn func(*project) error) error {
	p, err := openProject(ctx, opts)
	if err != nil {
		return err
	}
	defer p.close()

	if err := fn(p); err != nil {
		p.log.Error().Err(err).Msg("command failed")
		return err
	}
	return nil
}
