package cli

import (
	"log/slog"

	"aurelion/internal/config"
	"aurelion/internal/infrastructure"
)

// appContext bundles the pieces every command needs.
type appContext struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
}

// setup loads the configuration, resolves the paths and initializes the
// logger. Commands that only read state skip directory creation.
func setup(opts *RootOptions, ensureDirs bool) (*appContext, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}

	paths := config.NewPaths(opts.BaseDir, cfg.Paths)
	if ensureDirs {
		if err := paths.EnsureDirectories(); err != nil {
			return nil, WrapExitError(ExitCommandError, "cannot create project directories", err)
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, paths)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot initialize logging", err)
	}

	return &appContext{cfg: cfg, paths: paths, logger: logger}, nil
}

// historyDBPath resolves the run ledger location under the logs dir.
func (a *appContext) historyDBPath() string {
	return a.paths.GetLogPath(a.cfg.History.DatabasePath)
}
