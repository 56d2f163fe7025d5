// Package app provides application-level wiring and dependency injection
// shared by the provider binaries and the CLI.
package app

import (
	"context"
	"log/slog"

	"dbobjects/internal/config"
	"dbobjects/internal/engine"
	"dbobjects/internal/service"
)

// Deps holds what main() provides. The AWS clients are optional; when nil
// they are built from the default SDK chain and cfg's endpoint overrides.
type Deps struct {
	Cfg            *config.Config
	Logger         *slog.Logger
	RedshiftData   engine.RedshiftDataAPI
	SecretsManager engine.SecretsManagerAPI
	ExecutorOpts   *engine.ExecutorOptions // nil derives options from Cfg
}

// App holds the fully-wired reconciliation stack.
type App struct {
	Executor   *engine.Executor
	Secrets    *engine.SecretsManagerResolver
	Dispatcher *service.Dispatcher
}

// New wires the Data API client, executor, secret resolver and dispatcher.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if deps.RedshiftData == nil || deps.SecretsManager == nil {
		awsCfg, err := engine.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if deps.RedshiftData == nil {
			deps.RedshiftData = engine.NewRedshiftDataAPI(awsCfg, cfg)
		}
		if deps.SecretsManager == nil {
			deps.SecretsManager = engine.NewSecretsManagerAPI(awsCfg, cfg)
		}
	}

	opts := engine.ExecutorOptions{
		PollInterval:  cfg.StatementPollInterval,
		MaxConcurrent: cfg.MaxConcurrentStatements,
	}
	if deps.ExecutorOpts != nil {
		opts = *deps.ExecutorOpts
	}

	executor := engine.NewExecutor(engine.NewRedshiftDataClient(deps.RedshiftData), logger, opts)
	secrets := engine.NewSecretsManagerResolver(deps.SecretsManager)
	return &App{
		Executor:   executor,
		Secrets:    secrets,
		Dispatcher: service.NewDispatcher(executor, secrets, logger),
	}, nil
}
