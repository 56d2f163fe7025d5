package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"code.cloudfoundry.org/clock"
	"golang.org/x/sync/errgroup"

	"dbobjects/internal/ddl"
	"dbobjects/internal/domain"
)

// Compile-time check.
var _ domain.StatementRunner = (*Executor)(nil)

// Defaults for ExecutorOptions.
const (
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultMaxConcurrent = 4
)

// ExecutorOptions tunes the poll loop and the concurrent fan-out.
type ExecutorOptions struct {
	PollInterval  time.Duration // fixed delay before each status poll
	MaxConcurrent int           // bound for ExecuteConcurrent
	Clock         clock.Clock   // nil uses the wall clock
}

// Executor submits statements to the asynchronous SQL backend and polls each
// one with a constant delay until it reaches a terminal status. It never
// retries a statement; a statement that never terminates is polled until ctx
// is cancelled.
type Executor struct {
	api           domain.StatementAPI
	clock         clock.Clock
	pollInterval  time.Duration
	maxConcurrent int
	logger        *slog.Logger
}

// NewExecutor creates an Executor over api.
func NewExecutor(api domain.StatementAPI, logger *slog.Logger, opts ...ExecutorOptions) *Executor {
	options := ExecutorOptions{PollInterval: DefaultPollInterval, MaxConcurrent: DefaultMaxConcurrent}
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.PollInterval <= 0 {
		options.PollInterval = DefaultPollInterval
	}
	if options.MaxConcurrent <= 0 {
		options.MaxConcurrent = DefaultMaxConcurrent
	}
	if options.Clock == nil {
		options.Clock = clock.NewClock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		api:           api,
		clock:         options.Clock,
		pollInterval:  options.PollInterval,
		maxConcurrent: options.MaxConcurrent,
		logger:        logger,
	}
}

// Execute runs one statement to completion. A FAILED or ABORTED statement
// yields *domain.ExecutionError; a submission without an id yields
// *domain.ServiceError.
func (e *Executor) Execute(ctx context.Context, sql string, target domain.ExecutionTarget) error {
	id, err := e.api.Submit(ctx, sql, target)
	if err != nil {
		return fmt.Errorf("submit statement: %w", err)
	}
	if id == "" {
		return domain.ErrService("Statement execution did not return a statement ID")
	}
	e.logger.Debug("statement submitted",
		"statement_id", id,
		"target", target.Identity(),
		"database", target.DatabaseName,
		"sql", ddl.Redact(sql))

	desc, err := e.waitForStatement(ctx, id)
	if err != nil {
		return err
	}
	if desc.Status != domain.StatementFinished {
		e.logger.Warn("statement did not finish",
			"statement_id", id,
			"status", desc.Status,
			"error", desc.Error)
		return &domain.ExecutionError{StatementID: id, Status: desc.Status, Message: desc.Error}
	}
	return nil
}

// waitForStatement sleeps one poll interval, then describes the statement,
// until the status is terminal.
func (e *Executor) waitForStatement(ctx context.Context, id string) (domain.StatementDescription, error) {
	for {
		timer := e.clock.NewTimer(e.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.StatementDescription{}, fmt.Errorf("wait for statement %s: %w", id, ctx.Err())
		case <-timer.C():
		}

		desc, err := e.api.Describe(ctx, id)
		if err != nil {
			return domain.StatementDescription{}, fmt.Errorf("describe statement %s: %w", id, err)
		}
		if desc.Status.Terminal() {
			return desc, nil
		}
	}
}

// ExecuteSequential runs statements in order and stops at the first failure.
// Earlier statements are not rolled back.
func (e *Executor) ExecuteSequential(ctx context.Context, statements []string, target domain.ExecutionTarget) error {
	for i, stmt := range statements {
		if err := e.Execute(ctx, stmt, target); err != nil {
			if i > 0 {
				e.logger.Warn("statement batch aborted after partial progress",
					"applied", i,
					"remaining", len(statements)-i)
			}
			return err
		}
	}
	return nil
}

// ExecuteConcurrent runs independent statements with bounded parallelism.
// The first failure cancels statements that have not been submitted yet.
func (e *Executor) ExecuteConcurrent(ctx context.Context, statements []string, target domain.ExecutionTarget) error {
	switch len(statements) {
	case 0:
		return nil
	case 1:
		return e.Execute(ctx, statements[0], target)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)
	for _, stmt := range statements {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return e.Execute(gctx, stmt, target)
		})
	}
	return g.Wait()
}
