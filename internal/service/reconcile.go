// Package service implements the lifecycle reconcilers that turn
// Create/Update/Delete events into warehouse statements.
package service

import (
	"context"
	"log/slog"

	"dbobjects/internal/ddl"
	"dbobjects/internal/declarative"
	"dbobjects/internal/domain"
)

// Reconciler plans the statements for one lifecycle event without running them.
type Reconciler interface {
	Plan(ctx context.Context, event *domain.Event) (*Reconciliation, error)
}

// Reconciliation is the planned outcome of one event: the action shown to
// operators, the statement batches to run, and the response to return.
// Response is nil for a Delete.
type Reconciliation struct {
	Action   declarative.Action
	Target   domain.ExecutionTarget
	Response *domain.Response

	batches []batch
}

// batch is a group of statements dispatched together. Batches run in order.
type batch struct {
	concurrent bool
	statements []string
}

// then appends statements that run one after another.
func (r *Reconciliation) then(stmts ...string) {
	r.add(false, stmts)
}

// thenConcurrently appends statements with no ordering dependency between each other.
func (r *Reconciliation) thenConcurrently(stmts ...string) {
	r.add(true, stmts)
}

func (r *Reconciliation) add(concurrent bool, stmts []string) {
	if len(stmts) == 0 {
		return
	}
	r.batches = append(r.batches, batch{concurrent: concurrent, statements: stmts})
	for _, s := range stmts {
		r.Action.Statements = append(r.Action.Statements, ddl.Redact(s))
	}
}

// apply runs every batch of rec against its target and returns its response.
// The first failing batch aborts the rest; applied statements are not rolled back.
func apply(ctx context.Context, runner domain.StatementRunner, logger *slog.Logger, rec *Reconciliation) (*domain.Response, error) {
	for _, b := range rec.batches {
		var err error
		switch {
		case len(b.statements) == 1:
			err = runner.Execute(ctx, b.statements[0], rec.Target)
		case b.concurrent:
			err = runner.ExecuteConcurrent(ctx, b.statements, rec.Target)
		default:
			err = runner.ExecuteSequential(ctx, b.statements, rec.Target)
		}
		if err != nil {
			logger.Error("reconciliation failed", "operation", rec.Action.Operation.String(), "error", err)
			return nil, err
		}
	}
	logger.Info("reconciled",
		"operation", rec.Action.Operation.String(),
		"resource", rec.Action.ResourceName,
		"statements", len(rec.Action.Statements))
	return rec.Response, nil
}

// handle validates, plans and applies one event with r.
func handle(ctx context.Context, r Reconciler, runner domain.StatementRunner, logger *slog.Logger, kind declarative.ResourceKind, event *domain.Event) (*domain.Response, error) {
	logger = logger.With(
		"request_id", event.RequestID,
		"request_type", string(event.RequestType),
		"handler", kind.String(),
		"physical_id", event.PhysicalResourceID,
	)
	rec, err := r.Plan(ctx, event)
	if err != nil {
		logger.Warn("plan rejected", "error", err)
		return nil, err
	}
	return apply(ctx, runner, logger, rec)
}

// decodeEvent validates the envelope and decodes the current and, on Update,
// the previous resource properties.
func decodeEvent(event *domain.Event, props, oldProps any) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if err := domain.DecodeProperties(event.ResourceProperties, props); err != nil {
		return err
	}
	if event.RequestType == domain.RequestUpdate {
		if err := domain.DecodeProperties(event.OldResourceProperties, oldProps); err != nil {
			return domain.ErrValidation("old %s", err.Error())
		}
	}
	return nil
}

// invalid reports a statement builder rejection as a validation error.
func invalid(err error) error {
	return domain.ErrValidation("%s", err.Error())
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
