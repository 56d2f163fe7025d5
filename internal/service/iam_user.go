package service

import (
	"context"
	"log/slog"

	"dbobjects/internal/ddl"
	"dbobjects/internal/declarative"
	"dbobjects/internal/domain"
)

// IAMUserService reconciles database users mapped to an IAM user or role.
// Such users authenticate through IAM and have their password disabled.
type IAMUserService struct {
	runner domain.StatementRunner
	logger *slog.Logger
}

// NewIAMUserService creates an IAMUserService.
func NewIAMUserService(runner domain.StatementRunner, logger *slog.Logger) *IAMUserService {
	return &IAMUserService{runner: runner, logger: loggerOrDefault(logger)}
}

// Handle plans and applies one IAM user lifecycle event.
func (s *IAMUserService) Handle(ctx context.Context, event *domain.Event) (*domain.Response, error) {
	return handle(ctx, s, s.runner, s.logger, declarative.KindIAMUser, event)
}

// Plan builds the statements for an IAM user event.
func (s *IAMUserService) Plan(_ context.Context, event *domain.Event) (*Reconciliation, error) {
	var props, old domain.IAMUserProperties
	if err := decodeEvent(event, &props, &old); err != nil {
		return nil, err
	}
	target, err := props.Target()
	if err != nil {
		return nil, err
	}

	switch event.RequestType {
	case domain.RequestCreate:
		return planCreateIAMUser(target, props.Username, event.RequestID, declarative.OpCreate, "")
	case domain.RequestDelete:
		return planDropUser(target, declarative.KindIAMUser, props.Username)
	}

	oldTarget, err := old.Target()
	if err != nil {
		return nil, domain.ErrValidation("old %s", err.Error())
	}
	if reason := userReplaceReason(oldTarget, target, old.Username, props.Username); reason != "" {
		return planCreateIAMUser(target, props.Username, event.RequestID, declarative.OpReplace, reason)
	}
	return userReconciliation(declarative.OpNoop, declarative.KindIAMUser, target, props.Username, event.PhysicalResourceID), nil
}

func planCreateIAMUser(target domain.ExecutionTarget, username, requestID string, op declarative.Operation, reason string) (*Reconciliation, error) {
	stmt, err := ddl.CreateIAMUser(username)
	if err != nil {
		return nil, invalid(err)
	}
	id := domain.MakePhysicalID(username, target, requestID)
	rec := userReconciliation(op, declarative.KindIAMUser, target, username, id)
	rec.Action.ReplaceReason = reason
	rec.then(stmt)
	return rec, nil
}
