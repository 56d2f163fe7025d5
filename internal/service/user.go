package service

import (
	"context"
	"log/slog"

	"dbobjects/internal/ddl"
	"dbobjects/internal/declarative"
	"dbobjects/internal/domain"
)

// UserService reconciles password-authenticated database users. Passwords are
// resolved from their secret at plan time and never appear in plans or logs.
type UserService struct {
	runner  domain.StatementRunner
	secrets domain.SecretResolver
	logger  *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(runner domain.StatementRunner, secrets domain.SecretResolver, logger *slog.Logger) *UserService {
	return &UserService{runner: runner, secrets: secrets, logger: loggerOrDefault(logger)}
}

// Handle plans and applies one user lifecycle event.
func (s *UserService) Handle(ctx context.Context, event *domain.Event) (*domain.Response, error) {
	return handle(ctx, s, s.runner, s.logger, declarative.KindUser, event)
}

// Plan builds the statements for a user event.
func (s *UserService) Plan(ctx context.Context, event *domain.Event) (*Reconciliation, error) {
	var props, old domain.UserProperties
	if err := decodeEvent(event, &props, &old); err != nil {
		return nil, err
	}
	target, err := props.Target()
	if err != nil {
		return nil, err
	}

	switch event.RequestType {
	case domain.RequestCreate:
		return s.planCreate(ctx, target, &props, event.RequestID, declarative.OpCreate, "")
	case domain.RequestDelete:
		return planDropUser(target, declarative.KindUser, props.Username)
	}

	oldTarget, err := old.Target()
	if err != nil {
		return nil, domain.ErrValidation("old %s", err.Error())
	}
	if reason := userReplaceReason(oldTarget, target, old.Username, props.Username); reason != "" {
		return s.planCreate(ctx, target, &props, event.RequestID, declarative.OpReplace, reason)
	}

	rec := userReconciliation(declarative.OpNoop, declarative.KindUser, target, props.Username, event.PhysicalResourceID)
	oldCreds, err := s.secrets.ResolveCredentials(ctx, old.PasswordSecretARN)
	if err != nil {
		return nil, err
	}
	creds, err := s.secrets.ResolveCredentials(ctx, props.PasswordSecretARN)
	if err != nil {
		return nil, err
	}
	if creds.Password == oldCreds.Password {
		return rec, nil
	}

	stmt, err := ddl.AlterUserPassword(props.Username, creds.Password)
	if err != nil {
		return nil, invalid(err)
	}
	rec.Action.Operation = declarative.OpUpdate
	rec.Action.Changes = []declarative.FieldDiff{{Field: "password", OldValue: "***", NewValue: "***"}}
	rec.then(stmt)
	return rec, nil
}

func (s *UserService) planCreate(ctx context.Context, target domain.ExecutionTarget, props *domain.UserProperties, requestID string, op declarative.Operation, reason string) (*Reconciliation, error) {
	if err := ddl.ValidateUsername(props.Username); err != nil {
		return nil, invalid(err)
	}
	creds, err := s.secrets.ResolveCredentials(ctx, props.PasswordSecretARN)
	if err != nil {
		return nil, err
	}
	stmt, err := ddl.CreateUser(props.Username, creds.Password)
	if err != nil {
		return nil, invalid(err)
	}

	id := domain.MakePhysicalID(props.Username, target, requestID)
	rec := userReconciliation(op, declarative.KindUser, target, props.Username, id)
	rec.Action.ReplaceReason = reason
	rec.then(stmt)
	return rec, nil
}

// userReconciliation returns an empty reconciliation for a user incarnation
// whose response carries the username attribute.
func userReconciliation(op declarative.Operation, kind declarative.ResourceKind, target domain.ExecutionTarget, username, physicalID string) *Reconciliation {
	return &Reconciliation{
		Action: declarative.Action{
			Operation:    op,
			ResourceKind: kind,
			ResourceName: username,
			PhysicalID:   physicalID,
		},
		Target: target,
		Response: &domain.Response{
			PhysicalResourceID: physicalID,
			Data:               map[string]string{"username": username},
		},
	}
}

func planDropUser(target domain.ExecutionTarget, kind declarative.ResourceKind, username string) (*Reconciliation, error) {
	stmt, err := ddl.DropUser(username)
	if err != nil {
		return nil, invalid(err)
	}
	rec := &Reconciliation{
		Action: declarative.Action{
			Operation:    declarative.OpDelete,
			ResourceKind: kind,
			ResourceName: username,
		},
		Target: target,
	}
	rec.then(stmt)
	return rec, nil
}

// userReplaceReason returns why a user must be recreated, or "" when it can
// be kept.
func userReplaceReason(oldTarget, target domain.ExecutionTarget, oldUsername, username string) string {
	switch {
	case !oldTarget.SameAs(target):
		return "target changed"
	case oldUsername != username:
		return "username changed"
	default:
		return ""
	}
}
