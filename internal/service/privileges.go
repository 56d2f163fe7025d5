package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"dbobjects/internal/ddl"
	"dbobjects/internal/declarative"
	"dbobjects/internal/domain"
)

// PrivilegesService reconciles the table privileges granted to one user.
// Grants and revokes for different tables run concurrently.
type PrivilegesService struct {
	runner domain.StatementRunner
	logger *slog.Logger
}

// NewPrivilegesService creates a PrivilegesService.
func NewPrivilegesService(runner domain.StatementRunner, logger *slog.Logger) *PrivilegesService {
	return &PrivilegesService{runner: runner, logger: loggerOrDefault(logger)}
}

// Handle plans and applies one table privileges lifecycle event.
func (s *PrivilegesService) Handle(ctx context.Context, event *domain.Event) (*domain.Response, error) {
	return handle(ctx, s, s.runner, s.logger, declarative.KindTablePrivileges, event)
}

// Plan builds the grant and revoke statements for a privileges event.
func (s *PrivilegesService) Plan(_ context.Context, event *domain.Event) (*Reconciliation, error) {
	var props, old domain.PrivilegesProperties
	if err := decodeEvent(event, &props, &old); err != nil {
		return nil, err
	}
	target, err := props.Target()
	if err != nil {
		return nil, err
	}
	if err := declarative.AsDomainError(declarative.ValidatePrivileges(props.TablePrivileges)); err != nil {
		return nil, err
	}

	switch event.RequestType {
	case domain.RequestCreate:
		return planGrants(target, &props, event.RequestID, declarative.OpCreate, "")
	case domain.RequestDelete:
		revokes, err := revokeStatements(props.Username, props.TablePrivileges)
		if err != nil {
			return nil, err
		}
		rec := &Reconciliation{
			Action: declarative.Action{
				Operation:    declarative.OpDelete,
				ResourceKind: declarative.KindTablePrivileges,
				ResourceName: props.Username,
			},
			Target: target,
		}
		rec.thenConcurrently(revokes...)
		return rec, nil
	}

	oldTarget, err := old.Target()
	if err != nil {
		return nil, domain.ErrValidation("old %s", err.Error())
	}
	if reason := userReplaceReason(oldTarget, target, old.Username, props.Username); reason != "" {
		return planGrants(target, &props, event.RequestID, declarative.OpReplace, reason)
	}

	id := event.PhysicalResourceID
	rec := &Reconciliation{
		Action: declarative.Action{
			Operation:    declarative.OpNoop,
			ResourceKind: declarative.KindTablePrivileges,
			ResourceName: props.Username,
			PhysicalID:   id,
		},
		Target:   target,
		Response: &domain.Response{PhysicalResourceID: id},
	}
	changes := privilegeChanges(old.TablePrivileges, props.TablePrivileges)
	if len(changes) == 0 {
		return rec, nil
	}

	revokes, err := revokeStatements(props.Username, old.TablePrivileges)
	if err != nil {
		return nil, err
	}
	grants, err := grantStatements(props.Username, props.TablePrivileges)
	if err != nil {
		return nil, err
	}
	rec.Action.Operation = declarative.OpUpdate
	rec.Action.Changes = changes
	rec.thenConcurrently(revokes...)
	rec.thenConcurrently(grants...)
	return rec, nil
}

func planGrants(target domain.ExecutionTarget, props *domain.PrivilegesProperties, requestID string, op declarative.Operation, reason string) (*Reconciliation, error) {
	grants, err := grantStatements(props.Username, props.TablePrivileges)
	if err != nil {
		return nil, err
	}
	id := domain.MakePhysicalID(props.Username, target, requestID)
	rec := &Reconciliation{
		Action: declarative.Action{
			Operation:     op,
			ResourceKind:  declarative.KindTablePrivileges,
			ResourceName:  props.Username,
			PhysicalID:    id,
			ReplaceReason: reason,
		},
		Target:   target,
		Response: &domain.Response{PhysicalResourceID: id},
	}
	rec.thenConcurrently(grants...)
	return rec, nil
}

func grantStatements(username string, privileges []domain.TablePrivilege) ([]string, error) {
	stmts := make([]string, 0, len(privileges))
	for _, p := range privileges {
		stmt, err := ddl.GrantOnTable(p.TableName, p.Actions, username)
		if err != nil {
			return nil, invalid(err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func revokeStatements(username string, privileges []domain.TablePrivilege) ([]string, error) {
	stmts := make([]string, 0, len(privileges))
	for _, p := range privileges {
		stmt, err := ddl.RevokeOnTable(p.TableName, p.Actions, username)
		if err != nil {
			return nil, invalid(err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// privilegeChanges compares two privilege lists by table, ignoring table order
// and the order and case of actions.
func privilegeChanges(old, cur []domain.TablePrivilege) []declarative.FieldDiff {
	oldActions := actionsByTable(old)
	curActions := actionsByTable(cur)

	tables := make(map[string]bool, len(oldActions)+len(curActions))
	for t := range oldActions {
		tables[t] = true
	}
	for t := range curActions {
		tables[t] = true
	}
	names := make([]string, 0, len(tables))
	for t := range tables {
		names = append(names, t)
	}
	sort.Strings(names)

	var changes []declarative.FieldDiff
	for _, t := range names {
		if oldActions[t] != curActions[t] {
			changes = append(changes, declarative.FieldDiff{
				Field:    "tablePrivileges[" + t + "]",
				OldValue: oldActions[t],
				NewValue: curActions[t],
			})
		}
	}
	return changes
}

// actionsByTable returns the normalized action list of each table.
func actionsByTable(privileges []domain.TablePrivilege) map[string]string {
	out := make(map[string]string, len(privileges))
	for _, p := range privileges {
		seen := make(map[string]bool, len(p.Actions))
		var actions []string
		for _, a := range p.Actions {
			a = strings.ToUpper(strings.TrimSpace(a))
			if !seen[a] {
				seen[a] = true
				actions = append(actions, a)
			}
		}
		sort.Strings(actions)
		out[p.TableName] = strings.Join(actions, ", ")
	}
	return out
}
