package service

import (
	"context"
	"log/slog"

	"dbobjects/internal/ddl"
	"dbobjects/internal/declarative"
	"dbobjects/internal/domain"
)

// TableService reconciles tables. The physical identifier of a table is its
// name: the prefix, plus a request-derived suffix when generateSuffix is set.
//
// An update that forces replacement creates the new table under a new name.
// With a fixed name in the same target that name is still taken by the live
// table, so the update fails with a ConflictError before any statement runs;
// set generateSuffix on tables whose layout may need replacing. Type changes
// other than growing a VARCHAR length are rejected with a ValidationError.
type TableService struct {
	runner domain.StatementRunner
	logger *slog.Logger
}

// NewTableService creates a TableService.
func NewTableService(runner domain.StatementRunner, logger *slog.Logger) *TableService {
	return &TableService{runner: runner, logger: loggerOrDefault(logger)}
}

// Handle plans and applies one table lifecycle event.
func (s *TableService) Handle(ctx context.Context, event *domain.Event) (*domain.Response, error) {
	return handle(ctx, s, s.runner, s.logger, declarative.KindTable, event)
}

// Plan classifies the event as create, alter, replace, drop or no-op and
// builds the matching statements.
func (s *TableService) Plan(_ context.Context, event *domain.Event) (*Reconciliation, error) {
	var props, old domain.TableProperties
	if err := decodeEvent(event, &props, &old); err != nil {
		return nil, err
	}
	target, err := props.Target()
	if err != nil {
		return nil, err
	}

	switch event.RequestType {
	case domain.RequestCreate:
		return planCreateTable(target, &props.TableState, event.RequestID, declarative.OpCreate, "")
	case domain.RequestDelete:
		return planDropTable(target, event.PhysicalResourceID)
	default:
		return planUpdateTable(target, &props, &old, event)
	}
}

func planCreateTable(target domain.ExecutionTarget, state *domain.TableState, requestID string, op declarative.Operation, reason string) (*Reconciliation, error) {
	if err := declarative.AsDomainError(declarative.ValidateTable(state)); err != nil {
		return nil, err
	}
	name := domain.PhysicalTableName(state.Name.Prefix, state.Name.SuffixPolicy(), requestID)
	creation, err := ddl.CreateTableStatements(name, state)
	if err != nil {
		return nil, invalid(err)
	}

	rec := &Reconciliation{
		Action: declarative.Action{
			Operation:     op,
			ResourceKind:  declarative.KindTable,
			ResourceName:  name,
			PhysicalID:    name,
			ReplaceReason: reason,
		},
		Target:   target,
		Response: &domain.Response{PhysicalResourceID: name},
	}
	rec.then(creation.Create)
	rec.thenConcurrently(creation.ColumnComments...)
	if creation.TableComment != "" {
		rec.then(creation.TableComment)
	}
	return rec, nil
}

func planDropTable(target domain.ExecutionTarget, table string) (*Reconciliation, error) {
	stmt, err := ddl.DropTable(table)
	if err != nil {
		return nil, invalid(err)
	}
	rec := &Reconciliation{
		Action: declarative.Action{
			Operation:    declarative.OpDelete,
			ResourceKind: declarative.KindTable,
			ResourceName: table,
		},
		Target: target,
	}
	rec.then(stmt)
	return rec, nil
}

func planUpdateTable(target domain.ExecutionTarget, props, old *domain.TableProperties, event *domain.Event) (*Reconciliation, error) {
	oldTarget, err := old.Target()
	if err != nil {
		return nil, domain.ErrValidation("old %s", err.Error())
	}
	if err := declarative.AsDomainError(declarative.ValidateTable(&props.TableState)); err != nil {
		return nil, err
	}

	diff := declarative.DiffTable(
		declarative.TableSpec{Target: oldTarget, State: old.TableState},
		declarative.TableSpec{Target: target, State: props.TableState},
	)

	if diff.Replace {
		name := domain.PhysicalTableName(props.Name.Prefix, props.Name.SuffixPolicy(), event.RequestID)
		if target.SameAs(oldTarget) && name == event.PhysicalResourceID {
			return nil, domain.ErrConflict(
				"table %s must be replaced (%s) but its name is fixed; set generateSuffix or change the prefix",
				name, diff.ReplaceReason)
		}
		return planCreateTable(target, &props.TableState, event.RequestID, declarative.OpReplace, diff.ReplaceReason)
	}

	if len(diff.UnsupportedTypeChanges) > 0 {
		ch := diff.UnsupportedTypeChanges[0]
		return nil, domain.ErrValidation(
			"column %s type cannot change from %s to %s in place; only VARCHAR lengths can grow",
			ch.Old.Name, ch.Old.DataType, ch.New.DataType)
	}

	table := event.PhysicalResourceID
	rec := &Reconciliation{
		Action: declarative.Action{
			Operation:    declarative.OpNoop,
			ResourceKind: declarative.KindTable,
			ResourceName: table,
			PhysicalID:   table,
		},
		Target:   target,
		Response: &domain.Response{PhysicalResourceID: table},
	}
	if diff.IsEmpty() {
		return rec, nil
	}

	stmts, err := ddl.AlterTableStatements(table, diff)
	if err != nil {
		return nil, invalid(err)
	}
	rec.Action.Operation = declarative.OpUpdate
	rec.Action.Changes = diff.FieldDiffs()
	rec.then(stmts...)
	return rec, nil
}
