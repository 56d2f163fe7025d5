package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbobjects/internal/declarative"
	"dbobjects/internal/domain"
	"dbobjects/internal/testutil"
)

func privilegesProps(username string, privileges ...domain.TablePrivilege) domain.PrivilegesProperties {
	return domain.PrivilegesProperties{
		TargetProperties: workgroupProps("user-table-privileges"),
		Username:         username,
		TablePrivileges:  privileges,
	}
}

func priv(table string, actions ...string) domain.TablePrivilege {
	return domain.TablePrivilege{TableName: table, Actions: actions}
}

func TestPrivilegesService_Create(t *testing.T) {
	runner := newRunner(nil)
	svc := NewPrivilegesService(runner, testLogger)

	props := privilegesProps("alice", priv("events", "select", "insert"), priv("public.users", "SELECT"))
	resp, err := svc.Handle(context.Background(), createEvent(t, props))
	require.NoError(t, err)
	assert.Equal(t, "wg:dev:alice:"+testRequestID, resp.PhysicalResourceID)
	assert.Nil(t, resp.Data)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, testutil.ExecConcurrent, calls[0].Mode)
	assert.Equal(t, []string{
		`GRANT SELECT, INSERT ON "events" TO "alice"`,
		`GRANT SELECT ON "public"."users" TO "alice"`,
	}, calls[0].Statements)
}

func TestPrivilegesService_Delete(t *testing.T) {
	runner := newRunner(nil)
	svc := NewPrivilegesService(runner, testLogger)

	resp, err := svc.Handle(context.Background(), deleteEvent(t, "id", privilegesProps("alice", priv("events", "SELECT"))))
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, []string{`REVOKE SELECT ON "events" FROM "alice"`}, runner.Statements())
}

func TestPrivilegesService_Update(t *testing.T) {
	t.Run("unchanged_ignores_order_and_case", func(t *testing.T) {
		runner := newRunner(nil)
		svc := NewPrivilegesService(runner, testLogger)

		old := privilegesProps("alice", priv("a", "SELECT", "INSERT"), priv("b", "ALL"))
		cur := privilegesProps("alice", priv("b", "all"), priv("a", "insert", "select"))

		resp, err := svc.Handle(context.Background(), updateEvent(t, "id", old, cur))
		require.NoError(t, err)
		assert.Equal(t, "id", resp.PhysicalResourceID)
		assert.Empty(t, runner.Calls())
	})

	t.Run("changed_set_revokes_then_grants", func(t *testing.T) {
		runner := newRunner(nil)
		svc := NewPrivilegesService(runner, testLogger)

		old := privilegesProps("alice", priv("a", "SELECT"))
		cur := privilegesProps("alice", priv("a", "SELECT", "UPDATE"), priv("b", "SELECT"))

		rec, err := svc.Plan(context.Background(), updateEvent(t, "id", old, cur))
		require.NoError(t, err)
		assert.Equal(t, declarative.OpUpdate, rec.Action.Operation)
		assert.Equal(t, []declarative.FieldDiff{
			{Field: "tablePrivileges[a]", OldValue: "SELECT", NewValue: "SELECT, UPDATE"},
			{Field: "tablePrivileges[b]", NewValue: "SELECT"},
		}, rec.Action.Changes)

		resp, err := svc.Handle(context.Background(), updateEvent(t, "id", old, cur))
		require.NoError(t, err)
		assert.Equal(t, "id", resp.PhysicalResourceID)

		calls := runner.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, testutil.ExecSingle, calls[0].Mode)
		assert.Equal(t, []string{`REVOKE SELECT ON "a" FROM "alice"`}, calls[0].Statements)
		assert.Equal(t, testutil.ExecConcurrent, calls[1].Mode)
		assert.Equal(t, []string{
			`GRANT SELECT, UPDATE ON "a" TO "alice"`,
			`GRANT SELECT ON "b" TO "alice"`,
		}, calls[1].Statements)
	})

	t.Run("username_change_grants_with_new_id", func(t *testing.T) {
		runner := newRunner(nil)
		svc := NewPrivilegesService(runner, testLogger)

		old := privilegesProps("alice", priv("a", "SELECT"))
		cur := privilegesProps("bob", priv("a", "SELECT"))

		resp, err := svc.Handle(context.Background(), updateEvent(t, "id", old, cur))
		require.NoError(t, err)
		assert.Equal(t, "wg:dev:bob:"+testRequestID, resp.PhysicalResourceID)
		assert.Equal(t, []string{`GRANT SELECT ON "a" TO "bob"`}, runner.Statements())
	})
}

func TestPrivilegesService_Validation(t *testing.T) {
	tests := []struct {
		name  string
		props domain.PrivilegesProperties
	}{
		{name: "unknown_action", props: privilegesProps("alice", priv("a", "TRUNCATE"))},
		{name: "no_actions", props: privilegesProps("alice", priv("a"))},
		{name: "duplicate_table", props: privilegesProps("alice", priv("a", "SELECT"), priv("a", "INSERT"))},
		{name: "bad_table_name", props: privilegesProps("alice", priv(`a"; --`, "SELECT"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newRunner(nil)
			svc := NewPrivilegesService(runner, testLogger)

			_, err := svc.Handle(context.Background(), createEvent(t, tt.props))
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Empty(t, runner.Calls())
		})
	}
}
