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

func userProps(username, secretARN string) domain.UserProperties {
	return domain.UserProperties{TargetProperties: workgroupProps("user"), Username: username, PasswordSecretARN: secretARN}
}

func testSecrets() *testutil.MockSecretResolver {
	return &testutil.MockSecretResolver{Secrets: map[string]domain.Credentials{
		"arn:old": {Username: "alice", Password: "old-pw"},
		"arn:new": {Username: "alice", Password: "n3w'pw"},
		"arn:dup": {Username: "alice", Password: "old-pw"},
	}}
}

func TestUserService_Create(t *testing.T) {
	runner := newRunner(nil)
	svc := NewUserService(runner, testSecrets(), testLogger)

	e := createEvent(t, userProps("alice", "arn:old"))
	rec, err := svc.Plan(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, []string{`CREATE USER "alice" PASSWORD '***'`}, rec.Action.Statements)

	resp, err := svc.Handle(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "wg:dev:alice:"+testRequestID, resp.PhysicalResourceID)
	assert.Equal(t, map[string]string{"username": "alice"}, resp.Data)
	assert.Equal(t, []string{`CREATE USER "alice" PASSWORD 'old-pw'`}, runner.Statements())
}

func TestUserService_CreateMissingSecret(t *testing.T) {
	runner := newRunner(nil)
	svc := NewUserService(runner, testSecrets(), testLogger)

	_, err := svc.Handle(context.Background(), createEvent(t, userProps("alice", "arn:missing")))
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Empty(t, runner.Calls())
}

func TestUserService_Delete(t *testing.T) {
	runner := newRunner(nil)
	svc := NewUserService(runner, testSecrets(), testLogger)

	resp, err := svc.Handle(context.Background(), deleteEvent(t, "wg:dev:alice:r0", userProps("alice", "arn:old")))
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, []string{`DROP USER "alice"`}, runner.Statements())
}

func TestUserService_Update(t *testing.T) {
	const physicalID = "wg:dev:alice:r0"

	tests := []struct {
		name       string
		old        domain.UserProperties
		cur        domain.UserProperties
		wantOp     declarative.Operation
		wantStmts  []string
		wantNewID  bool
		wantTarget string
	}{
		{
			name:   "unchanged",
			old:    userProps("alice", "arn:old"),
			cur:    userProps("alice", "arn:old"),
			wantOp: declarative.OpNoop,
		},
		{
			name:   "same_password_in_new_secret",
			old:    userProps("alice", "arn:old"),
			cur:    userProps("alice", "arn:dup"),
			wantOp: declarative.OpNoop,
		},
		{
			name:      "password_rotated",
			old:       userProps("alice", "arn:old"),
			cur:       userProps("alice", "arn:new"),
			wantOp:    declarative.OpUpdate,
			wantStmts: []string{`ALTER USER "alice" PASSWORD 'n3w''pw'`},
		},
		{
			name:      "username_changed",
			old:       userProps("alice", "arn:old"),
			cur:       userProps("bob", "arn:old"),
			wantOp:    declarative.OpReplace,
			wantStmts: []string{`CREATE USER "bob" PASSWORD 'old-pw'`},
			wantNewID: true,
		},
		{
			name: "target_changed",
			old:  userProps("alice", "arn:old"),
			cur: func() domain.UserProperties {
				p := userProps("alice", "arn:old")
				p.DatabaseName = "analytics"
				return p
			}(),
			wantOp:    declarative.OpReplace,
			wantStmts: []string{`CREATE USER "alice" PASSWORD 'old-pw'`},
			wantNewID: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newRunner(nil)
			svc := NewUserService(runner, testSecrets(), testLogger)
			e := updateEvent(t, physicalID, tt.old, tt.cur)

			rec, err := svc.Plan(context.Background(), e)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOp, rec.Action.Operation)
			for _, s := range rec.Action.Statements {
				assert.NotContains(t, s, "pw'")
			}

			resp, err := svc.Handle(context.Background(), e)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStmts, runner.Statements())
			assert.Equal(t, tt.cur.Username, resp.Data["username"])
			if tt.wantNewID {
				assert.Equal(t, domain.MakePhysicalID(tt.cur.Username, rec.Target, testRequestID), resp.PhysicalResourceID)
			} else {
				assert.Equal(t, physicalID, resp.PhysicalResourceID)
			}
		})
	}
}

func TestIAMUserService(t *testing.T) {
	iamProps := func(username string) domain.IAMUserProperties {
		return domain.IAMUserProperties{TargetProperties: workgroupProps("iam-user"), Username: username}
	}

	t.Run("create", func(t *testing.T) {
		runner := newRunner(nil)
		svc := NewIAMUserService(runner, testLogger)

		resp, err := svc.Handle(context.Background(), createEvent(t, iamProps("IAMR:etl-role")))
		require.NoError(t, err)
		assert.Equal(t, "wg:dev:IAMR:etl-role:"+testRequestID, resp.PhysicalResourceID)
		assert.Equal(t, "IAMR:etl-role", resp.Data["username"])
		assert.Equal(t, []string{`CREATE USER "IAMR:etl-role" PASSWORD DISABLE`}, runner.Statements())
	})

	t.Run("delete", func(t *testing.T) {
		runner := newRunner(nil)
		svc := NewIAMUserService(runner, testLogger)

		resp, err := svc.Handle(context.Background(), deleteEvent(t, "id", iamProps("IAM:alice")))
		require.NoError(t, err)
		assert.Nil(t, resp)
		assert.Equal(t, []string{`DROP USER "IAM:alice"`}, runner.Statements())
	})

	t.Run("update_unchanged", func(t *testing.T) {
		runner := newRunner(nil)
		svc := NewIAMUserService(runner, testLogger)

		resp, err := svc.Handle(context.Background(), updateEvent(t, "id", iamProps("IAM:alice"), iamProps("IAM:alice")))
		require.NoError(t, err)
		assert.Equal(t, "id", resp.PhysicalResourceID)
		assert.Empty(t, runner.Calls())
	})

	t.Run("update_renamed", func(t *testing.T) {
		runner := newRunner(nil)
		svc := NewIAMUserService(runner, testLogger)

		resp, err := svc.Handle(context.Background(), updateEvent(t, "id", iamProps("IAM:alice"), iamProps("IAM:bob")))
		require.NoError(t, err)
		assert.NotEqual(t, "id", resp.PhysicalResourceID)
		assert.Equal(t, []string{`CREATE USER "IAM:bob" PASSWORD DISABLE`}, runner.Statements())
	})

	t.Run("invalid_username", func(t *testing.T) {
		runner := newRunner(nil)
		svc := NewIAMUserService(runner, testLogger)

		_, err := svc.Handle(context.Background(), createEvent(t, iamProps(`IAM:x"; DROP USER admin`)))
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Empty(t, runner.Calls())
	})
}
