package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbobjects/internal/config"
	"dbobjects/internal/domain"
	"dbobjects/internal/engine"
)

type fakeDataAPI struct {
	mu        sync.Mutex
	inputs    []*redshiftdata.ExecuteStatementInput
	describes int
	fail      map[string]string // sql -> error
}

func (f *fakeDataAPI) ExecuteStatement(_ context.Context, in *redshiftdata.ExecuteStatementInput, _ ...func(*redshiftdata.Options)) (*redshiftdata.ExecuteStatementOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return &redshiftdata.ExecuteStatementOutput{Id: aws.String(fmt.Sprintf("stmt-%d", len(f.inputs)))}, nil
}

func (f *fakeDataAPI) DescribeStatement(_ context.Context, in *redshiftdata.DescribeStatementInput, _ ...func(*redshiftdata.Options)) (*redshiftdata.DescribeStatementOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describes++
	var idx int
	_, _ = fmt.Sscanf(aws.ToString(in.Id), "stmt-%d", &idx)
	sql := aws.ToString(f.inputs[idx-1].Sql)
	if msg, ok := f.fail[sql]; ok {
		return &redshiftdata.DescribeStatementOutput{Status: types.StatusStringFailed, Error: aws.String(msg)}, nil
	}
	return &redshiftdata.DescribeStatementOutput{Status: types.StatusStringFinished}, nil
}

func (f *fakeDataAPI) sqls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = aws.ToString(in.Sql)
	}
	return out
}

type fakeSecretsAPI struct{}

func (fakeSecretsAPI) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(`{"username":"alice","password":"pw"}`)}, nil
}

func newTestApp(t *testing.T, data *fakeDataAPI) *App {
	t.Helper()
	a, err := New(context.Background(), Deps{
		Cfg:            &config.Config{StatementPollInterval: time.Millisecond, MaxConcurrentStatements: 2},
		Logger:         slog.New(slog.DiscardHandler),
		RedshiftData:   data,
		SecretsManager: fakeSecretsAPI{},
		ExecutorOpts:   &engine.ExecutorOptions{PollInterval: time.Millisecond, MaxConcurrent: 2},
	})
	require.NoError(t, err)
	return a
}

func event(t *testing.T, requestType domain.RequestType, physicalID string, props map[string]any) *domain.Event {
	t.Helper()
	raw, err := json.Marshal(props)
	require.NoError(t, err)
	return &domain.Event{RequestType: requestType, RequestID: "req-1", PhysicalResourceID: physicalID, ResourceProperties: raw}
}

func TestApp_DeleteTable(t *testing.T) {
	data := &fakeDataAPI{}
	a := newTestApp(t, data)

	resp, err := a.Dispatcher.Handle(context.Background(), event(t, domain.RequestDelete, "tbl123", map[string]any{
		"handler": "table", "workGroupName": "wg", "databaseName": "dev",
	}))
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, []string{"DROP TABLE tbl123"}, data.sqls())
	assert.Equal(t, 1, data.describes)
	assert.Equal(t, "wg", aws.ToString(data.inputs[0].WorkgroupName))
}

func TestApp_CreateUserOnNamespace(t *testing.T) {
	data := &fakeDataAPI{}
	a := newTestApp(t, data)

	resp, err := a.Dispatcher.Handle(context.Background(), event(t, domain.RequestCreate, "", map[string]any{
		"handler": "user", "namespaceName": "ns", "adminUserArn": "arn:admin", "databaseName": "dev",
		"username": "alice", "passwordSecretArn": "arn:pw",
	}))
	require.NoError(t, err)
	assert.Equal(t, "ns:dev:alice:req-1", resp.PhysicalResourceID)
	assert.Equal(t, []string{`CREATE USER "alice" PASSWORD 'pw'`}, data.sqls())
	assert.Equal(t, "ns", aws.ToString(data.inputs[0].ClusterIdentifier))
	assert.Equal(t, "arn:admin", aws.ToString(data.inputs[0].SecretArn))
}

func TestApp_FailedStatementSurfacesBackendMessage(t *testing.T) {
	data := &fakeDataAPI{fail: map[string]string{"CREATE TABLE events (a int)": `relation "events" already exists`}}
	a := newTestApp(t, data)

	_, err := a.Dispatcher.Handle(context.Background(), event(t, domain.RequestCreate, "", map[string]any{
		"handler": "table", "workGroupName": "wg", "databaseName": "dev",
		"tableName":    map[string]any{"prefix": "events", "generateSuffix": "false"},
		"tableColumns": []map[string]any{{"name": "a", "dataType": "int", "comment": "x"}},
	}))
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, `relation "events" already exists`, execErr.Message)
	assert.Equal(t, []string{"CREATE TABLE events (a int)"}, data.sqls(), "comment must not run after a failed create")
}
