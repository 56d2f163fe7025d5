package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"dbobjects/internal/domain"
	"dbobjects/internal/testutil"
)

const testRequestID = "0123456789abcdef-request"

var testLogger = slog.New(slog.DiscardHandler)

func workgroupProps(handler string) domain.TargetProperties {
	return domain.TargetProperties{Handler: handler, WorkGroupName: "wg", DatabaseName: "dev"}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func createEvent(t *testing.T, props any) *domain.Event {
	t.Helper()
	return &domain.Event{
		RequestType:        domain.RequestCreate,
		RequestID:          testRequestID,
		ResourceProperties: mustJSON(t, props),
	}
}

func updateEvent(t *testing.T, physicalID string, old, props any) *domain.Event {
	t.Helper()
	return &domain.Event{
		RequestType:           domain.RequestUpdate,
		RequestID:             testRequestID,
		PhysicalResourceID:    physicalID,
		ResourceProperties:    mustJSON(t, props),
		OldResourceProperties: mustJSON(t, old),
	}
}

func deleteEvent(t *testing.T, physicalID string, props any) *domain.Event {
	t.Helper()
	return &domain.Event{
		RequestType:        domain.RequestDelete,
		RequestID:          testRequestID,
		PhysicalResourceID: physicalID,
		ResourceProperties: mustJSON(t, props),
	}
}

func failOn(stmt string, err error) func(sql string) error {
	return func(sql string) error {
		if sql == stmt {
			return err
		}
		return nil
	}
}

func newRunner(fail func(sql string) error) *testutil.MockStatementRunner {
	r := &testutil.MockStatementRunner{}
	if fail != nil {
		r.ExecuteFn = func(_ context.Context, sql string, _ domain.ExecutionTarget) error {
			return fail(sql)
		}
	}
	return r
}
