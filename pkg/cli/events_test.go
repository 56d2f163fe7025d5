package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbobjects/internal/domain"
)

func TestParseEvents(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   string
	}{
		{name: "single_yaml", input: "RequestType: Create\nRequestId: r1\nResourceProperties: {handler: table}\n", wantCount: 1},
		{name: "single_json", input: `{"RequestType":"Delete","RequestId":"r1","PhysicalResourceId":"t"}`, wantCount: 1},
		{name: "top_level_list", input: "- RequestType: Create\n- RequestType: Create\n", wantCount: 2},
		{name: "events_key", input: "events:\n  - RequestType: Create\n", wantCount: 1},
		{name: "events_not_list", input: "events: nope\n", wantErr: "events must be a list"},
		{name: "empty", input: "", wantErr: "no events found"},
		{name: "scalar", input: "42\n", wantErr: "expected an event mapping"},
		{name: "bad_yaml", input: "RequestType: [unclosed\n", wantErr: "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := parseEvents([]byte(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, events, tt.wantCount)
		})
	}
}

func TestParseEvents_PreservesProperties(t *testing.T) {
	events, err := parseEvents([]byte(`
RequestType: Update
RequestId: r1
PhysicalResourceId: events
ResourceProperties:
  handler: table
  useColumnIds: true
OldResourceProperties:
  handler: table
`))
	require.NoError(t, err)
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, domain.RequestUpdate, e.RequestType)
	assert.Equal(t, "events", e.PhysicalResourceID)
	assert.JSONEq(t, `{"handler":"table","useColumnIds":true}`, string(e.ResourceProperties))
	assert.JSONEq(t, `{"handler":"table"}`, string(e.OldResourceProperties))
}

func TestParseEvents_GeneratesRequestID(t *testing.T) {
	events, err := parseEvents([]byte("- RequestType: Create\n- RequestType: Create\n"))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotEmpty(t, events[0].RequestID)
	assert.NotEqual(t, events[0].RequestID, events[1].RequestID)
}

func TestLoadEventFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(a, []byte("RequestType: Create\nRequestId: a\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte(`[{"RequestType":"Create","RequestId":"b"}]`), 0o600))

	events, err := LoadEventFiles([]string{a, b})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].RequestID)
	assert.Equal(t, "b", events[1].RequestID)

	_, err = LoadEventFiles([]string{filepath.Join(dir, "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}
