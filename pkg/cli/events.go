package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dbobjects/internal/domain"
)

// LoadEventFiles reads lifecycle events from YAML or JSON files. A file holds
// either one event, a list of events, or a mapping with an "events" list.
// Events without a RequestId get a generated one.
func LoadEventFiles(paths []string) ([]*domain.Event, error) {
	var events []*domain.Event
	for _, p := range paths {
		data, err := os.ReadFile(p) //nolint:gosec // path is caller-controlled
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		parsed, err := parseEvents(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		events = append(events, parsed...)
	}
	return events, nil
}

func parseEvents(data []byte) ([]*domain.Event, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	var items []any
	switch v := doc.(type) {
	case nil:
		return nil, fmt.Errorf("no events found")
	case []any:
		items = v
	case map[string]any:
		list, ok := v["events"]
		if !ok {
			items = []any{v}
			break
		}
		if items, ok = list.([]any); !ok {
			return nil, fmt.Errorf("events must be a list")
		}
	default:
		return nil, fmt.Errorf("expected an event mapping or a list of events")
	}

	events := make([]*domain.Event, 0, len(items))
	for i, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		var e domain.Event
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if e.RequestID == "" {
			e.RequestID = domain.NewRequestID()
		}
		events = append(events, &e)
	}
	return events, nil
}
