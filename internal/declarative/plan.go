package declarative

import (
	"fmt"
	"strings"
)

// Action represents the planned reconciliation of one event.
type Action struct {
	Operation     Operation
	ResourceKind  ResourceKind
	ResourceName  string // table name or username
	PhysicalID    string // identifier returned to the orchestrator; empty for deletes
	ReplaceReason string
	Changes       []FieldDiff
	Statements    []string // in execution order, passwords redacted
}

// FieldDiff describes a single field change within an Update action.
type FieldDiff struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// Plan is an ordered list of actions, one per event.
type Plan struct {
	Actions []Action
}

// Summary returns counts of creates, updates, replaces, and deletes.
func (p *Plan) Summary() PlanSummary {
	var s PlanSummary
	for _, a := range p.Actions {
		switch a.Operation {
		case OpCreate:
			s.Creates++
		case OpUpdate:
			s.Updates++
		case OpReplace:
			s.Replaces++
		case OpDelete:
			s.Deletes++
		}
		s.Statements += len(a.Statements)
	}
	return s
}

// HasChanges returns true if any action issues statements.
func (p *Plan) HasChanges() bool {
	for _, a := range p.Actions {
		if len(a.Statements) > 0 {
			return true
		}
	}
	return false
}

// PlanSummary holds counts of planned operations.
type PlanSummary struct {
	Creates    int `json:"creates"`
	Updates    int `json:"updates"`
	Replaces   int `json:"replaces"`
	Deletes    int `json:"deletes"`
	Statements int `json:"statements"`
}

// FieldDiffs lists the changes of an in-place diff for display.
func (d *TableDiff) FieldDiffs() []FieldDiff {
	var changes []FieldDiff
	for _, c := range d.Deletions {
		changes = append(changes, FieldDiff{Field: columnField(c.Name), OldValue: c.DataType})
	}
	for _, c := range d.Additions {
		changes = append(changes, FieldDiff{Field: columnField(c.Name), NewValue: c.DataType})
	}
	for _, ch := range d.TypeChanges {
		changes = append(changes, FieldDiff{Field: columnField(ch.Old.Name) + ".dataType", OldValue: ch.Old.DataType, NewValue: ch.New.DataType})
	}
	for _, ch := range d.EncodingChanges {
		changes = append(changes, FieldDiff{Field: columnField(ch.Old.Name) + ".encoding", OldValue: ch.Old.Encoding, NewValue: ch.New.Encoding})
	}
	for _, ch := range d.CommentChanges {
		changes = append(changes, FieldDiff{Field: columnField(ch.Old.Name) + ".comment", OldValue: ch.Old.Comment, NewValue: ch.New.Comment})
	}
	for _, ch := range d.Renames {
		changes = append(changes, FieldDiff{Field: columnField(ch.Old.Name) + ".name", OldValue: ch.Old.Name, NewValue: ch.New.Name})
	}
	if d.DistStyle != "" {
		changes = append(changes, FieldDiff{Field: "distStyle", NewValue: string(d.DistStyle)})
	}
	if d.DistKey != "" {
		changes = append(changes, FieldDiff{Field: "distKey", NewValue: d.DistKey})
	}
	if d.SortKey != nil {
		changes = append(changes, FieldDiff{
			Field:    "sortKey",
			NewValue: fmt.Sprintf("%s(%s)", d.SortKey.Style, strings.Join(d.SortKey.Columns, ", ")),
		})
	}
	if d.TableComment != nil {
		changes = append(changes, FieldDiff{Field: "tableComment", NewValue: *d.TableComment})
	}
	return changes
}

func columnField(name string) string {
	return "column[" + name + "]"
}
