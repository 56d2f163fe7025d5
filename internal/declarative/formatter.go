package declarative

import (
	"encoding/json"
	"fmt"
	"io"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// FormatText writes a human-readable plan to w.
// If noColor is true, ANSI codes are suppressed.
func FormatText(w io.Writer, plan *Plan, noColor bool) {
	c := func(code string) string {
		if noColor {
			return ""
		}
		return code
	}

	if !plan.HasChanges() {
		fmt.Fprintln(w, "No changes. Objects are up-to-date.")
		return
	}

	for _, a := range plan.Actions {
		switch a.Operation {
		case OpCreate:
			fmt.Fprintf(w, "\n  %s+%s %s %q will be created\n",
				c(colorGreen), c(colorReset), a.ResourceKind, a.ResourceName)
		case OpUpdate:
			fmt.Fprintf(w, "\n  %s~%s %s %q will be updated in place\n",
				c(colorYellow), c(colorReset), a.ResourceKind, a.ResourceName)
		case OpReplace:
			fmt.Fprintf(w, "\n  %s-/+%s %s %q will be replaced (%s)\n",
				c(colorRed), c(colorReset), a.ResourceKind, a.ResourceName, a.ReplaceReason)
		case OpDelete:
			fmt.Fprintf(w, "\n  %s-%s %s %q will be deleted\n",
				c(colorRed), c(colorReset), a.ResourceKind, a.ResourceName)
		case OpNoop:
			fmt.Fprintf(w, "\n  %s=%s %s %q is unchanged\n",
				c(colorDim), c(colorReset), a.ResourceKind, a.ResourceName)
			continue
		}
		if a.PhysicalID != "" {
			fmt.Fprintf(w, "      %sphysical id:%s %s\n", c(colorDim), c(colorReset), a.PhysicalID)
		}
		for _, d := range a.Changes {
			fmt.Fprintf(w, "      %s: %q → %q\n", d.Field, d.OldValue, d.NewValue)
		}
		for _, stmt := range a.Statements {
			fmt.Fprintf(w, "      %s%s;%s\n", c(colorCyan), stmt, c(colorReset))
		}
	}

	s := plan.Summary()
	fmt.Fprintf(w, "\n%sPlan:%s %d to create, %d to update, %d to replace, %d to delete (%d statements).\n",
		c(colorDim), c(colorReset), s.Creates, s.Updates, s.Replaces, s.Deletes, s.Statements)
}

// FormatJSON writes the plan as JSON to w.
func FormatJSON(w io.Writer, plan *Plan) error {
	type jsonAction struct {
		Operation     string      `json:"operation"`
		ResourceType  string      `json:"resource_type"`
		ResourceName  string      `json:"resource_name"`
		PhysicalID    string      `json:"physical_id,omitempty"`
		ReplaceReason string      `json:"replace_reason,omitempty"`
		Changes       []FieldDiff `json:"changes,omitempty"`
		Statements    []string    `json:"statements"`
	}
	type jsonPlan struct {
		Actions []jsonAction `json:"actions"`
		Summary PlanSummary  `json:"summary"`
	}

	jp := jsonPlan{
		Actions: make([]jsonAction, 0, len(plan.Actions)),
		Summary: plan.Summary(),
	}

	for _, a := range plan.Actions {
		ja := jsonAction{
			Operation:     a.Operation.String(),
			ResourceType:  a.ResourceKind.String(),
			ResourceName:  a.ResourceName,
			PhysicalID:    a.PhysicalID,
			ReplaceReason: a.ReplaceReason,
			Statements:    a.Statements,
		}
		if ja.Statements == nil {
			ja.Statements = []string{}
		}
		if len(a.Changes) > 0 {
			ja.Changes = a.Changes
		}
		jp.Actions = append(jp.Actions, ja)
	}

	data, err := json.MarshalIndent(jp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
