package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// applyResult is the JSON form of one applied event.
type applyResult struct {
	RequestID          string            `json:"request_id"`
	Operation          string            `json:"operation"`
	ResourceType       string            `json:"resource_type"`
	PhysicalResourceID string            `json:"physical_resource_id,omitempty"`
	Data               map[string]string `json:"data,omitempty"`
}

func newApplyCmd(opts *rootOptions, factory ReconcilerFactory) *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run lifecycle events against the warehouse",
		Long: "Plans every event first and stops before running anything if one is invalid. Events are then " +
			"applied in file order; the first failure stops the run and statements already applied are not rolled back.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events, err := LoadEventFiles(files)
			if err != nil {
				return fmt.Errorf("load events: %w", err)
			}

			r, logger, err := opts.setup(cmd, factory)
			if err != nil {
				return err
			}
			plan, recs, err := r.PlanAll(cmd.Context(), events)
			if err != nil {
				return fmt.Errorf("plan: %w", err)
			}
			if opts.output == "text" {
				if err := writePlan(cmd, opts, plan); err != nil {
					return err
				}
			}

			results := make([]applyResult, 0, len(recs))
			for i, rec := range recs {
				logger.Debug("applying event", "request_id", events[i].RequestID, "operation", rec.Action.Operation.String())
				resp, err := r.Apply(cmd.Context(), rec)
				if err != nil {
					return fmt.Errorf("apply %s %s (request %s): %w",
						rec.Action.Operation, rec.Action.ResourceKind, events[i].RequestID, err)
				}
				res := applyResult{
					RequestID:    events[i].RequestID,
					Operation:    rec.Action.Operation.String(),
					ResourceType: rec.Action.ResourceKind.String(),
				}
				if resp != nil {
					res.PhysicalResourceID = resp.PhysicalResourceID
					res.Data = resp.Data
				}
				results = append(results, res)
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for _, res := range results {
				if res.PhysicalResourceID == "" {
					fmt.Fprintf(out, "%s %s: done\n", res.ResourceType, res.Operation)
					continue
				}
				fmt.Fprintf(out, "%s %s: %s\n", res.ResourceType, res.Operation, res.PhysicalResourceID)
			}
			fmt.Fprintf(out, "Apply complete: %d event(s) applied.\n", len(results))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Event file (YAML or JSON); repeatable")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
