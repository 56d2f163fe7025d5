package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbobjects/internal/declarative"
)

func newPlanCmd(opts *rootOptions, factory ReconcilerFactory) *cobra.Command {
	var (
		files            []string
		detailedExitCode bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the statements lifecycle events would run",
		Long: "Reads lifecycle events from YAML or JSON files and shows, for each, whether it creates, " +
			"alters, replaces or drops the object and the exact statements it would run. Nothing is executed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events, err := LoadEventFiles(files)
			if err != nil {
				return fmt.Errorf("load events: %w", err)
			}

			r, _, err := opts.setup(cmd, factory)
			if err != nil {
				return err
			}
			plan, _, err := r.PlanAll(cmd.Context(), events)
			if err != nil {
				return fmt.Errorf("plan: %w", err)
			}

			if err := writePlan(cmd, opts, plan); err != nil {
				return err
			}
			if detailedExitCode && plan.HasChanges() {
				return errPlanHasChanges
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Event file (YAML or JSON); repeatable")
	cmd.Flags().BoolVar(&detailedExitCode, "detailed-exitcode", false, "Exit with code 2 when the plan has changes")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func writePlan(cmd *cobra.Command, opts *rootOptions, plan *declarative.Plan) error {
	if opts.output == "json" {
		if err := declarative.FormatJSON(cmd.OutOrStdout(), plan); err != nil {
			return fmt.Errorf("format plan: %w", err)
		}
		return nil
	}
	declarative.FormatText(cmd.OutOrStdout(), plan, opts.noColor)
	return nil
}
