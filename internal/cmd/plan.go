package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/strata/internal/errors"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage plans",
	Long: `Create, inspect, list, and delete plans.

Use 'strata plan create' to start a new plan.
Use 'strata plan get' to view the full task tree.
Use 'strata plan list' to see every plan on the server.
Use 'strata plan delete' to remove a plan permanently.`,
}

var (
	planCreateGoal  string
	planCreateNotes string
)

var planCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new plan",
	Long: `Create a new plan and print its id.

Keep the goal concise, like a title; put detail in --notes. Export the
printed id as STRATA_PLAN to make it the session default.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := apiClient().CreatePlan(cmd.Context(), planCreateGoal, planCreateNotes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", id)
		fmt.Fprintf(cmd.ErrOrStderr(), "Created plan %d: %q\nRun 'export STRATA_PLAN=%d' to make it the session default.\n", id, planCreateGoal, id)
		return nil
	},
}

var planGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the full plan tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		p, err := apiClient().GetPlan(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderPlan(p))
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		plans, err := apiClient().ListPlans(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderPlanList(plans))
		return nil
	},
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return errors.New(errors.ErrCodeInvalidOperation, fmt.Sprintf("invalid plan id %q", args[0]))
		}
		if err := apiClient().DeletePlan(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %d\n", id)
		return nil
	},
}

func init() {
	planCreateCmd.Flags().StringVar(&planCreateGoal, "goal", "", "what the plan should achieve (required)")
	planCreateCmd.Flags().StringVar(&planCreateNotes, "notes", "", "context, requirements, acceptance criteria")
	_ = planCreateCmd.MarkFlagRequired("goal")

	planCmd.AddCommand(planCreateCmd)
	planCmd.AddCommand(planGetCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planDeleteCmd)
	rootCmd.AddCommand(planCmd)
}
