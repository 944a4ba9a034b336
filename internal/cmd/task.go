package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks within a plan",
	Long: `Add, complete, and restructure tasks.

Tasks are addressed by comma-separated index paths ("0", "0,1,2"). Paths
shift when earlier siblings are removed, so re-fetch the plan after
structural changes.`,
}

var (
	taskAddParent string
	taskAddLevel  string
	taskAddNotes  string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Add a task",
	Long: `Add a task under --parent (the plan root by default) at the given
abstraction level. Adding work beneath a completed task reopens it and its
completed ancestors.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		path, err := apiClient().AddTask(cmd.Context(), id, taskAddParent, args[0], taskAddLevel, taskAddNotes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", path)
		return nil
	},
}

var (
	taskCompleteLease   string
	taskCompleteSummary string
	taskCompleteForce   bool
)

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <path>",
	Short: "Complete a task and its subtree",
	Long: `Complete the task at <path>. Unforced completion is a two-step
handshake: generate a lease with 'strata lease <path>', then complete with
--lease and a --summary describing what was done and how it was verified.

--force bypasses both checks; use it sparingly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		if err := apiClient().CompleteTask(cmd.Context(), id, args[0], taskCompleteLease, taskCompleteSummary, taskCompleteForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Completed task %s\n", args[0])
		return nil
	},
}

var taskUncompleteCmd = &cobra.Command{
	Use:   "uncomplete <path>",
	Short: "Reopen a completed task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		if err := apiClient().UncompleteTask(cmd.Context(), id, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reopened task %s\n", args[0])
		return nil
	},
}

var taskRemoveCmd = &cobra.Command{
	Use:   "remove <path>",
	Short: "Remove a task and its subtree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		removed, err := apiClient().RemoveTask(cmd.Context(), id, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %q (later siblings shifted down)\n", removed.Description)
		return nil
	},
}

var taskLevelCmd = &cobra.Command{
	Use:   "level <path> <level>",
	Short: "Change a task's abstraction level",
	Long:  "Set the task's level to planning, isolation, ordering, or implementation.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		if err := apiClient().ChangeLevel(cmd.Context(), id, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", args[0], args[1])
		return nil
	},
}

var taskNotesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage task notes",
}

var taskNotesViewCmd = &cobra.Command{
	Use:   "view <path>",
	Short: "View a task's notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		notes, err := apiClient().GetNotes(cmd.Context(), id, args[0])
		if err != nil {
			return err
		}
		if notes == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(no notes)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), notes)
		return nil
	},
}

var taskNotesSetCmd = &cobra.Command{
	Use:   "set <path> <notes>",
	Short: "Set a task's notes",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		notes := strings.Join(args[1:], " ")
		if err := apiClient().SetNotes(cmd.Context(), id, args[0], notes); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated notes for task %s\n", args[0])
		return nil
	},
}

var taskNotesDeleteCmd = &cobra.Command{
	Use:   "delete <path>",
	Short: "Delete a task's notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		if err := apiClient().DeleteNotes(cmd.Context(), id, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted notes for task %s\n", args[0])
		return nil
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&taskAddParent, "parent", "", "index path of the parent task (default: plan root)")
	taskAddCmd.Flags().StringVar(&taskAddLevel, "level", "", "abstraction level: planning, isolation, ordering, implementation (required)")
	taskAddCmd.Flags().StringVar(&taskAddNotes, "notes", "", "notes for the task")
	_ = taskAddCmd.MarkFlagRequired("level")

	taskCompleteCmd.Flags().StringVar(&taskCompleteLease, "lease", "", "lease token from 'strata lease'")
	taskCompleteCmd.Flags().StringVar(&taskCompleteSummary, "summary", "", "what was done and how it was verified")
	taskCompleteCmd.Flags().BoolVar(&taskCompleteForce, "force", false, "bypass lease and summary checks")

	taskNotesCmd.AddCommand(taskNotesViewCmd)
	taskNotesCmd.AddCommand(taskNotesSetCmd)
	taskNotesCmd.AddCommand(taskNotesDeleteCmd)

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskUncompleteCmd)
	taskCmd.AddCommand(taskRemoveCmd)
	taskCmd.AddCommand(taskLevelCmd)
	taskCmd.AddCommand(taskNotesCmd)
	rootCmd.AddCommand(taskCmd)
}
