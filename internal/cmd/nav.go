package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <path>",
	Short: "Move the plan's current focus",
	Long:  `Move the current focus to the task at <path>. Use "root" to return to the top.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		if err := apiClient().MoveTo(cmd.Context(), id, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved to %s\n", args[0])
		return nil
	},
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the focused task",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		cur, err := apiClient().GetCurrent(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderCurrent(cur))
		return nil
	},
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show the distilled working view",
	Long: `Show a compact view centered on the current focus: the focused task with
its level guidance, the ancestor chain, immediate children, and recent
activity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		dc, err := apiClient().GetDistilledContext(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderContext(dc))
		return nil
	},
}

var leaseCmd = &cobra.Command{
	Use:   "lease <path>",
	Short: "Generate a completion lease",
	Long: `Issue a completion lease for the task at <path> and print the token.
The newest lease supersedes earlier ones; complete the task with
'strata task complete <path> --lease <token> --summary <text>'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requirePlan()
		if err != nil {
			return err
		}
		lease, err := apiClient().GenerateLease(cmd.Context(), id, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", lease.Token)
		return nil
	},
}

var guideMCP bool

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show the full usage guide",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := "cli"
		if guideMCP {
			mode = "mcp"
		}
		text, err := apiClient().GetGuide(cmd.Context(), mode)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(currentCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(leaseCmd)
	guideCmd.Flags().BoolVar(&guideMCP, "mcp", false, "show the tool-oriented guide")
	rootCmd.AddCommand(guideCmd)
}
