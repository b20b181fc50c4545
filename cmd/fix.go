package cmd

import (
	"github.com/spf13/cobra"
)

var fixChange string

var fixCmd = &cobra.Command{
	Use:   "fix <job>",
	Short: "Link a job to a changelist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getP4Client()
		if err != nil {
			return err
		}

		if dryRun {
			ui.DryRunMsg("Would link job %s to changelist %s", args[0], fixChange)
			return nil
		}

		if err := client.Fix(cmd.Context(), fixChange, args[0]); err != nil {
			return err
		}
		ui.Success("Linked job %s to changelist %s", args[0], fixChange)
		return nil
	},
}

func init() {
	fixCmd.Flags().StringVarP(&fixChange, "change", "c", "", "Changelist number (required)")
	_ = fixCmd.MarkFlagRequired("change")
	rootCmd.AddCommand(fixCmd)
}
