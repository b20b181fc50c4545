package cmd

import (
	"github.com/spf13/cobra"
)

var submitDescription string

var submitCmd = &cobra.Command{
	Use:   "submit [change]",
	Short: "Submit a changelist",
	Long: `Submit a numbered changelist, or the default changelist when no
argument is given. Submitting the default changelist requires --description.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getP4Client()
		if err != nil {
			return err
		}

		change := "default"
		if len(args) == 1 {
			change = args[0]
		}

		if dryRun {
			ui.DryRunMsg("Would submit changelist %s", change)
			return nil
		}

		msg, err := client.Submit(cmd.Context(), change, submitDescription)
		if err != nil {
			return err
		}
		ui.Success("%s", msg)
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVarP(&submitDescription, "description", "d", "", "Description (required for the default changelist)")
	rootCmd.AddCommand(submitCmd)
}
