package cmd

import (
	"github.com/spf13/cobra"
)

var unshelveCmd = &cobra.Command{
	Use:   "unshelve <change>",
	Short: "Restore shelved files into the workspace",
	Long: `Unshelve the files of a changelist into the workspace, overwriting
writable files.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getP4Client()
		if err != nil {
			return err
		}

		if dryRun {
			ui.DryRunMsg("Would unshelve changelist %s", args[0])
			return nil
		}

		if err := client.Unshelve(cmd.Context(), args[0]); err != nil {
			return err
		}
		ui.Success("Unshelved changelist %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unshelveCmd)
}
