package cmd

import (
	"github.com/spf13/cobra"
)

var revertCmd = &cobra.Command{
	Use:   "revert <change> [files...]",
	Short: "Revert open files",
	Long: `Revert open files, discarding local changes. With only a changelist,
every file in it reverts; with file arguments, only those files revert.

Use "default" for the default changelist.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getP4Client()
		if err != nil {
			return err
		}

		change, paths := args[0], args[1:]

		if dryRun {
			if len(paths) > 0 {
				ui.DryRunMsg("Would revert %d file(s) in changelist %s", len(paths), change)
			} else {
				ui.DryRunMsg("Would revert all files in changelist %s", change)
			}
			return nil
		}

		if err := client.Revert(cmd.Context(), change, paths...); err != nil {
			return err
		}
		ui.Success("Reverted changelist %s", change)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(revertCmd)
}
