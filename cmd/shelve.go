package cmd

import (
	"github.com/spf13/cobra"
)

var shelveDelete bool

var shelveCmd = &cobra.Command{
	Use:   "shelve <change>",
	Short: "Shelve the files of a changelist",
	Long: `Shelve every file opened in a numbered changelist, replacing any
previously shelved revisions. With --delete, the shelved files are discarded
instead.

The default changelist cannot be shelved; move files to a numbered one first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getP4Client()
		if err != nil {
			return err
		}

		if dryRun {
			if shelveDelete {
				ui.DryRunMsg("Would delete shelved files of changelist %s", args[0])
			} else {
				ui.DryRunMsg("Would shelve changelist %s", args[0])
			}
			return nil
		}

		if shelveDelete {
			if err := client.DeleteShelved(cmd.Context(), args[0]); err != nil {
				return err
			}
			ui.Success("Deleted shelved files of changelist %s", args[0])
			return nil
		}

		if err := client.Shelve(cmd.Context(), args[0]); err != nil {
			return err
		}
		ui.Success("Shelved changelist %s", args[0])
		return nil
	},
}

func init() {
	shelveCmd.Flags().BoolVar(&shelveDelete, "delete", false, "Delete the shelved files instead of shelving")
	rootCmd.AddCommand(shelveCmd)
}
