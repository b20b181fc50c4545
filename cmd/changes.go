package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/p4x/internal/output"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "List pending changelists",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getP4Client()
		if err != nil {
			return err
		}

		changes, err := client.PendingChanges(cmd.Context())
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			ui.Info("No pending changelists.")
			return nil
		}

		table := ui.Table([]string{"Change", "Date", "User", "Description"})
		for _, c := range changes {
			table.Append([]string{
				output.Cyan(c.Number),
				c.Date,
				c.User,
				c.Description,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(changesCmd)
}
