package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/p4x/internal/output"
)

var openedCmd = &cobra.Command{
	Use:   "opened",
	Short: "List files opened in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getP4Client()
		if err != nil {
			return err
		}

		files, err := client.Opened(cmd.Context())
		if err != nil {
			return err
		}
		if len(files) == 0 {
			ui.Info("No files opened.")
			return nil
		}

		table := ui.Table([]string{"File", "Rev", "Action", "Change", "Type"})
		for _, f := range files {
			table.Append([]string{
				f.DepotPath,
				f.Revision,
				output.OperationColor(f.Action),
				f.Change,
				f.FileType,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openedCmd)
}
