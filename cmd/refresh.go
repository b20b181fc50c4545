package cmd

import (
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the changelist view and store a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := getWorkspace()
		if err != nil {
			return err
		}

		if err := w.Refresh(cmd.Context()); err != nil {
			return err
		}

		groups := w.Groups()
		files := 0
		for _, g := range groups {
			files += len(g.Resources)
		}
		ui.Success("Refreshed: %d changelists, %d files", len(groups), files)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
