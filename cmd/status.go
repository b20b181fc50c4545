package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/p4x/internal/model"
	"github.com/joescharf/p4x/internal/output"
)

var statusCached bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the changelist dashboard",
	Long: `Show every pending changelist with its shelved and open files.

By default this queries the server. With --cached, the last stored snapshot
is shown instead, which works offline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statusCached {
			return statusCachedRun(cmd)
		}
		return rootRun(cmd)
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusCached, "cached", false, "Show the last stored snapshot without querying the server")
	rootCmd.AddCommand(statusCmd)
}

func statusCachedRun(cmd *cobra.Command) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	clientName := viper.GetString("p4.client")
	snap, err := s.LatestSnapshot(cmd.Context(), clientName)
	if err != nil {
		return fmt.Errorf("no cached snapshot for client %q: %w", clientName, err)
	}

	ui.Info("Snapshot from %s", timeAgo(snap.TakenAt))
	renderGroups(snap.Groups)
	return nil
}

// renderGroups prints the dashboard: one section header per changelist group
// followed by its files, shelved entries marked and ordered first.
func renderGroups(groups []model.ResourceGroup) {
	if len(groups) == 0 {
		ui.Info("No pending changelists.")
		return
	}

	for _, g := range groups {
		fmt.Fprintf(ui.Out, "%s (%d)\n", output.Cyan(g.Label), g.Count)
		if len(g.Resources) == 0 {
			fmt.Fprintf(ui.Out, "  (no files)\n")
			continue
		}
		for _, res := range g.Resources {
			path := res.LocalPath
			if path == "" {
				path = res.DepotPath
			}
			fmt.Fprintf(ui.Out, "  %-10s %s%s\n",
				output.OperationColor(res.Operation.String()),
				path,
				output.ShelvedMark(res.Shelved),
			)
		}
	}
}

// timeAgo formats a timestamp as a relative duration.
func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
