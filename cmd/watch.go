package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/p4x/internal/refresh"
	"github.com/joescharf/p4x/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and refresh on file changes",
	Long: `Watch the workspace tree for file changes and re-render the dashboard
after each burst of edits settles. Changes within the debounce window collapse
into one refresh. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := getWorkspace()
		if err != nil {
			return err
		}

		pf := watch.NewPIDFile(viper.GetString("state_dir"), w.Client.Dir)
		if err := pf.Acquire(); err != nil {
			return err
		}
		defer func() { _ = pf.Release() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		refreshAndRender := func() {
			if err := w.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				ui.Error("refresh failed: %v", err)
				return
			}
			renderGroups(w.Groups())
		}

		// initial view before any file event
		refreshAndRender()

		debouncer := refresh.NewDebouncer(watchDebounce, func() {
			refreshAndRender()
		})
		defer debouncer.Stop()

		watcher, err := watch.New(w.Client.Dir, debouncer.Trigger)
		if err != nil {
			return err
		}

		ui.Info("Watching %s (debounce %s)", w.Client.Dir, watchDebounce)
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before a refresh runs")
	rootCmd.AddCommand(watchCmd)
}
