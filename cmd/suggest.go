package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/p4x/internal/model"
)

var suggestApply bool

var suggestCmd = &cobra.Command{
	Use:   "suggest [change]",
	Short: "Suggest a changelist description from the open files",
	Long: `Ask the configured Anthropic model for a changelist description based
on the files open in a changelist and their diffs. Without an argument the
default changelist is used.

With --apply, the suggestion is written back to the changelist spec (numbered
changelists only).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lc := newLLMClient()
		if lc == nil {
			return fmt.Errorf("no Anthropic API key configured (set anthropic.api_key or ANTHROPIC_API_KEY)")
		}

		w, err := getWorkspace()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		change := model.DefaultChange
		if len(args) == 1 {
			change = args[0]
		}

		if err := w.Refresh(ctx); err != nil {
			return err
		}

		resources := groupResources(w.Groups(), model.GroupID(change))
		if len(resources) == 0 {
			return fmt.Errorf("changelist %s has no files", change)
		}

		// diff only the non-shelved files that exist locally
		var paths []string
		for _, res := range resources {
			if !res.Shelved && res.LocalPath != "" {
				paths = append(paths, res.DepotPath)
			}
		}
		diff := ""
		if len(paths) > 0 {
			diff, err = w.Client.Diff(ctx, paths...)
			if err != nil {
				ui.VerboseLog("diff unavailable: %v", err)
			}
		}

		ui.Info("Asking for a description of %d file(s)...", len(resources))
		suggestion, err := lc.SuggestDescription(ctx, resources, diff)
		if err != nil {
			return err
		}

		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, suggestion.Description())

		if !suggestApply {
			return nil
		}
		if change == model.DefaultChange {
			return fmt.Errorf("--apply needs a numbered changelist")
		}
		if dryRun {
			ui.DryRunMsg("Would update changelist %s description", change)
			return nil
		}

		spec, err := w.Client.ChangeSpec(ctx, change)
		if err != nil {
			return err
		}
		spec.Description = suggestion.Description()
		msg, err := w.Client.SaveChangeSpec(ctx, spec)
		if err != nil {
			return err
		}
		ui.Success("%s", msg)
		return nil
	},
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestApply, "apply", false, "Write the suggestion back to the changelist")
	rootCmd.AddCommand(suggestCmd)
}

// groupResources returns the resources of the group with the given id.
func groupResources(groups []model.ResourceGroup, id string) []model.FileResource {
	for _, g := range groups {
		if g.ID == id {
			return g.Resources
		}
	}
	return nil
}
