package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var changeDescription string

var changeCmd = &cobra.Command{
	Use:   "change",
	Short: "Create or edit changelists",
}

var changeNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new pending changelist",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getP4Client()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		spec, err := client.ChangeSpec(ctx, "new")
		if err != nil {
			return err
		}

		desc := changeDescription
		if desc == "" {
			desc, err = editText(spec.Description)
			if err != nil {
				return err
			}
		}
		if strings.TrimSpace(desc) == "" {
			return fmt.Errorf("changelist description must not be empty")
		}
		spec.Description = desc

		if dryRun {
			ui.DryRunMsg("Would create changelist: %s", firstLine(desc))
			return nil
		}

		msg, err := client.SaveChangeSpec(ctx, spec)
		if err != nil {
			return err
		}
		ui.Success("%s", msg)
		return nil
	},
}

var changeEditCmd = &cobra.Command{
	Use:   "edit <change>",
	Short: "Edit a changelist description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getP4Client()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		spec, err := client.ChangeSpec(ctx, args[0])
		if err != nil {
			return err
		}

		desc := changeDescription
		if desc == "" {
			desc, err = editText(spec.Description)
			if err != nil {
				return err
			}
		}
		if strings.TrimSpace(desc) == "" {
			return fmt.Errorf("changelist description must not be empty")
		}
		spec.Description = desc

		if dryRun {
			ui.DryRunMsg("Would update changelist %s: %s", args[0], firstLine(desc))
			return nil
		}

		msg, err := client.SaveChangeSpec(ctx, spec)
		if err != nil {
			return err
		}
		ui.Success("%s", msg)
		return nil
	},
}

func init() {
	changeNewCmd.Flags().StringVarP(&changeDescription, "description", "d", "", "Changelist description (skips $EDITOR)")
	changeEditCmd.Flags().StringVarP(&changeDescription, "description", "d", "", "New description (skips $EDITOR)")
	changeCmd.AddCommand(changeNewCmd)
	changeCmd.AddCommand(changeEditCmd)
	rootCmd.AddCommand(changeCmd)
}

// editText opens $EDITOR on a temp file seeded with initial and returns the
// edited content.
func editText(initial string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return "", fmt.Errorf("$EDITOR is not set — set it or pass --description")
	}

	tmp, err := os.CreateTemp("", "p4x-change-*.txt")
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(initial); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	editCmd := exec.Command(editor, path)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	if err := editCmd.Run(); err != nil {
		return "", fmt.Errorf("editor %s: %w", filepath.Base(editor), err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
