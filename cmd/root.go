package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/p4x/internal/output"
	"github.com/joescharf/p4x/internal/p4"
	"github.com/joescharf/p4x/internal/scm"
	"github.com/joescharf/p4x/internal/store"
	"github.com/joescharf/p4x/internal/workspace"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store
	providers *scm.Registry

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "p4x",
	Short: "Perforce changelist dashboard and workflow helper",
	Long: `p4x wraps the p4 command line with a changelist-centric view of your
workspace: pending changelists with their shelved and open files, shelve and
submit workflows, and a watch mode that keeps the view fresh as you edit.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rootRun(cmd)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/p4x/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "p4x")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("P4X")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "p4x")

	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "p4x.db"))
	viper.SetDefault("p4.port", "")
	viper.SetDefault("p4.user", "")
	viper.SetDefault("p4.client", "")
	viper.SetDefault("changelist_order", "ascending")
	viper.SetDefault("ignored_changelist_prefix", "")
	viper.SetDefault("hide_shelved_files", false)
	viper.SetDefault("hide_non_workspace_files", false)
	viper.SetDefault("hide_empty_changelists", false)
	viper.SetDefault("count_badge", "all-but-shelved")
	viper.SetDefault("max_file_per_command", p4.DefaultMaxPerCommand)
	viper.SetDefault("snapshot_history", 20)
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
	providers = scm.NewRegistry()

	// Store and p4 connection are initialized lazily — only when commands
	// actually need them. This allows config/version to run without either.
}

// rootRun handles `p4x` with no subcommand: refresh and show the dashboard.
func rootRun(cmd *cobra.Command) error {
	w, err := getWorkspace()
	if err != nil {
		return err
	}

	if err := w.Refresh(cmd.Context()); err != nil {
		return err
	}
	renderGroups(w.Groups())
	return nil
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// getP4Client builds a p4 Client for the current directory from config.
func getP4Client() (*p4.Client, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}

	conn := p4.Conn{
		Port:   viper.GetString("p4.port"),
		User:   viper.GetString("p4.user"),
		Client: viper.GetString("p4.client"),
	}
	runner := p4.NewRunner(conn)
	return p4.NewClient(runner, dir, conn.Client, viper.GetInt("max_file_per_command")), nil
}

// workspaceConfig maps the recognized config keys onto workspace options.
func workspaceConfig(root string) workspace.Config {
	return workspace.Config{
		Descending:       viper.GetString("changelist_order") == "descending",
		IgnoredPrefix:    viper.GetString("ignored_changelist_prefix"),
		HideShelved:      viper.GetBool("hide_shelved_files"),
		HideNonWorkspace: viper.GetBool("hide_non_workspace_files"),
		HideEmpty:        viper.GetBool("hide_empty_changelists"),
		CountBadge:       scm.ParseCountPolicy(viper.GetString("count_badge")),
		WorkspaceRoots:   []string{root},
		SnapshotHistory:  viper.GetInt("snapshot_history"),
	}
}

// getWorkspace assembles the refresh pipeline for the current directory. The
// snapshot store is best-effort: a broken db degrades to no history rather
// than blocking queries.
func getWorkspace() (*workspace.Workspace, error) {
	client, err := getP4Client()
	if err != nil {
		return nil, err
	}

	s, err := getStore()
	if err != nil {
		ui.VerboseLog("snapshot store unavailable: %v", err)
		s = nil
	}

	provider := providers.Register(client.ClientName, client.Dir)
	return workspace.New(client, provider, s, ui, workspaceConfig(client.Dir)), nil
}
