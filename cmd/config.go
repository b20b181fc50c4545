package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "p4x"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage p4x configuration.

Running bare 'p4x config' is the same as 'p4x config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# p4x configuration
# See: p4x config show (for effective values and sources)

# State/data directory (default: ~/.config/p4x)
# state_dir: {{ .StateDir }}

# SQLite database path (default: ~/.config/p4x/p4x.db)
# db_path: {{ .DBPath }}

# Perforce connection. Empty values fall back to P4PORT/P4USER/P4CLIENT
# from the environment.
p4:
  port: "{{ .P4Port }}"
  user: "{{ .P4User }}"
  client: "{{ .P4Client }}"

# Changelist ordering: "ascending" or "descending". The default changelist
# always sorts first.
changelist_order: "{{ .ChangelistOrder }}"

# Changelists whose description starts with this prefix are hidden.
# ignored_changelist_prefix: "auto:"

# View filters (default: false)
hide_shelved_files: {{ .HideShelved }}
hide_non_workspace_files: {{ .HideNonWorkspace }}
hide_empty_changelists: {{ .HideEmpty }}

# File count badge per changelist: "off", "all", or "all-but-shelved"
count_badge: "{{ .CountBadge }}"

# Largest number of files passed to one p4 command (default: 200)
max_file_per_command: {{ .MaxFilePerCommand }}

# Anthropic settings for 'p4x suggest'
anthropic:
  # api_key: ""
  model: "{{ .AnthropicModel }}"
`

type configTemplateData struct {
	StateDir          string
	DBPath            string
	P4Port            string
	P4User            string
	P4Client          string
	ChangelistOrder   string
	HideShelved       bool
	HideNonWorkspace  bool
	HideEmpty         bool
	CountBadge        string
	MaxFilePerCommand int
	AnthropicModel    string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		StateDir:          viper.GetString("state_dir"),
		DBPath:            viper.GetString("db_path"),
		P4Port:            viper.GetString("p4.port"),
		P4User:            viper.GetString("p4.user"),
		P4Client:          viper.GetString("p4.client"),
		ChangelistOrder:   viper.GetString("changelist_order"),
		HideShelved:       viper.GetBool("hide_shelved_files"),
		HideNonWorkspace:  viper.GetBool("hide_non_workspace_files"),
		HideEmpty:         viper.GetBool("hide_empty_changelists"),
		CountBadge:        viper.GetString("count_badge"),
		MaxFilePerCommand: viper.GetInt("max_file_per_command"),
		AnthropicModel:    viper.GetString("anthropic.model"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
}

var configKeys = []configKeyInfo{
	{Key: "state_dir", EnvVar: "P4X_STATE_DIR"},
	{Key: "db_path", EnvVar: "P4X_DB_PATH"},
	{Key: "p4.port", EnvVar: "P4X_P4_PORT"},
	{Key: "p4.user", EnvVar: "P4X_P4_USER"},
	{Key: "p4.client", EnvVar: "P4X_P4_CLIENT"},
	{Key: "changelist_order", EnvVar: "P4X_CHANGELIST_ORDER"},
	{Key: "ignored_changelist_prefix", EnvVar: "P4X_IGNORED_CHANGELIST_PREFIX"},
	{Key: "hide_shelved_files", EnvVar: "P4X_HIDE_SHELVED_FILES"},
	{Key: "hide_non_workspace_files", EnvVar: "P4X_HIDE_NON_WORKSPACE_FILES"},
	{Key: "hide_empty_changelists", EnvVar: "P4X_HIDE_EMPTY_CHANGELISTS"},
	{Key: "count_badge", EnvVar: "P4X_COUNT_BADGE"},
	{Key: "max_file_per_command", EnvVar: "P4X_MAX_FILE_PER_COMMAND"},
	{Key: "anthropic.model", EnvVar: "P4X_ANTHROPIC_MODEL"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-28s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set — set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'p4x config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
