package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
)

// Configuration keys shared by flags, environment and the config file.
const (
	KeyBaseURL        = "base_url"
	KeyAPIKey         = "api_key"
	KeySessionID      = "session_id"
	KeyOutput         = "output"
	KeyNoColor        = "no_color"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyAttempts       = "attempts"
	KeyDelay          = "delay"
	KeyBackoff        = "backoff"
	KeyMultiplier     = "multiplier"
	KeyMaxDelay       = "max_delay"
	KeyRetryMax       = "retry_max"
	KeyReportFile     = "report_file"
	KeyReportNATSURL  = "report_nats_url"
	KeyReportSubject  = "report_subject"
	configDirName     = ".petstore"
	configFileName    = "config.yml"
	configKeyArgCount = 2
)

// Config represents the CLI configuration file.
type Config struct {
	BaseURL   string `json:"base_url,omitempty"   yaml:"base_url,omitempty"`
	APIKey    string `json:"api_key,omitempty"    yaml:"api_key,omitempty"`
	SessionID string `json:"session_id,omitempty" yaml:"session_id,omitempty"`

	// Global settings
	Output    string `json:"output,omitempty"     yaml:"output,omitempty"`
	NoColor   bool   `json:"no_color"             yaml:"no_color"`
	LogLevel  string `json:"log_level,omitempty"  yaml:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`

	// Convergence and transport
	Attempts   int           `json:"attempts,omitempty"   yaml:"attempts,omitempty"`
	Delay      time.Duration `json:"delay,omitempty"      yaml:"delay,omitempty"`
	Backoff    string        `json:"backoff,omitempty"    yaml:"backoff,omitempty"`
	Multiplier float64       `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
	MaxDelay   time.Duration `json:"max_delay,omitempty"  yaml:"max_delay,omitempty"`
	RetryMax   int           `json:"retry_max,omitempty"  yaml:"retry_max,omitempty"`

	// Run reports
	ReportFile    string `json:"report_file,omitempty"     yaml:"report_file,omitempty"`
	ReportNATSURL string `json:"report_nats_url,omitempty" yaml:"report_nats_url,omitempty"`
	ReportSubject string `json:"report_subject,omitempty"  yaml:"report_subject,omitempty"`
}

// configFields maps each settable key to its accessors.
var configFields = map[string]struct {
	secret bool
	get    func(c *Config) string
	set    func(c *Config, value string) error
}{
	KeyBaseURL: {
		get: func(c *Config) string { return c.BaseURL },
		set: func(c *Config, v string) error { c.BaseURL = v; return nil },
	},
	KeyAPIKey: {
		secret: true,
		get:    func(c *Config) string { return c.APIKey },
		set:    func(c *Config, v string) error { c.APIKey = v; return nil },
	},
	KeySessionID: {
		secret: true,
		get:    func(c *Config) string { return c.SessionID },
		set:    func(c *Config, v string) error { c.SessionID = v; return nil },
	},
	KeyOutput: {
		get: func(c *Config) string { return c.Output },
		set: func(c *Config, v string) error {
			switch v {
			case "", OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
				c.Output = v

				return nil
			default:
				return fmt.Errorf("%w: %q", constants.ErrInvalidOutput, v)
			}
		},
	},
	KeyNoColor: {
		get: func(c *Config) string { return strconv.FormatBool(c.NoColor) },
		set: func(c *Config, v string) error { return parseInto(&c.NoColor, v, strconv.ParseBool) },
	},
	KeyLogLevel: {
		get: func(c *Config) string { return c.LogLevel },
		set: func(c *Config, v string) error { c.LogLevel = v; return nil },
	},
	KeyLogFormat: {
		get: func(c *Config) string { return c.LogFormat },
		set: func(c *Config, v string) error { c.LogFormat = v; return nil },
	},
	KeyAttempts: {
		get: func(c *Config) string { return intString(c.Attempts) },
		set: func(c *Config, v string) error { return parseInto(&c.Attempts, v, strconv.Atoi) },
	},
	KeyDelay: {
		get: func(c *Config) string { return durationString(c.Delay) },
		set: func(c *Config, v string) error { return parseInto(&c.Delay, v, time.ParseDuration) },
	},
	KeyBackoff: {
		get: func(c *Config) string { return c.Backoff },
		set: func(c *Config, v string) error { c.Backoff = v; return nil },
	},
	KeyMultiplier: {
		get: func(c *Config) string {
			if c.Multiplier == 0 {
				return ""
			}

			return strconv.FormatFloat(c.Multiplier, 'g', -1, 64)
		},
		set: func(c *Config, v string) error {
			return parseInto(&c.Multiplier, v, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
		},
	},
	KeyMaxDelay: {
		get: func(c *Config) string { return durationString(c.MaxDelay) },
		set: func(c *Config, v string) error { return parseInto(&c.MaxDelay, v, time.ParseDuration) },
	},
	KeyRetryMax: {
		get: func(c *Config) string { return intString(c.RetryMax) },
		set: func(c *Config, v string) error { return parseInto(&c.RetryMax, v, strconv.Atoi) },
	},
	KeyReportFile: {
		get: func(c *Config) string { return c.ReportFile },
		set: func(c *Config, v string) error { c.ReportFile = v; return nil },
	},
	KeyReportNATSURL: {
		get: func(c *Config) string { return c.ReportNATSURL },
		set: func(c *Config, v string) error { c.ReportNATSURL = v; return nil },
	},
	KeyReportSubject: {
		get: func(c *Config) string { return c.ReportSubject },
		set: func(c *Config, v string) error { c.ReportSubject = v; return nil },
	},
}

func parseInto[T any](dst *T, value string, parse func(string) (T, error)) error {
	parsed, err := parse(value)
	if err != nil {
		return fmt.Errorf("parsing %q: %w", value, err)
	}

	*dst = parsed

	return nil
}

func intString(n int) string {
	if n == 0 {
		return ""
	}

	return strconv.Itoa(n)
}

func durationString(d time.Duration) string {
	if d == 0 {
		return ""
	}

	return d.String()
}

// ConfigKeys lists the settable configuration keys in order.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configFields))
	for key := range configFields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage the petstore CLI configuration stored in ~/.petstore/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the configuration file contents with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			masked := maskSecrets(*config)

			renderer := &OutputRenderer[*Config]{
				RenderTable: func(w io.Writer, config *Config) error {
					table := tablewriter.NewWriter(w)
					table.Header("Key", "Value")

					for _, key := range ConfigKeys() {
						_ = table.Append(key, valueOr(configFields[key].get(config)))
					}

					if err := table.Render(); err != nil {
						return fmt.Errorf("failed to render table: %w", err)
					}

					return nil
				},
			}

			return renderer.Render(cmd, &masked)
		},
	}
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print a configuration value",
		Long:  "Print a single configuration value. Secrets are never printed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, ok := configFields[args[0]]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, args[0])
			}

			if field.secret {
				return fmt.Errorf("%w: %s", constants.ErrSecretNotPrintable, args[0])
			}

			config, err := loadConfig()
			if err != nil {
				return err
			}

			printf(cmd, "%s\n", field.get(config))

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Run 'petstore config show' to list keys.",
		Args:  cobra.ExactArgs(configKeyArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			field, ok := configFields[key]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			config, err := loadConfig()
			if err != nil {
				return err
			}

			err = field.set(config, value)
			if err != nil {
				return fmt.Errorf("setting %s: %w", key, err)
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			printf(cmd, "Set %s\n", key)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value so its default applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if _, ok := configFields[key]; !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			config, err := loadConfig()
			if err != nil {
				return err
			}

			unsetField(config, key)

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			printf(cmd, "Unset %s\n", key)

			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all configuration",
		Long:  "Remove every value from the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				printf(cmd, "This removes all configuration including the API key. Re-run with --force to confirm.\n")

				return nil
			}

			err := saveConfigStruct(&Config{})
			if err != nil {
				return err
			}

			printf(cmd, "Configuration cleared\n")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

func unsetField(config *Config, key string) {
	switch key {
	case KeyBaseURL:
		config.BaseURL = ""
	case KeyAPIKey:
		config.APIKey = ""
	case KeySessionID:
		config.SessionID = ""
	case KeyOutput:
		config.Output = ""
	case KeyNoColor:
		config.NoColor = false
	case KeyLogLevel:
		config.LogLevel = ""
	case KeyLogFormat:
		config.LogFormat = ""
	case KeyAttempts:
		config.Attempts = 0
	case KeyDelay:
		config.Delay = 0
	case KeyBackoff:
		config.Backoff = ""
	case KeyMultiplier:
		config.Multiplier = 0
	case KeyMaxDelay:
		config.MaxDelay = 0
	case KeyRetryMax:
		config.RetryMax = 0
	case KeyReportFile:
		config.ReportFile = ""
	case KeyReportNATSURL:
		config.ReportNATSURL = ""
	case KeyReportSubject:
		config.ReportSubject = ""
	}
}

func maskSecrets(config Config) Config {
	for _, field := range configFields {
		if field.secret && field.get(&config) != "" {
			_ = field.set(&config, Masked)
		}
	}

	return config
}

// configFilePath returns the config file in use, or the default location.
func configFilePath() (string, error) {
	if file := viper.ConfigFileUsed(); file != "" {
		return file, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", constants.ErrConfigDirNotFound, err)
	}

	return filepath.Join(home, configDirName, configFileName), nil
}

// loadConfig reads the configuration file. Flags and environment
// overrides are not included so that saving never persists them.
func loadConfig() (*Config, error) {
	path, err := configFilePath()
	if err != nil {
		return nil, err
	}

	config := &Config{}

	// path is the CLI's own config file, never request input.
	// #nosec G304
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return config, nil
}

// saveConfigStruct writes the configuration file.
func saveConfigStruct(config *Config) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
