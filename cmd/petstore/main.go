package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/petstore-client/cmd/petstore/commands"
	"github.com/fivetwenty-io/petstore-client/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "petstore",
	Short: "Pet store API CLI",
	Long: `A command-line interface for the Swagger pet-store API.

Mutating commands wait until the eventually consistent store serves the
change. Tune the wait with --attempts, --delay and --backoff, or skip it
with --no-wait.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.petstore/config.yml)")
	flags.String("base-url", "", "store base URL including the version path")
	flags.StringP("api-key", "k", "", "value of the api_key header")
	flags.StringP("output", "o", commands.OutputFormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.Bool("no-wait", false, "return as soon as the store accepts a change")
	flags.Int("attempts", 0, "observation reads before giving up")
	flags.Duration("delay", 0, "delay unit between observation reads")
	flags.String("backoff", "", "backoff between reads (linear, exponential, constant)")
	flags.Int("retry-max", 0, "transport retries of plain reads on 429/5xx (convergence polling is never retried)")
	flags.String("report-file", "", "append convergence events as YAML to this file")
	flags.String("report-nats-url", "", "publish convergence events to this NATS server")

	// Bind flags to viper
	bindings := map[string]string{
		"config":                  "config",
		commands.KeyBaseURL:       "base-url",
		commands.KeyAPIKey:        "api-key",
		commands.KeyOutput:        "output",
		"verbose":                 "verbose",
		commands.KeyNoColor:       "no-color",
		commands.KeyLogLevel:      "log-level",
		commands.KeyLogFormat:     "log-format",
		"no_wait":                 "no-wait",
		commands.KeyAttempts:      "attempts",
		commands.KeyDelay:         "delay",
		commands.KeyBackoff:       "backoff",
		commands.KeyRetryMax:      "retry-max",
		commands.KeyReportFile:    "report-file",
		commands.KeyReportNATSURL: "report-nats-url",
	}

	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	viper.SetDefault(commands.KeyBaseURL, constants.DefaultBaseURL)
	viper.SetDefault(commands.KeyAPIKey, constants.DefaultAPIKey)
	viper.SetDefault(commands.KeyAttempts, constants.DefaultConvergenceAttempts)
	viper.SetDefault(commands.KeyDelay, constants.DefaultConvergenceDelay)
	viper.SetDefault(commands.KeyBackoff, constants.DefaultConvergenceBackoff)
	viper.SetDefault(commands.KeyReportSubject, constants.DefaultReportSubjectPrefix)

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewPetsCommand())
	rootCmd.AddCommand(commands.NewStoreCommand())
	rootCmd.AddCommand(commands.NewUsersCommand())
	rootCmd.AddCommand(commands.NewScenarioCommand())
}

func initConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.petstore/config.yml
		viper.AddConfigPath(filepath.Join(home, ".petstore"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()

	// If a config file is found, read it in
	err := viper.ReadInConfig()
	if err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}

		return
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
