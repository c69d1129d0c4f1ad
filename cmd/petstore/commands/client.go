package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/internal/logging"
	"github.com/fivetwenty-io/petstore-client/internal/report"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
	"github.com/fivetwenty-io/petstore-client/pkg/petstoreclient"
)

// Session bundles a client with the logger and reporter it writes to.
type Session struct {
	Client   petstore.Client
	Logger   *logging.Logger
	Reporter *report.Reporter
	BaseURL  string
}

// Close flushes and closes the run reporter.
func (s *Session) Close() error {
	if s.Reporter == nil {
		return nil
	}

	return s.Reporter.Close()
}

// NewLogger builds the CLI logger from the --verbose, --log-level,
// --log-format and --no-color settings.
func NewLogger(w io.Writer) (*logging.Logger, error) {
	level := viper.GetString(KeyLogLevel)
	if viper.GetBool("verbose") {
		level = "debug"
	}

	logger, err := logging.New(w, logging.Options{
		Level:   level,
		Format:  viper.GetString(KeyLogFormat),
		NoColor: viper.GetBool(KeyNoColor),
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return logger, nil
}

// ConvergenceSettings reads the observation policy from flags, environment
// and configuration.
func ConvergenceSettings() petstore.ConvergenceConfig {
	return petstore.ConvergenceConfig{
		MaxAttempts: viper.GetInt(KeyAttempts),
		BaseDelay:   viper.GetDuration(KeyDelay),
		Backoff:     viper.GetString(KeyBackoff),
		Multiplier:  viper.GetFloat64(KeyMultiplier),
		MaxDelay:    viper.GetDuration(KeyMaxDelay),
	}
}

// ReportSettings reads the run report destinations.
func ReportSettings() report.Config {
	return report.Config{
		File: viper.GetString(KeyReportFile),
		NATS: report.NATSConfig{
			URL:           viper.GetString(KeyReportNATSURL),
			SubjectPrefix: viper.GetString(KeyReportSubject),
			Name:          constants.DefaultUserAgent,
		},
	}
}

// CreateClient builds a client for the configured store.
func CreateClient(cmd *cobra.Command) (*Session, error) {
	baseURL := viper.GetString(KeyBaseURL)
	if baseURL == "" {
		return nil, constants.ErrNoBaseURL
	}

	return CreateClientFor(cmd, baseURL)
}

// CreateClientFor builds a client for baseURL using the configured
// credentials, convergence policy and reporting.
func CreateClientFor(cmd *cobra.Command, baseURL string) (*Session, error) {
	logger, err := NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	reporter, err := report.NewFromConfig(ReportSettings())
	if err != nil {
		return nil, err
	}

	config := &petstore.Config{
		BaseURL:     baseURL,
		APIKey:      viper.GetString(KeyAPIKey),
		SessionID:   viper.GetString(KeySessionID),
		HTTPTimeout: constants.DefaultHTTPTimeout,
		RetryMax:    viper.GetInt(KeyRetryMax),
		Debug:       viper.GetBool("verbose"),
		Logger:      logger,
		Reporter:    reporter,
		Convergence: ConvergenceSettings(),
	}

	client, err := petstoreclient.New(commandContext(cmd), config)
	if err != nil {
		_ = reporter.Close()

		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	logger.Debug("client ready", map[string]interface{}{
		"base_url": config.BaseURL,
		"run_id":   reporter.RunID(),
	})

	return &Session{
		Client:   client,
		Logger:   logger,
		Reporter: reporter,
		BaseURL:  config.BaseURL,
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

// withClient runs fn with a session and closes it afterwards.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, session *Session) error) error {
	session, err := CreateClient(cmd)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			session.Logger.Warn("closing run report", map[string]interface{}{"error": closeErr})
		}
	}()

	return fn(commandContext(cmd), session)
}
