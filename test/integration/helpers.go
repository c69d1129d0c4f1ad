//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/petstore-client/internal/client"
	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/internal/fakestore"
	"github.com/fivetwenty-io/petstore-client/internal/logging"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	BaseURL   string
	APIKey    string
	Offline   bool
	Lag       int
	Attempts  int
	Delay     time.Duration
	Verbose   bool
	ReportDir string
	CLIPath   string
}

// LoadTestConfig reads PETSTORE_* variables, after loading a .env file
// from the repository root when one exists.
func LoadTestConfig() *TestConfig {
	_ = godotenv.Load(filepath.Join("..", "..", ".env"))

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("base_url", constants.DefaultBaseURL)
	v.SetDefault("api_key", constants.DefaultAPIKey)
	v.SetDefault("lag", 2)
	v.SetDefault("attempts", constants.DefaultConvergenceAttempts)
	v.SetDefault("delay", constants.DefaultConvergenceDelay)

	config := &TestConfig{
		BaseURL:  v.GetString("base_url"),
		APIKey:   v.GetString("api_key"),
		Offline:  v.GetBool("offline"),
		Lag:      v.GetInt("lag"),
		Attempts: v.GetInt("attempts"),
		Delay:    v.GetDuration("delay"),
		Verbose:  v.GetBool("verbose"),
		CLIPath:  cliPath(v.GetString("cli_path")),
	}

	if config.Offline {
		config.Delay = constants.QuickPollInterval
	}

	return config
}

// cliPath locates the petstore binary, falling back to PATH.
func cliPath(configured string) string {
	if configured != "" {
		return configured
	}

	for _, candidate := range []string{"../../petstore", "../../bin/petstore", "./petstore"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "petstore"
}

// SkipIfNoTarget skips the test unless a live store is configured or
// offline mode is enabled.
func (c *TestConfig) SkipIfNoTarget(t *testing.T) {
	t.Helper()

	if !c.Offline && os.Getenv(constants.EnvPrefix+"_BASE_URL") == "" {
		t.Skip(constants.EnvPrefix + "_BASE_URL not set and offline mode disabled, skipping integration test")
	}
}

// SkipIfMissingCLI skips the test when the petstore binary cannot be found.
func (c *TestConfig) SkipIfMissingCLI(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(c.CLIPath); err != nil {
		t.Skipf("petstore binary not found at %s, skipping integration test", c.CLIPath)
	}
}

// CommandRunner runs the petstore binary against one base URL with an
// isolated home directory.
type CommandRunner struct {
	config  *TestConfig
	t       *testing.T
	baseURL string
	home    string
}

// NewCommandRunner creates a runner targeting baseURL.
func NewCommandRunner(config *TestConfig, t *testing.T, baseURL string) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:  config,
		t:       t,
		baseURL: baseURL,
		home:    t.TempDir(),
	}
}

// Run executes a petstore command and returns its output.
func (r *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return r.RunWithInput("", args...)
}

// RunWithInput executes a petstore command with the given stdin.
func (r *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	full := append([]string{
		"--base-url", r.baseURL,
		"--api-key", r.config.APIKey,
		"--attempts", strconv.Itoa(r.config.Attempts),
		"--delay", r.config.Delay.String(),
	}, args...)

	cmd := exec.Command(r.config.CLIPath, full...) //nolint:gosec // Binary path comes from test configuration
	cmd.Env = append(os.Environ(), "HOME="+r.home)
	cmd.Stdin = strings.NewReader(input)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if r.config.Verbose {
		r.t.Logf("Running: %s %s", r.config.CLIPath, strings.Join(full, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if r.config.Verbose && err != nil {
		r.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// ConfigPath is the config file written by commands run through r.
func (r *CommandRunner) ConfigPath() string {
	return filepath.Join(r.home, ".petstore", "config.yml")
}

// GenerateTestName creates a unique test resource name.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// AssertJSONOutput verifies command output is valid JSON.
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	if !json.Valid([]byte(strings.TrimSpace(output))) {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

// Target is the store one scenario runs against.
type Target struct {
	Client  *client.Client
	BaseURL string
	store   *fakestore.Server
}

// Close stops the in-process store, if any.
func (t *Target) Close() {
	if t.store != nil {
		t.store.Close()
	}
}

// NewTarget connects to the configured store, starting an in-process one
// in offline mode.
func (c *TestConfig) NewTarget(ctx context.Context) (*Target, error) {
	target := &Target{}
	baseURL := c.BaseURL

	if c.Offline {
		target.store = fakestore.New(fakestore.WithLag(c.Lag), fakestore.WithAPIKey(c.APIKey))
		baseURL = target.store.BaseURL()
	}

	config := &petstore.Config{
		BaseURL:     baseURL,
		APIKey:      c.APIKey,
		HTTPTimeout: constants.ShortHTTPTimeout,
		UserAgent:   constants.DefaultUserAgent,
		Convergence: petstore.ConvergenceConfig{
			MaxAttempts: c.Attempts,
			BaseDelay:   c.Delay,
		},
	}

	if c.Verbose {
		logger, err := logging.New(os.Stderr, logging.Options{Level: "debug"})
		if err != nil {
			return nil, err
		}

		config.Logger = logger
	}

	cl, err := client.New(ctx, config)
	if err != nil {
		target.Close()

		return nil, fmt.Errorf("creating client: %w", err)
	}

	target.Client = cl
	target.BaseURL = baseURL

	return target, nil
}
