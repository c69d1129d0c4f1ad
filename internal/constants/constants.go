package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// ReportFilePerm is the permission for run report files.
	ReportFilePerm = 0644
)

// Endpoints and credentials.
const (
	// DefaultBaseURL is the public pet-store API root.
	DefaultBaseURL = "https://petstore.swagger.io/v2"

	// DefaultAPIKey is the key the public store accepts.
	DefaultAPIKey = "special-key"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "petstore-client/1.0"

	// EnvPrefix prefixes every environment variable read by the CLI.
	EnvPrefix = "PETSTORE"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Transport retries. They apply to reads only.
const (
	// DefaultRetryMax is the default maximum number of read retries.
	DefaultRetryMax = 0

	// LowRetryMax is used when reads should ride out brief outages.
	LowRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Convergence defaults.
const (
	// DefaultConvergenceAttempts is the number of observation reads.
	DefaultConvergenceAttempts = 5

	// DefaultConvergenceDelay is the delay unit between observations.
	DefaultConvergenceDelay = time.Second

	// DefaultConvergenceBackoff names the default backoff strategy.
	DefaultConvergenceBackoff = "linear"

	// QuickPollInterval is used for fast polling in tests.
	QuickPollInterval = 10 * time.Millisecond
)

// Reporting.
const (
	// DefaultReportSubjectPrefix prefixes NATS subjects of run events.
	DefaultReportSubjectPrefix = "petstore.convergence"

	// ReportFlushTimeout bounds how long closing a reporter waits.
	ReportFlushTimeout = 5 * time.Second
)

// Test data.
const (
	// MaxOrderQuantity bounds generated order quantities.
	MaxOrderQuantity = 10

	// UsernameSuffixLength is the number of uuid characters added to
	// generated usernames.
	UsernameSuffixLength = 8
)
