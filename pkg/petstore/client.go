package petstore

import (
	"context"
	"io"
	"time"
)

// PetsClient defines operations for pets.
type PetsClient interface {
	Add(ctx context.Context, pet *Pet) (*Pet, error)
	Update(ctx context.Context, pet *Pet) (*Pet, error)
	UpdateWithForm(ctx context.Context, id int64, name string, status PetStatus) (*APIResponse, error)
	Get(ctx context.Context, id int64) (*Pet, error)
	FindByStatus(ctx context.Context, statuses ...PetStatus) ([]Pet, error)
	Delete(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, id int64, filename string, content io.Reader, metadata string) (*APIResponse, error)

	// Convergent variants wait until the store reflects the change.
	AddUntilVisible(ctx context.Context, pet *Pet) (*Pet, error)
	UpdateUntilReflected(ctx context.Context, pet *Pet) (*Pet, error)
	UpdateWithFormUntilReflected(ctx context.Context, id int64, name string, status PetStatus) (*Pet, error)
	DeleteUntilAbsent(ctx context.Context, id int64) error
}

// StoreClient defines operations for the store inventory and orders.
type StoreClient interface {
	Inventory(ctx context.Context) (Inventory, error)
	PlaceOrder(ctx context.Context, order *Order) (*Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	DeleteOrder(ctx context.Context, id int64) error

	PlaceOrderUntilVisible(ctx context.Context, order *Order) (*Order, error)
	DeleteOrderUntilAbsent(ctx context.Context, id int64) error
}

// UsersClient defines operations for users.
type UsersClient interface {
	Create(ctx context.Context, user *User) (*APIResponse, error)
	CreateWithArray(ctx context.Context, users []User) (*APIResponse, error)
	CreateWithList(ctx context.Context, users []User) (*APIResponse, error)
	Get(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, username string, user *User) (*APIResponse, error)
	Delete(ctx context.Context, username string) error
	Login(ctx context.Context, username, password string) (*LoginSession, error)
	Logout(ctx context.Context) (*APIResponse, error)

	CreateUntilVisible(ctx context.Context, user *User) (*User, error)
	UpdateUntilReflected(ctx context.Context, username string, user *User) (*User, error)
	DeleteUntilAbsent(ctx context.Context, username string) error
}

// Client is the main interface for the pet-store API.
type Client interface {
	Pets() PetsClient
	Store() StoreClient
	Users() UsersClient

	// Sender exposes the underlying transport for raw calls.
	Sender() Sender
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ConvergenceEvent summarises one convergent operation.
type ConvergenceEvent struct {
	Operation string
	Ref       Ref
	Attempts  int
	Outcome   string
	Status    int
	Duration  time.Duration
	Err       error
	Time      time.Time
}

// Reporter receives convergence events. Reporting is best effort: a
// Reporter error is logged by the caller and never fails the operation.
type Reporter interface {
	Report(ctx context.Context, event ConvergenceEvent) error
}

// ConvergenceConfig tunes how long convergent operations keep observing the
// store after a mutation. Zero values fall back to defaults.
type ConvergenceConfig struct {
	// MaxAttempts: number of observation reads before giving up (default 5).
	MaxAttempts int
	// BaseDelay: delay unit between reads (default 1s).
	BaseDelay time.Duration
	// Backoff: "linear" (default), "exponential" or "constant".
	Backoff string
	// Multiplier: growth factor for exponential backoff (default 2).
	Multiplier float64
	// MaxDelay: cap on a single delay; zero means uncapped.
	MaxDelay time.Duration
}

// Config represents client configuration for building a petstore.Client.
//
// # Credentials
//
// APIKey is sent as the "api_key" header on every request and SessionID, when
// set, as the JSESSIONID cookie. No other authentication is performed.
//
// # Retries
//
// RetryMax applies to GET requests only; mutating requests are sent exactly
// once so a convergent operation never mutates the store twice. Observation
// after a mutation is governed by Convergence, not by RetryMax.
type Config struct {
	// BaseURL: store root including the API version path
	// (e.g., "https://petstore.swagger.io/v2"). petstoreclient.New trims a
	// trailing slash and adds "https://" if no scheme is present.
	BaseURL string
	// APIKey: value of the api_key header.
	APIKey string
	// SessionID: optional JSESSIONID cookie value.
	SessionID string
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// HTTPTimeout: per-attempt timeout of the underlying http.Client.
	HTTPTimeout time.Duration
	// RetryMax: retries of idempotent reads on 429/5xx/connection errors.
	// Zero disables transport retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between transport retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between transport retries.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by all layers.
	Logger Logger
	// Reporter: optional sink for convergence events.
	Reporter Reporter
	// Convergence: observation policy of the convergent operations.
	Convergence ConvergenceConfig
}
