package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/petstore-client/internal/auth"
	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/internal/http"
	"github.com/fivetwenty-io/petstore-client/pkg/converge"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// Static errors for err113 compliance.
var (
	ErrBaseURLRequired = errors.New("base URL is required")
	ErrIDRequired      = errors.New("resource id is required")
)

// Client implements the petstore.Client interface.
type Client struct {
	httpClient  *http.Client
	executor    *converge.Executor
	credentials *auth.Store
	baseURL     string
	logger      petstore.Logger

	pets  *PetsClient
	store *StoreClient
	users *UsersClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *petstore.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// createExecutorOptions builds convergence options from config.
func createExecutorOptions(config *petstore.Config) ([]converge.Option, error) {
	policy, err := converge.PolicyFromConfig(config.Convergence)
	if err != nil {
		return nil, fmt.Errorf("reading convergence settings: %w", err)
	}

	opts := []converge.Option{converge.WithPolicy(policy)}

	if config.Logger != nil {
		opts = append(opts, converge.WithLogger(config.Logger))
	}

	if config.Reporter != nil {
		opts = append(opts, converge.WithReporter(config.Reporter))
	}

	return opts, nil
}

// New creates a new pet-store client.
func New(_ context.Context, config *petstore.Config, extra ...converge.Option) (*Client, error) {
	if config.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}

	credentials := auth.NewStore(auth.Credentials{APIKey: config.APIKey, SessionID: config.SessionID})
	httpClient := http.NewClient(config.BaseURL, credentials, createHTTPClientOptions(config)...)

	execOpts, err := createExecutorOptions(config)
	if err != nil {
		return nil, err
	}

	executor, err := converge.New(httpClient, append(execOpts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("creating executor: %w", err)
	}

	client := &Client{
		httpClient:  httpClient,
		executor:    executor,
		credentials: credentials,
		baseURL:     config.BaseURL,
		logger:      config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.pets = NewPetsClient(c.httpClient, c.executor)
	c.store = NewStoreClient(c.httpClient, c.executor)
	c.users = NewUsersClient(c.httpClient, c.executor)
}

// Pets implements petstore.Client.Pets.
func (c *Client) Pets() petstore.PetsClient {
	return c.pets
}

// Store implements petstore.Client.Store.
func (c *Client) Store() petstore.StoreClient {
	return c.store
}

// Users implements petstore.Client.Users.
func (c *Client) Users() petstore.UsersClient {
	return c.users
}

// Sender implements petstore.Client.Sender.
func (c *Client) Sender() petstore.Sender {
	return c.httpClient
}

// Executor returns the convergence executor shared by the resource clients.
func (c *Client) Executor() *converge.Executor {
	return c.executor
}

// Credentials returns the credential store attached to every request.
func (c *Client) Credentials() *auth.Store {
	return c.credentials
}

// BaseURL returns the store root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}
