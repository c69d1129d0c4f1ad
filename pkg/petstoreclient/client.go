// Package petstoreclient provides the main entry point for creating pet-store API clients
package petstoreclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/petstore-client/internal/client"
	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// New creates a new pet-store API client.
func New(ctx context.Context, config *petstore.Config) (petstore.Client, error) {
	if config == nil {
		return nil, petstore.ErrConfigRequired
	}

	baseURL, err := NormalizeBaseURL(config.BaseURL)
	if err != nil {
		return nil, err
	}

	config.BaseURL = baseURL

	if config.UserAgent == "" {
		config.UserAgent = constants.DefaultUserAgent
	}

	// Use the internal client implementation
	client, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// NormalizeBaseURL trims a trailing slash and defaults the scheme to https.
func NormalizeBaseURL(raw string) (string, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(raw), "/")
	if baseURL == "" {
		return "", petstore.ErrBaseURLRequired
	}

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("%w: %s", petstore.ErrNoHostInURL, raw)
	}

	return baseURL, nil
}

// NewWithEndpoint creates a new client with just a base URL (no API key).
func NewWithEndpoint(ctx context.Context, baseURL string) (petstore.Client, error) {
	return New(ctx, &petstore.Config{
		BaseURL: baseURL,
	})
}

// NewWithAPIKey creates a new client with a base URL and API key.
func NewWithAPIKey(ctx context.Context, baseURL, apiKey string) (petstore.Client, error) {
	return New(ctx, &petstore.Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
	})
}

// NewPublic creates a client for the public demo store with its shared key.
func NewPublic(ctx context.Context) (petstore.Client, error) {
	return NewWithAPIKey(ctx, constants.DefaultBaseURL, constants.DefaultAPIKey)
}
