package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/petstore-client/pkg/converge"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// TestConvergence polls quickly so tests against lagging fakes stay fast.
var TestConvergence = petstore.ConvergenceConfig{
	MaxAttempts: 5,
	BaseDelay:   time.Millisecond,
	Backoff:     "constant",
}

// NewTestClient creates a client against baseURL with fast convergence.
func NewTestClient(t *testing.T, baseURL string, opts ...converge.Option) *Client {
	t.Helper()

	client, err := New(context.Background(), &petstore.Config{
		BaseURL:     baseURL,
		APIKey:      "special-key",
		Convergence: TestConvergence,
	}, opts...)
	require.NoError(t, err)

	return client
}

// TestGetOperation represents a generic get operation test case.
type TestGetOperation[TResponse any] struct {
	Name         string
	ID           int64
	ExpectedPath string
	StatusCode   int
	Response     interface{}
	WantErr      bool
	ErrMessage   string
}

// RunGetTests runs a series of get operation tests against a canned server.
func RunGetTests[TResponse any](
	t *testing.T,
	tests []TestGetOperation[TResponse],
	getFunc func(*Client) func(context.Context, int64) (*TResponse, error),
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, http.MethodGet, request.Method)

				writer.Header().Set("Content-Type", "application/json")
				writer.WriteHeader(testCase.StatusCode)

				if testCase.Response != nil {
					_ = json.NewEncoder(writer).Encode(testCase.Response)
				}
			}))
			defer server.Close()

			client := NewTestClient(t, server.URL)

			result, err := getFunc(client)(context.Background(), testCase.ID)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}

				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
			}
		})
	}
}

// TestDeleteOperation represents a generic delete operation test case.
type TestDeleteOperation struct {
	Name         string
	ID           int64
	ExpectedPath string
	StatusCode   int
	WantErr      bool
	ErrMessage   string
}

// RunDeleteTests runs a series of delete operation tests against a canned server.
func RunDeleteTests(
	t *testing.T,
	tests []TestDeleteOperation,
	deleteFunc func(*Client) func(context.Context, int64) error,
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, http.MethodDelete, request.Method)

				writer.Header().Set("Content-Type", "application/json")
				writer.WriteHeader(testCase.StatusCode)
				_ = json.NewEncoder(writer).Encode(petstore.APIResponse{
					Code:    testCase.StatusCode,
					Type:    "unknown",
					Message: http.StatusText(testCase.StatusCode),
				})
			}))
			defer server.Close()

			client := NewTestClient(t, server.URL)

			err := deleteFunc(client)(context.Background(), testCase.ID)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}
