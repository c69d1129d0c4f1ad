package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/fivetwenty-io/petstore-client/internal/client"
	"github.com/fivetwenty-io/petstore-client/pkg/converge"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	events []petstore.ConvergenceEvent
}

func (r *recordingReporter) Report(_ context.Context, event petstore.ConvergenceEvent) error {
	r.events = append(r.events, event)

	return nil
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &petstore.Config{})
		require.ErrorIs(t, err, ErrBaseURLRequired)
	})

	t.Run("creates client with API key", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &petstore.Config{
			BaseURL: "https://petstore.example.com/v2",
			APIKey:  "special-key",
		})
		require.NoError(t, err)
		assert.NotNil(t, client.Pets())
		assert.NotNil(t, client.Store())
		assert.NotNil(t, client.Users())
		assert.NotNil(t, client.Sender())
		assert.Equal(t, "special-key", client.Credentials().Get().APIKey)
		assert.Equal(t, "https://petstore.example.com/v2", client.BaseURL())
	})

	t.Run("applies convergence settings", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &petstore.Config{
			BaseURL: "https://petstore.example.com/v2",
			Convergence: petstore.ConvergenceConfig{
				MaxAttempts: 7,
				Backoff:     "exponential",
			},
		})
		require.NoError(t, err)

		policy := client.Executor().Policy()
		assert.Equal(t, 7, policy.MaxAttempts)
		assert.Equal(t, converge.BackoffExponential, policy.Backoff)
	})

	t.Run("rejects unknown backoff", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &petstore.Config{
			BaseURL:     "https://petstore.example.com/v2",
			Convergence: petstore.ConvergenceConfig{Backoff: "fibonacci"},
		})
		require.ErrorIs(t, err, converge.ErrUnknownBackoff)
	})

	t.Run("sends credentials", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "special-key", request.Header.Get("api_key"))

			cookie, err := request.Cookie("JSESSIONID")
			assert.NoError(t, err)

			if err == nil {
				assert.Equal(t, "abc", cookie.Value)
			}

			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"available":1}`))
		}))
		defer server.Close()

		client, err := New(context.Background(), &petstore.Config{
			BaseURL:   server.URL,
			APIKey:    "special-key",
			SessionID: "abc",
		})
		require.NoError(t, err)

		inventory, err := client.Store().Inventory(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, inventory["available"])
	})
}

func TestNew_ReportsConvergence(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusNotFound)

		_, _ = writer.Write([]byte(`{"code":1,"type":"error","message":"Pet not found"}`))
	}))
	defer server.Close()

	reporter := &recordingReporter{}

	client, err := New(context.Background(), &petstore.Config{
		BaseURL:     server.URL,
		Reporter:    reporter,
		Convergence: TestConvergence,
	})
	require.NoError(t, err)

	require.NoError(t, client.Pets().DeleteUntilAbsent(context.Background(), 42))

	require.Len(t, reporter.events, 1)
	assert.Equal(t, converge.OperationDelete, reporter.events[0].Operation)
	assert.Equal(t, petstore.PetRef(42), reporter.events[0].Ref)
	assert.Equal(t, 1, reporter.events[0].Attempts)
}
