package converge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

func TestPolicy_Delay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		policy   Policy
		expected []time.Duration
	}{
		{
			name:     "linear",
			policy:   Policy{BaseDelay: time.Second, Backoff: BackoffLinear},
			expected: []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second},
		},
		{
			name:     "exponential",
			policy:   Policy{BaseDelay: time.Second, Backoff: BackoffExponential},
			expected: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second},
		},
		{
			name:     "exponential with multiplier",
			policy:   Policy{BaseDelay: 100 * time.Millisecond, Backoff: BackoffExponential, Multiplier: 3},
			expected: []time.Duration{100 * time.Millisecond, 300 * time.Millisecond, 900 * time.Millisecond},
		},
		{
			name:     "constant",
			policy:   Policy{BaseDelay: 500 * time.Millisecond, Backoff: BackoffConstant},
			expected: []time.Duration{500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond},
		},
		{
			name:     "capped",
			policy:   Policy{BaseDelay: time.Second, Backoff: BackoffExponential, MaxDelay: 3 * time.Second},
			expected: []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second},
		},
		{
			name:     "zero policy is linear one second",
			policy:   Policy{},
			expected: []time.Duration{time.Second, 2 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for i, want := range tt.expected {
				assert.Equal(t, want, tt.policy.Delay(i+1), "attempt %d", i+1)
			}
		})
	}
}

func TestPolicy_DelayHugeExponentDoesNotOverflow(t *testing.T) {
	t.Parallel()

	policy := Policy{BaseDelay: time.Hour, Backoff: BackoffExponential, Multiplier: 10}
	assert.Positive(t, policy.Delay(40))
}

func TestPolicy_Budget(t *testing.T) {
	t.Parallel()

	policy := Policy{MaxAttempts: 3, BaseDelay: time.Second}
	assert.Equal(t, 3*time.Second, policy.Budget())
	assert.Equal(t, 10*time.Second, DefaultPolicy().Budget())
}

func TestPolicy_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultPolicy().Validate())
	require.NoError(t, Policy{}.Validate())
	require.ErrorIs(t, Policy{MaxAttempts: -1}.Validate(), ErrInvalidPolicy)
	require.ErrorIs(t, Policy{BaseDelay: -time.Second}.Validate(), ErrInvalidPolicy)
	require.ErrorIs(t, Policy{Multiplier: -2}.Validate(), ErrInvalidPolicy)
	require.ErrorIs(t, Policy{Backoff: "fibonacci"}.Validate(), ErrUnknownBackoff)
}

func TestPolicyFromConfig(t *testing.T) {
	t.Parallel()

	policy, err := PolicyFromConfig(petstore.ConvergenceConfig{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Backoff:     "Exponential",
	})
	require.NoError(t, err)
	assert.Equal(t, Policy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Backoff:     BackoffExponential,
		Multiplier:  DefaultMultiplier,
	}, policy)

	policy, err = PolicyFromConfig(petstore.ConvergenceConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), policy)

	_, err = PolicyFromConfig(petstore.ConvergenceConfig{Backoff: "random"})
	require.ErrorIs(t, err, ErrUnknownBackoff)
}
