package converge

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// Backoff selects how the delay between observations grows.
type Backoff string

// Backoff strategies.
const (
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
	BackoffConstant    Backoff = "constant"
)

// Policy defaults.
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = time.Second
	DefaultMultiplier  = 2.0
)

// ParseBackoff parses a backoff name. The empty string means linear.
func ParseBackoff(s string) (Backoff, error) {
	switch Backoff(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackoffLinear:
		return BackoffLinear, nil
	case BackoffExponential:
		return BackoffExponential, nil
	case BackoffConstant:
		return BackoffConstant, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackoff, s)
	}
}

// Policy bounds one convergence run. It is a plain value; zero fields take
// the defaults.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     Backoff
	Multiplier  float64
	MaxDelay    time.Duration
}

// DefaultPolicy returns five linear attempts one second apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Backoff:     BackoffLinear,
		Multiplier:  DefaultMultiplier,
	}
}

// PolicyFromConfig builds a Policy from client configuration.
func PolicyFromConfig(cfg petstore.ConvergenceConfig) (Policy, error) {
	backoff, err := ParseBackoff(cfg.Backoff)
	if err != nil {
		return Policy{}, err
	}

	policy := Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Backoff:     backoff,
		Multiplier:  cfg.Multiplier,
		MaxDelay:    cfg.MaxDelay,
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}

	return policy.withDefaults(), nil
}

// Validate rejects negative settings.
func (p Policy) Validate() error {
	if p.MaxAttempts < 0 {
		return fmt.Errorf("%w: max attempts %d", ErrInvalidPolicy, p.MaxAttempts)
	}

	if p.BaseDelay < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("%w: negative delay", ErrInvalidPolicy)
	}

	if p.Multiplier < 0 {
		return fmt.Errorf("%w: multiplier %v", ErrInvalidPolicy, p.Multiplier)
	}

	if _, err := ParseBackoff(string(p.Backoff)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}

	return nil
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}

	if p.BaseDelay == 0 {
		p.BaseDelay = DefaultBaseDelay
	}

	if p.Backoff == "" {
		p.Backoff = BackoffLinear
	}

	if p.Multiplier == 0 {
		p.Multiplier = DefaultMultiplier
	}

	return p
}

// Delay returns the pause after the given number of attempts (n >= 1).
//
//	linear:      BaseDelay * n
//	exponential: BaseDelay * Multiplier^(n-1)
//	constant:    BaseDelay
//
// The result is capped at MaxDelay when MaxDelay is set.
func (p Policy) Delay(attempt int) time.Duration {
	p = p.withDefaults()
	if attempt < 1 {
		attempt = 1
	}

	var delay time.Duration

	switch p.Backoff {
	case BackoffConstant:
		delay = p.BaseDelay
	case BackoffExponential:
		factor := math.Pow(p.Multiplier, float64(attempt-1))

		scaled := float64(p.BaseDelay) * factor
		if scaled >= math.MaxInt64 {
			delay = time.Duration(math.MaxInt64)
		} else {
			delay = time.Duration(scaled)
		}
	default:
		delay = p.BaseDelay * time.Duration(attempt)
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}

	return delay
}

// Budget returns the total sleep a run that never converges incurs.
func (p Policy) Budget() time.Duration {
	p = p.withDefaults()

	var total time.Duration
	for attempt := 1; attempt < p.MaxAttempts; attempt++ {
		total += p.Delay(attempt)
	}

	return total
}
