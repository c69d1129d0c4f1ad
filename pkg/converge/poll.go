package converge

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// FetchFunc performs one side-effect-free observation.
type FetchFunc func(ctx context.Context) Outcome

// SleepFunc suspends the calling goroutine for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d, returning early with the context error on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting %s between observations: %w", d, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// PollUntil invokes fetch until predicate accepts its outcome.
//
// A Fatal outcome aborts at once with a *FatalHTTPError or *TransportError.
// Between attempts it sleeps policy.Delay(n); there is no sleep after the
// last attempt. When attempts run out it returns the last outcome together
// with a *ConvergenceTimeout.
func PollUntil(ctx context.Context, fetch FetchFunc, predicate Predicate, policy Policy) (Outcome, error) {
	run := poller{sleep: Sleep, logger: nopLogger{}}
	outcome, _, err := run.poll(ctx, fetch, predicate, policy, target{operation: "poll"})

	return outcome, err
}

type poller struct {
	sleep  SleepFunc
	logger petstore.Logger
}

func (p poller) poll(
	ctx context.Context,
	fetch FetchFunc,
	predicate Predicate,
	policy Policy,
	subject target,
) (Outcome, int, error) {
	if fetch == nil {
		return Outcome{}, 0, ErrNilFetch
	}

	if predicate == nil {
		predicate = Visible
	}

	if err := policy.Validate(); err != nil {
		return Outcome{}, 0, err
	}

	policy = policy.withDefaults()

	var last Outcome

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return last, attempt - 1, fmt.Errorf("%s: %w", subject.describe(), err)
		}

		last = fetch(ctx)

		p.logger.Debug("Convergence attempt", map[string]interface{}{
			"operation": subject.operation,
			"target":    subject.describe(),
			"attempt":   attempt,
			"outcome":   last.Kind.String(),
			"status":    last.StatusCode,
		})

		if last.Kind == OutcomeFatal {
			return last, attempt, subject.fail(last)
		}

		if predicate(last) {
			return last, attempt, nil
		}

		if attempt == policy.MaxAttempts {
			break
		}

		if err := p.sleep(ctx, policy.Delay(attempt)); err != nil {
			return last, attempt, fmt.Errorf("%s: %w", subject.describe(), err)
		}
	}

	return last, policy.MaxAttempts, subject.timeout(policy.MaxAttempts, last)
}
