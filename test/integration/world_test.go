//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/petstore-client/internal/testdata"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

var errNoTarget = errors.New("no store target")

// world is the state one scenario builds up.
type world struct {
	config    *TestConfig
	target    *Target
	generator *testdata.Generator
	cleanup   []func(ctx context.Context)

	draft     *petstore.Pet
	pet       *petstore.Pet
	pets      []petstore.Pet
	statuses  []petstore.PetStatus
	upload    string
	order     *petstore.Order
	placed    *petstore.Order
	inventory petstore.Inventory
	user      *petstore.User
	users     []petstore.User
	session   *petstore.LoginSession
	response  *petstore.APIResponse
	err       error
}

func newWorld(config *TestConfig) *world {
	return &world{config: config}
}

func (w *world) before(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
	target, err := w.config.NewTarget(ctx)
	if err != nil {
		return ctx, err
	}

	w.target = target
	w.generator = testdata.New(0)

	return ctx, nil
}

func (w *world) after(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
	for i := len(w.cleanup) - 1; i >= 0; i-- {
		w.cleanup[i](ctx)
	}

	if w.target != nil {
		w.target.Close()
	}

	return ctx, err
}

func (w *world) client() petstore.Client {
	return w.target.Client
}

func (w *world) deferCleanup(fn func(ctx context.Context)) {
	w.cleanup = append(w.cleanup, fn)
}

func (w *world) registerCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the Pet Store API is available$`, w.apiIsAvailable)
	sc.Step(`^I should receive a (\d+) Not Found error$`, w.shouldReceiveStatus)
	sc.Step(`^the response should contain error message "([^"]*)"$`, w.responseShouldContainError)
}

func (w *world) apiIsAvailable(ctx context.Context) error {
	if w.target == nil {
		return errNoTarget
	}

	_, err := w.client().Store().Inventory(ctx)
	if err != nil {
		return fmt.Errorf("store is not reachable: %w", err)
	}

	return nil
}

func (w *world) shouldReceiveStatus(status int) error {
	if w.err == nil {
		return fmt.Errorf("expected a %d error, got success", status)
	}

	return assertExpectedAndActual(assert.Equal, status, petstore.StatusCode(w.err), "error: %v", w.err)
}

func (w *world) responseShouldContainError(message string) error {
	var apiErr *petstore.APIError
	if !errors.As(w.err, &apiErr) {
		return fmt.Errorf("expected an API error, got %v", w.err)
	}

	return assertActual(assert.True, strings.Contains(apiErr.Message, message),
		"message %q does not contain %q", apiErr.Message, message)
}

// rowsToMap reads a two-column table of keys and values.
func rowsToMap(table *godog.Table) map[string]string {
	values := make(map[string]string, len(table.Rows))

	for _, row := range table.Rows {
		if len(row.Cells) < 2 {
			continue
		}

		values[strings.TrimSpace(row.Cells[0].Value)] = strings.TrimSpace(row.Cells[1].Value)
	}

	return values
}

// expectedAndActualAssertion matches testify's two-value assertions.
type expectedAndActualAssertion func(t assert.TestingT, expected, actual interface{}, msgAndArgs ...interface{}) bool

// actualAssertion matches testify's single-value assertions.
type actualAssertion func(t assert.TestingT, actual bool, msgAndArgs ...interface{}) bool

func assertExpectedAndActual(a expectedAndActualAssertion, expected, actual interface{}, msgAndArgs ...interface{}) error {
	var t asserter

	a(&t, expected, actual, msgAndArgs...)

	return t.err
}

func assertActual(a actualAssertion, actual bool, msgAndArgs ...interface{}) error {
	var t asserter

	a(&t, actual, msgAndArgs...)

	return t.err
}

// asserter turns testify failures into step errors.
type asserter struct {
	err error
}

func (a *asserter) Errorf(format string, args ...interface{}) {
	a.err = fmt.Errorf(format, args...)
}
