package converge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// Operation names used in errors, logs and events.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationPoll   = "poll"
)

// Resource is a resource as last fetched by a convergence run.
type Resource struct {
	Ref      petstore.Ref
	Body     []byte
	Attempts int
}

// Decode unmarshals the fetched body into v.
func (r *Resource) Decode(v interface{}) error {
	return Success(r.Body).Decode(v)
}

// UpdateMode selects the update mechanism.
type UpdateMode int

// Update mechanisms.
const (
	// UpdateReplace sends the full resource with PUT.
	UpdateReplace UpdateMode = iota
	// UpdateForm sends form-encoded fields with POST; pets only.
	UpdateForm
)

// Mutation describes one update and the state it should produce.
type Mutation struct {
	Mode    UpdateMode
	Payload interface{}
	Form    map[string]string
	// Expect overrides the fields that must be observed after the update.
	// By default every field sent is expected back.
	Expect map[string]interface{}
}

// Replace returns a full-resource update.
func Replace(payload interface{}) Mutation {
	return Mutation{Mode: UpdateReplace, Payload: payload}
}

// FormFields returns a partial form-encoded update.
func FormFields(fields map[string]string) Mutation {
	return Mutation{Mode: UpdateForm, Form: fields}
}

// Expecting returns a copy of m that waits for fields instead of the
// fields sent.
func (m Mutation) Expecting(fields map[string]interface{}) Mutation {
	m.Expect = fields
	return m
}

// Executor runs one mutation and then observes the store until it reflects
// the mutation. It is safe for concurrent use.
type Executor struct {
	sender   petstore.Sender
	logger   petstore.Logger
	reporter petstore.Reporter
	sleep    SleepFunc
	policy   Policy
	now      func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(logger petstore.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReporter sets the sink for run events.
func WithReporter(reporter petstore.Reporter) Option {
	return func(e *Executor) {
		e.reporter = reporter
	}
}

// WithSleeper replaces the suspension between attempts.
func WithSleeper(sleep SleepFunc) Option {
	return func(e *Executor) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// WithPolicy sets the policy used when a call passes the zero Policy.
func WithPolicy(policy Policy) Option {
	return func(e *Executor) {
		e.policy = policy.withDefaults()
	}
}

// WithClock sets the time source used for event timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Executor sending requests through sender.
func New(sender petstore.Sender, opts ...Option) (*Executor, error) {
	if sender == nil {
		return nil, ErrNilSender
	}

	executor := &Executor{
		sender: sender,
		logger: nopLogger{},
		sleep:  Sleep,
		policy: DefaultPolicy(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor, nil
}

// Policy returns the default policy of the executor.
func (e *Executor) Policy() Policy {
	return e.policy
}

// CreateUntilVisible creates a resource once and waits until it can be
// fetched. A non-200 create is fatal and never retried.
func (e *Executor) CreateUntilVisible(ctx context.Context, kind petstore.Kind, payload interface{}, policy Policy) (*Resource, error) {
	start := e.now()
	subject := target{operation: OperationCreate, kind: kind}

	route, err := kind.Route()
	if err != nil {
		return nil, err
	}

	resp, err := e.sender.Send(ctx, &petstore.Request{
		Method: http.MethodPost,
		Path:   route.Collection,
		Body:   payload,
	})

	created := ClassifyMutation(resp, err)
	if created.Kind != OutcomeSuccess {
		return nil, e.finish(ctx, subject, 0, created, start, subject.fail(created))
	}

	ref, err := identify(kind, payload, created.Body)
	if err != nil {
		err = fmt.Errorf("%s %s: %w", OperationCreate, kind, err)
		return nil, e.finish(ctx, subject, 0, created, start, err)
	}

	subject.ref = ref

	last, attempts, err := e.poller().poll(ctx, e.Fetcher(ref), Visible, e.resolve(policy), subject)
	if err = e.finish(ctx, subject, attempts, last, start, err); err != nil {
		return nil, err
	}

	return &Resource{Ref: ref, Body: last.Body, Attempts: attempts}, nil
}

// DeleteUntilAbsent deletes a resource once and waits until fetching it
// yields 404. A 404 on the delete itself counts as success.
func (e *Executor) DeleteUntilAbsent(ctx context.Context, ref petstore.Ref, policy Policy) error {
	start := e.now()
	subject := target{operation: OperationDelete, kind: ref.Kind, ref: ref}

	route, err := routeFor(ref)
	if err != nil {
		return err
	}

	resp, err := e.sender.Send(ctx, &petstore.Request{
		Method:     http.MethodDelete,
		Path:       route.Item,
		PathParams: ref.PathParams(),
	})

	deleted := ClassifyDelete(resp, err)
	if deleted.Kind == OutcomeFatal {
		return e.finish(ctx, subject, 0, deleted, start, subject.fail(deleted))
	}

	last, attempts, err := e.poller().poll(ctx, e.Fetcher(ref), Absent, e.resolve(policy), subject)

	return e.finish(ctx, subject, attempts, last, start, err)
}

// UpdateUntilReflected applies one update and waits until every expected
// field reads back with the requested value. It never returns a resource
// that does not reflect the update.
func (e *Executor) UpdateUntilReflected(ctx context.Context, ref petstore.Ref, mutation Mutation, policy Policy) (*Resource, error) {
	start := e.now()
	subject := target{operation: OperationUpdate, kind: ref.Kind, ref: ref}

	route, err := routeFor(ref)
	if err != nil {
		return nil, err
	}

	req, expected, observed, err := buildUpdate(route, ref, mutation)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", subject.describe(), err)
	}

	resp, err := e.sender.Send(ctx, req)

	updated := ClassifyMutation(resp, err)
	if updated.Kind != OutcomeSuccess {
		return nil, e.finish(ctx, subject, 0, updated, start, subject.fail(updated))
	}

	subject.ref = observed

	last, attempts, err := e.poller().poll(ctx, e.Fetcher(observed), FieldsEqual(expected), e.resolve(policy), subject)
	if err = e.finish(ctx, subject, attempts, last, start, err); err != nil {
		return nil, err
	}

	return &Resource{Ref: observed, Body: last.Body, Attempts: attempts}, nil
}

// PollUntil is the package PollUntil using the executor's sleeper, logger,
// reporter and default policy.
func (e *Executor) PollUntil(ctx context.Context, fetch FetchFunc, predicate Predicate, policy Policy) (Outcome, error) {
	start := e.now()
	subject := target{operation: OperationPoll}

	last, attempts, err := e.poller().poll(ctx, fetch, predicate, e.resolve(policy), subject)

	return last, e.finish(ctx, subject, attempts, last, start, err)
}

// Fetcher returns a FetchFunc reading ref by its item route.
func (e *Executor) Fetcher(ref petstore.Ref) FetchFunc {
	return func(ctx context.Context) Outcome {
		route, err := ref.Kind.Route()
		if err != nil {
			return Failed(err)
		}

		return ClassifyRead(e.sender.Send(ctx, &petstore.Request{
			Method:     http.MethodGet,
			Path:       route.Item,
			PathParams: ref.PathParams(),
			NoRetry:    true,
		}))
	}
}

func (e *Executor) poller() poller {
	return poller{sleep: e.sleep, logger: e.logger}
}

func (e *Executor) resolve(policy Policy) Policy {
	if policy == (Policy{}) {
		return e.policy
	}

	return policy
}

// finish logs and reports the end of a run and returns err unchanged.
func (e *Executor) finish(ctx context.Context, subject target, attempts int, last Outcome, start time.Time, err error) error {
	elapsed := e.now().Sub(start)
	fields := map[string]interface{}{
		"operation": subject.operation,
		"target":    subject.describe(),
		"attempts":  attempts,
		"outcome":   last.Kind.String(),
		"status":    last.StatusCode,
		"duration":  elapsed.String(),
	}

	switch {
	case err == nil:
		e.logger.Info("Resource converged", fields)
	case IsTimeout(err):
		fields["error"] = err.Error()
		e.logger.Warn("Resource did not converge", fields)
	default:
		fields["error"] = err.Error()
		e.logger.Error("Convergent operation failed", fields)
	}

	if e.reporter == nil {
		return err
	}

	event := petstore.ConvergenceEvent{
		Operation: subject.operation,
		Ref:       subject.ref,
		Attempts:  attempts,
		Outcome:   last.Kind.String(),
		Status:    last.StatusCode,
		Duration:  elapsed,
		Err:       err,
		Time:      start,
	}
	if event.Ref.Kind == "" {
		event.Ref.Kind = subject.kind
	}

	if reportErr := e.reporter.Report(ctx, event); reportErr != nil {
		e.logger.Warn("Failed to report convergence event", map[string]interface{}{
			"operation": subject.operation,
			"error":     reportErr.Error(),
		})
	}

	return err
}

func routeFor(ref petstore.Ref) (petstore.Route, error) {
	if !ref.Valid() {
		return petstore.Route{}, fmt.Errorf("%w: %+v", petstore.ErrInvalidRef, ref)
	}

	return ref.Kind.Route()
}

// identify extracts the reference of a created resource. Pets and orders
// carry their id in the response; users are keyed by the username sent and
// the store echoes the numeric id as the message.
func identify(kind petstore.Kind, payload interface{}, body []byte) (petstore.Ref, error) {
	if kind.AddressedByName() {
		sent, err := normalize(payload)
		if err != nil {
			return petstore.Ref{}, fmt.Errorf("reading payload: %w", err)
		}

		username, _ := sent["username"].(string)
		if username == "" {
			return petstore.Ref{}, petstore.ErrUsernameRequired
		}

		ref := petstore.Ref{Kind: kind, Name: username}

		if reply, err := decodeObject(body); err == nil {
			if message, ok := reply["message"].(string); ok {
				if id, err := strconv.ParseInt(message, 10, 64); err == nil {
					ref.ID = id
				}
			}
		}

		return ref, nil
	}

	reply, err := decodeObject(body)
	if err != nil {
		return petstore.Ref{}, fmt.Errorf("%w: %w", petstore.ErrMissingIdentifier, err)
	}

	number, ok := reply["id"].(json.Number)
	if !ok {
		return petstore.Ref{}, petstore.ErrMissingIdentifier
	}

	id, err := number.Int64()
	if err != nil || id == 0 {
		return petstore.Ref{}, fmt.Errorf("%w: id %s", petstore.ErrMissingIdentifier, number)
	}

	return petstore.Ref{Kind: kind, ID: id}, nil
}

// buildUpdate returns the update request, the fields expected back and the
// reference to observe afterwards.
func buildUpdate(route petstore.Route, ref petstore.Ref, mutation Mutation) (*petstore.Request, map[string]interface{}, petstore.Ref, error) {
	switch mutation.Mode {
	case UpdateForm:
		if !ref.Kind.SupportsFormUpdate() {
			return nil, nil, ref, fmt.Errorf("%w: form update of %s", ErrUnsupportedUpdate, ref.Kind)
		}

		if len(mutation.Form) == 0 {
			return nil, nil, ref, ErrEmptyMutation
		}

		form := url.Values{}
		expected := make(map[string]interface{}, len(mutation.Form))

		for field, value := range mutation.Form {
			form.Set(field, value)
			expected[field] = value
		}

		req := &petstore.Request{
			Method:     http.MethodPost,
			Path:       route.FormUpdate,
			PathParams: ref.PathParams(),
			Form:       form,
		}

		return req, expectation(mutation, expected), ref, nil

	case UpdateReplace:
		if mutation.Payload == nil {
			return nil, nil, ref, ErrEmptyMutation
		}

		body, err := normalize(mutation.Payload)
		if err != nil {
			return nil, nil, ref, fmt.Errorf("reading payload: %w", err)
		}

		observed := ref
		if ref.Kind.AddressedByName() {
			if renamed, ok := body["username"].(string); ok && renamed != "" {
				observed.Name = renamed
			}
		} else {
			body["id"] = json.Number(ref.Key())
		}

		req := &petstore.Request{
			Method:     http.MethodPut,
			Path:       route.Update,
			PathParams: ref.PathParams(),
			Body:       body,
		}

		return req, expectation(mutation, body), observed, nil

	default:
		return nil, nil, ref, fmt.Errorf("%w: mode %d", ErrUnsupportedUpdate, mutation.Mode)
	}
}

func expectation(mutation Mutation, sent map[string]interface{}) map[string]interface{} {
	if mutation.Expect != nil {
		return mutation.Expect
	}

	return sent
}
