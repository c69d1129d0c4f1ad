// Package report publishes convergence run events. Each executor run becomes
// one Event, written to a YAML file, published on NATS, or both.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// Static errors for err113 compliance.
var (
	ErrSinkClosed   = errors.New("report sink is closed")
	ErrNoSubject    = errors.New("report subject prefix is required")
	ErrNoNATSServer = errors.New("NATS server URL is required")
)

// Event is the serialized record of one convergence run.
type Event struct {
	RunID      string    `json:"run_id"          yaml:"run_id"`
	Operation  string    `json:"operation"       yaml:"operation"`
	Kind       string    `json:"kind"            yaml:"kind"`
	Key        string    `json:"key"             yaml:"key"`
	Attempts   int       `json:"attempts"        yaml:"attempts"`
	Outcome    string    `json:"outcome"         yaml:"outcome"`
	Status     int       `json:"status"          yaml:"status"`
	DurationMS int64     `json:"duration_ms"     yaml:"duration_ms"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	Time       time.Time `json:"time"            yaml:"time"`
}

// Sink receives events.
type Sink interface {
	Write(ctx context.Context, event Event) error
	Close() error
}

// Reporter implements petstore.Reporter by stamping events with a run id and
// handing them to a sink.
type Reporter struct {
	runID string
	sink  Sink
}

// NewReporter creates a reporter with a fresh run id.
func NewReporter(sink Sink) *Reporter {
	return &Reporter{
		runID: uuid.NewString(),
		sink:  sink,
	}
}

// RunID identifies every event this reporter emits.
func (r *Reporter) RunID() string {
	return r.runID
}

// Report implements petstore.Reporter.
func (r *Reporter) Report(ctx context.Context, event petstore.ConvergenceEvent) error {
	err := r.sink.Write(ctx, NewEvent(r.runID, event))
	if err != nil {
		return fmt.Errorf("writing report event: %w", err)
	}

	return nil
}

// Close closes the sink.
func (r *Reporter) Close() error {
	return r.sink.Close()
}

// NewEvent converts an executor event.
func NewEvent(runID string, event petstore.ConvergenceEvent) Event {
	out := Event{
		RunID:      runID,
		Operation:  event.Operation,
		Kind:       string(event.Ref.Kind),
		Key:        event.Ref.Key(),
		Attempts:   event.Attempts,
		Outcome:    event.Outcome,
		Status:     event.Status,
		DurationMS: event.Duration.Milliseconds(),
		Time:       event.Time.UTC(),
	}

	if event.Err != nil {
		out.Error = event.Err.Error()
	}

	return out
}

// NopSink discards events.
type NopSink struct{}

// Write implements Sink.
func (NopSink) Write(context.Context, Event) error { return nil }

// Close implements Sink.
func (NopSink) Close() error { return nil }

// Chain fans events out to several sinks.
type Chain struct {
	sinks []Sink
}

// NewChain creates a chain of sinks.
func NewChain(sinks ...Sink) *Chain {
	return &Chain{sinks: sinks}
}

// Write writes to every sink and returns the last error.
func (c *Chain) Write(ctx context.Context, event Event) error {
	var lastErr error

	for _, sink := range c.sinks {
		err := sink.Write(ctx, event)
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Close closes every sink and joins their errors.
func (c *Chain) Close() error {
	var errs []error

	for _, sink := range c.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
