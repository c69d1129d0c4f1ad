package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
)

// publisher is the part of *nats.Conn the sink uses.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSConfig configures NATS publishing.
type NATSConfig struct {
	// URL of the NATS server, e.g. nats://localhost:4222.
	URL string
	// SubjectPrefix is prepended to "<kind>.<operation>".
	SubjectPrefix string
	// Name identifies the connection on the server.
	Name string
}

// NATSSink publishes each event as JSON on <prefix>.<kind>.<operation>.
type NATSSink struct {
	conn   publisher
	prefix string
}

// NewNATSSink connects to the configured server.
func NewNATSSink(config NATSConfig, opts ...nats.Option) (*NATSSink, error) {
	if config.URL == "" {
		return nil, ErrNoNATSServer
	}

	name := config.Name
	if name == "" {
		name = constants.DefaultUserAgent
	}

	conn, err := nats.Connect(config.URL, append([]nats.Option{nats.Name(name)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return newNATSSink(conn, config.SubjectPrefix)
}

func newNATSSink(conn publisher, prefix string) (*NATSSink, error) {
	if prefix == "" {
		prefix = constants.DefaultReportSubjectPrefix
	}

	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		return nil, ErrNoSubject
	}

	return &NATSSink{conn: conn, prefix: prefix}, nil
}

// Subject returns the subject an event is published on.
func (s *NATSSink) Subject(event Event) string {
	return s.prefix + "." + event.Kind + "." + event.Operation
}

// Write implements Sink.
func (s *NATSSink) Write(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	err = s.conn.Publish(s.Subject(event), data)
	if err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	return nil
}

// Close flushes pending messages and closes the connection.
func (s *NATSSink) Close() error {
	defer s.conn.Close()

	err := s.conn.FlushTimeout(constants.ReportFlushTimeout)
	if err != nil {
		return fmt.Errorf("flushing NATS: %w", err)
	}

	return nil
}
