package report

import "fmt"

// Config selects where events go. Empty fields disable that destination.
type Config struct {
	// File receives YAML documents.
	File string
	// NATS publishes JSON messages when URL is set.
	NATS NATSConfig
}

// Enabled reports whether any destination is configured.
func (c Config) Enabled() bool {
	return c.File != "" || c.NATS.URL != ""
}

// NewFromConfig builds a reporter over every configured destination.
func NewFromConfig(config Config) (*Reporter, error) {
	var sinks []Sink

	if config.File != "" {
		sink, err := NewFileSink(config.File)
		if err != nil {
			return nil, err
		}

		sinks = append(sinks, sink)
	}

	if config.NATS.URL != "" {
		sink, err := NewNATSSink(config.NATS)
		if err != nil {
			_ = NewChain(sinks...).Close()

			return nil, fmt.Errorf("creating NATS reporter: %w", err)
		}

		sinks = append(sinks, sink)
	}

	switch len(sinks) {
	case 0:
		return NewReporter(NopSink{}), nil
	case 1:
		return NewReporter(sinks[0]), nil
	default:
		return NewReporter(NewChain(sinks...)), nil
	}
}
