package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
)

// WriterSink writes events as a stream of YAML documents.
type WriterSink struct {
	mu      sync.Mutex
	encoder *yaml.Encoder
	closer  io.Closer
	closed  bool
}

// NewWriterSink writes to w. Closing the sink closes w when it is an io.Closer.
func NewWriterSink(w io.Writer) *WriterSink {
	sink := &WriterSink{encoder: yaml.NewEncoder(w)}

	if closer, ok := w.(io.Closer); ok {
		sink.closer = closer
	}

	return sink
}

// NewFileSink appends events to path, creating parent directories.
func NewFileSink(path string) (*WriterSink, error) {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, constants.ReportFilePerm)
	if err != nil {
		return nil, fmt.Errorf("opening report file: %w", err)
	}

	return NewWriterSink(file), nil
}

// Write implements Sink.
func (s *WriterSink) Write(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	err := s.encoder.Encode(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	return nil
}

// Close implements Sink.
func (s *WriterSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	err := s.encoder.Close()
	if err != nil {
		return fmt.Errorf("closing encoder: %w", err)
	}

	if s.closer != nil {
		return s.closer.Close()
	}

	return nil
}
