// Package transcript implements the text sink a running program prints to.
package transcript

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/ports"
)

var _ ports.Transcript = (*Stream)(nil)

// Stream writes program output incrementally to a file.
//
// Close flushes and closes the file and may be called any number of times;
// the finalizer relies on this to order the close before any reader of the
// file. Writes after Close fail.
type Stream struct {
	path   string
	file   *os.File
	buf    *bufio.Writer
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	err    error
}

// Create opens (truncating) the transcript file at path.
func Create(path string, logger *slog.Logger) (*Stream, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, domain.PersistenceError(fmt.Errorf("create transcript %s: %w", path, err))
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Stream{
		path:   path,
		file:   f,
		buf:    bufio.NewWriter(f),
		logger: logger,
	}, nil
}

// Write appends text verbatim.
func (s *Stream) Write(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("write to closed transcript %s", s.path)
	}
	_, err := s.buf.WriteString(text)
	return err
}

// Clear is a no-op on a file transcript; it is only logged.
func (s *Stream) Clear() {
	s.logger.Info("<Clear text>")
}

// Close flushes buffered output and closes the file.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.err
	}
	s.closed = true

	flushErr := s.buf.Flush()
	closeErr := s.file.Close()
	switch {
	case flushErr != nil:
		s.err = domain.PersistenceError(fmt.Errorf("flush transcript: %w", flushErr))
	case closeErr != nil:
		s.err = domain.PersistenceError(fmt.Errorf("close transcript: %w", closeErr))
	}
	return s.err
}
