package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/turtleshot/pkg/domain"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 1000
	DefaultHeight = 1000
)

// Option defines a functional option for configuring the Harness.
type Option func(*Harness)

// WithCanvas sets the canvas size the viewport is clamped to.
func WithCanvas(width, height int) Option {
	return func(h *Harness) {
		h.width = width
		h.height = height
	}
}

// WithTag labels the run's ExecutionDetails.
func WithTag(tag string) Option {
	return func(h *Harness) {
		h.tag = tag
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(h *Harness) {
		h.hooks = hooks
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) {
		h.now = now
	}
}
