package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart  EventType = "run_start"
	EventRunSettle EventType = "run_settle"
	EventMove      EventType = "move"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// RunEvent is emitted when a run starts and when it settles.
type RunEvent struct {
	EventBase
	Details *ExecutionDetails `json:"details"`
	Outcome Outcome           `json:"outcome,omitempty"`
	Err     error             `json:"-"`
}

// MoveEvent is emitted for every move notification.
type MoveEvent struct {
	EventBase
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	PenDown bool    `json:"pen_down"`
}

// LifecycleHooks defines callbacks for harness observability. Hooks run
// synchronously on the harness goroutine.
type LifecycleHooks struct {
	OnRunStart  func(context.Context, *RunEvent)
	OnRunSettle func(context.Context, *RunEvent)
	OnMove      func(context.Context, *MoveEvent)
}

// ChainHooks returns hooks that call each of hooks in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnRunSettle: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunSettle != nil {
					h.OnRunSettle(ctx, e)
				}
			}
		},
		OnMove: func(ctx context.Context, e *MoveEvent) {
			for _, h := range hooks {
				if h.OnMove != nil {
					h.OnMove(ctx, e)
				}
			}
		},
	}
}
