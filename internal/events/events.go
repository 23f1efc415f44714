package events

import (
	"context"
	"sync"
	"time"

	"shopgifter/internal/model"
)

// EventType represents the type of event.
type EventType string

const (
	// EventRunStarted is emitted when a bulk run begins.
	EventRunStarted EventType = "run.started"
	// EventItemAttempt is emitted after every bot attempt at an item.
	EventItemAttempt EventType = "item.attempt"
	// EventItemFinished is emitted when the scheduler is done with an item.
	EventItemFinished EventType = "item.finished"
	// EventRunFinished is emitted with the final run stats.
	EventRunFinished EventType = "run.finished"
)

// Event represents an event in the system.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// RunStartedData contains data for run started events.
type RunStartedData struct {
	RunID       string
	RecipientID string
	Items       int
	Bots        int
}

// ItemAttemptData contains data for item attempt events.
type ItemAttemptData struct {
	RunID    string
	OfferID  string
	ItemName string
	Attempt  model.AttemptRecord
}

// ItemFinishedData contains data for item finished events.
type ItemFinishedData struct {
	RunID     string
	OfferID   string
	ItemName  string
	Result    model.ItemResult
	Cursor    int
	Cancelled bool
}

// RunFinishedData contains data for run finished events.
type RunFinishedData struct {
	Stats model.RunStats
}

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// ErrorFunc receives handler errors.
type ErrorFunc func(event Event, err error)

// Manager manages event handlers and event publishing. Handlers run
// synchronously in subscription order, so progress output stays in step
// with the run.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	onError  ErrorFunc
	now      func() time.Time
}

// NewManager creates a new event manager. onError may be nil.
func NewManager(onError ErrorFunc) *Manager {
	return &Manager{
		handlers: make(map[EventType][]Handler),
		onError:  onError,
		now:      time.Now,
	}
}

// Subscribe subscribes a handler to a specific event type.
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish delivers an event to all subscribed handlers. A nil manager drops it.
func (m *Manager) Publish(ctx context.Context, eventType EventType, data interface{}) {
	if m == nil {
		return
	}

	m.mu.RLock()
	handlers := m.handlers[eventType]
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	event := Event{
		Type:      eventType,
		Timestamp: m.now(),
		Data:      data,
	}

	for _, h := range handlers {
		if err := h(ctx, event); err != nil && m.onError != nil {
			m.onError(event, err)
		}
	}
}
