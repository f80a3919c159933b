package hub

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrObserverExists is returned when Subscribe reuses an id.
	ErrObserverExists = errors.New("observer id already exists")

	// ErrObserverNotFound is returned when Unsubscribe names an unknown id.
	ErrObserverNotFound = errors.New("observer id not found")

	// ErrNilObserver is returned when Subscribe is given a nil observer.
	ErrNilObserver = errors.New("observer cannot be nil")
)

// Observer receives blink and EAR update events from the pipeline.
// Implementations must not block; callbacks run on the publishing goroutine.
type Observer interface {
	OnBlinkDetected(count int)
	OnEyeDataUpdated(left, right, avg float64)
}

// Hub is the publish/subscribe fan-out between the tracker and its
// consumers. All methods are safe for concurrent use.
type Hub struct {
	mu        sync.RWMutex
	observers map[string]Observer
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{observers: make(map[string]Observer)}
}

// Subscribe registers o under id.
func (h *Hub) Subscribe(id string, o Observer) error {
	if o == nil {
		return ErrNilObserver
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.observers[id]; exists {
		return ErrObserverExists
	}
	h.observers[id] = o
	return nil
}

// Unsubscribe removes the observer registered under id.
func (h *Hub) Unsubscribe(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.observers[id]; !exists {
		return ErrObserverNotFound
	}
	delete(h.observers, id)
	return nil
}

// Count returns the number of registered observers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// PublishBlink delivers a blink-count change to every observer.
func (h *Hub) PublishBlink(count int) {
	h.deliver(func(o Observer) { o.OnBlinkDetected(count) })
}

// PublishEyeData delivers the latest per-eye and averaged EAR values.
func (h *Hub) PublishEyeData(left, right, avg float64) {
	h.deliver(func(o Observer) { o.OnEyeDataUpdated(left, right, avg) })
}

// deliver invokes fn on a stable snapshot of the current observers, so an
// observer that subscribes or unsubscribes others mid-notification cannot
// corrupt iteration. A panicking observer is recovered and logged; the rest
// still receive the event and the publisher never sees the failure.
func (h *Hub) deliver(fn func(Observer)) {
	h.mu.RLock()
	type target struct {
		id string
		o  Observer
	}
	targets := make([]target, 0, len(h.observers))
	for id, o := range h.observers {
		targets = append(targets, target{id, o})
	}
	h.mu.RUnlock()

	for _, t := range targets {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Warn("hub: observer panicked during delivery",
						"id", t.id, "panic", r)
				}
			}()
			fn(t.o)
		}()
	}
}
