package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const (
	AppointmentCreated = "appointment.created"
	AppointmentUpdated = "appointment.updated"
	AppointmentDeleted = "appointment.deleted"
	StatusChanged      = "appointment.status"
	// AppointmentMoved announces the slot an edited appointment left, so views
	// of the old day or provider can drop it.
	AppointmentMoved = "appointment.moved"

	// All subscribes a handler to every event type.
	All = "*"
)

// Event tells open views that a day's schedule changed and which
// appointment caused it.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	AppointmentID int       `json:"appointment_id"`
	ProviderID    int       `json:"provider_id"`
	Date          string    `json:"date"`
	Status        string    `json:"status,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Handler func(event Event) error

type subscription struct {
	id      int
	handler Handler
}

// Bus is an in-process pub/sub. Handlers run synchronously on the
// publisher's goroutine, in subscription order.
type Bus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[string][]subscription
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]subscription)}
}

// Subscribe registers handler for eventType (or All) and returns a function
// that removes it again.
func (b *Bus) Subscribe(eventType string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish stamps the event with an id and time when missing and hands it to
// every matching handler. Handler errors are logged and do not stop delivery.
func (b *Bus) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]subscription, 0, len(b.subscribers[event.Type])+len(b.subscribers[All]))
	handlers = append(handlers, b.subscribers[event.Type]...)
	handlers = append(handlers, b.subscribers[All]...)
	b.mu.RUnlock()

	for _, s := range handlers {
		if err := s.handler(event); err != nil {
			log.Warnf("event handler failed for %s (%s): %v", event.Type, event.ID, err)
		}
	}
}
