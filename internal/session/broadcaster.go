// ABOUTME: In-memory fan-out of session events to UI observers.
// ABOUTME: Non-blocking publish; slow subscribers drop events instead of stalling the session.

package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	subscriberBufferSize = 64
)

// EventType names a session state change.
type EventType string

const (
	// EventMessage fires after a message is appended to the transcript.
	EventMessage EventType = "message"
	// EventReset fires after the transcript is cleared.
	EventReset EventType = "reset"
	// EventSending fires when the sending flag changes.
	EventSending EventType = "sending"
)

// Event is delivered to subscribers.
type Event struct {
	Type    EventType
	Message *Message // set for EventMessage
	Sending bool     // set for EventSending
}

// broadcaster provides pub/sub for session events.
type broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	closed      bool
	logger      *slog.Logger
}

func newBroadcaster(logger *slog.Logger) *broadcaster {
	return &broadcaster{
		subscribers: make(map[string]chan Event),
		logger:      logger,
	}
}

// subscribe registers a subscriber. The subscription is removed when ctx is
// cancelled.
func (b *broadcaster) subscribe(ctx context.Context) (<-chan Event, string) {
	subID := uuid.New().String()
	ch := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	b.subscribers[subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", subID)

	go func() {
		<-ctx.Done()
		b.unsubscribe(subID)
	}()

	return ch, subID
}

// publish sends an event to every subscriber without blocking.
func (b *broadcaster) publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Debug("dropped event for slow subscriber",
				"sub_id", id,
				"event_type", event.Type)
		}
	}
}

// unsubscribe removes a subscription and closes its channel.
func (b *broadcaster) unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[subID]
	if !ok {
		return
	}
	delete(b.subscribers, subID)
	close(ch)

	b.logger.Debug("subscriber removed", "sub_id", subID)
}

// close closes all subscriber channels. Later subscribers get a closed channel.
func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
	b.closed = true
}
