// ABOUTME: Session state manager: owns the chat transcript and the sending flag.
// ABOUTME: Submissions always resolve to exactly one assistant reply or a fixed fallback.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/2389/docchat/internal/api"
)

// Fallback replies appended when a submission fails. The underlying error
// only goes to the logger.
const (
	QueryFallback = "Sorry, I encountered an error processing your request. Please try again."
	MathFallback  = "Sorry, I couldn't process this mathematical expression. Please check the syntax and try again."
)

// errEmptyResponse is logged when the backend returns neither a body nor an error.
var errEmptyResponse = errors.New("empty response from backend")

// Backend is what the manager needs from the API client.
type Backend interface {
	Query(ctx context.Context, query string) (*api.QueryResponse, error)
	Math(ctx context.Context, expression string) (*api.MathResponse, error)
}

// Manager is the single owner of a conversation's transcript and in-flight
// state. Construct one per session with New and pass it to whatever needs it.
type Manager struct {
	backend Backend
	logger  *slog.Logger
	events  *broadcaster

	mu       sync.Mutex
	messages []Message
	inflight int
	// generation is bumped by Reset; replies started in an older
	// generation are dropped.
	generation uint64
	nextCallID uint64
	cancels    map[uint64]context.CancelFunc
}

// New creates a Manager. Pass nil logger for default.
func New(backend Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "session")
	return &Manager{
		backend: backend,
		logger:  logger,
		events:  newBroadcaster(logger),
		cancels: make(map[uint64]context.CancelFunc),
	}
}

// SubmitQuery appends text as a user message, asks the backend, and appends
// the answer (or QueryFallback). Whitespace-only text is ignored.
func (m *Manager) SubmitQuery(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	m.submit(ctx, "query", text, QueryFallback, func(ctx context.Context) (string, []string, error) {
		resp, err := m.backend.Query(ctx, text)
		if err != nil {
			return "", nil, err
		}
		if resp == nil {
			return "", nil, errEmptyResponse
		}
		return resp.Answer, resp.Sources, nil
	})
}

// SubmitMath appends text as a user message, asks the backend to evaluate
// it, and appends "<expression> = <result>" (or MathFallback).
func (m *Manager) SubmitMath(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	m.submit(ctx, "math", text, MathFallback, func(ctx context.Context) (string, []string, error) {
		resp, err := m.backend.Math(ctx, text)
		if err != nil {
			return "", nil, err
		}
		if resp == nil {
			return "", nil, errEmptyResponse
		}
		return fmt.Sprintf("%s = %s", resp.Expression, resp.ResultString()), nil, nil
	})
}

// submit runs one user-initiated exchange. The sending guard is released by
// defer on every exit path.
func (m *Manager) submit(
	ctx context.Context,
	kind, text, fallback string,
	call func(ctx context.Context) (string, []string, error),
) {
	callCtx, gen, release := m.begin(ctx, text)
	defer release()

	content, sources, err := call(callCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) && m.superseded(gen) {
			m.logger.Debug("submission cancelled by reset", "kind", kind)
		} else {
			m.logger.Error("submission failed",
				"kind", kind,
				"error", err,
			)
		}
		content, sources = fallback, nil
	}

	m.appendReply(gen, kind, content, sources)
}

// begin appends the user message and acquires the sending guard in one step,
// so observers always see the message before the flag.
func (m *Manager) begin(ctx context.Context, text string) (context.Context, uint64, func()) {
	callCtx, cancel := context.WithCancel(ctx)
	msg := newMessage(RoleUser, text, nil)

	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.publishMessage(msg)

	id := m.nextCallID
	m.nextCallID++
	m.cancels[id] = cancel
	gen := m.generation

	m.inflight++
	if m.inflight == 1 {
		m.events.publish(Event{Type: EventSending, Sending: true})
	}
	m.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.cancels, id)
			m.inflight--
			if m.inflight == 0 {
				m.events.publish(Event{Type: EventSending, Sending: false})
			}
			m.mu.Unlock()
			cancel()
		})
	}

	return callCtx, gen, release
}

// superseded reports whether Reset ran after generation gen started.
func (m *Manager) superseded(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen != m.generation
}

// appendReply appends an assistant message unless the transcript was reset
// after the exchange started.
func (m *Manager) appendReply(gen uint64, kind, content string, sources []string) {
	msg := newMessage(RoleAssistant, content, sources)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation {
		m.logger.Debug("dropping reply from before reset", "kind", kind)
		return
	}
	m.messages = append(m.messages, msg)
	m.publishMessage(msg)
}

// publishMessage sends a copy of msg to subscribers. Must be called with mu held.
func (m *Manager) publishMessage(msg Message) {
	c := msg.clone()
	m.events.publish(Event{Type: EventMessage, Message: &c})
}

// Reset clears the transcript and cancels outstanding submissions. Their
// replies are discarded; each still clears its own share of the sending flag
// when it returns.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = nil
	m.generation++
	for _, cancel := range m.cancels {
		cancel()
	}
	m.events.publish(Event{Type: EventReset})
}

// Messages returns a snapshot of the transcript in chronological order.
func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.messages))
	for i, msg := range m.messages {
		out[i] = msg.clone()
	}
	return out
}

// Len returns the number of messages in the transcript.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Sending reports whether any submission is outstanding.
func (m *Manager) Sending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight > 0
}

// Subscribe returns a channel of session events. It is closed when ctx is
// cancelled or the manager is closed.
func (m *Manager) Subscribe(ctx context.Context) (<-chan Event, string) {
	return m.events.subscribe(ctx)
}

// Close closes all subscriptions.
func (m *Manager) Close() {
	m.events.close()
}
