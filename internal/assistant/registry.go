package assistant

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTTL is how long an untouched conversation is kept.
const DefaultIdleTTL = 30 * time.Minute

// Conversation is a registry-held session together with the collaborators the
// registry wired into it.
type Conversation struct {
	*Session
	Notifications *NotificationLog
	Position      *PositionReporter

	lastUsed time.Time
}

// Registry keeps live conversations addressable by ID and expires idle ones.
type Registry struct {
	engine *Engine
	ttl    time.Duration
	logger *slog.Logger

	mu            sync.RWMutex
	conversations map[string]*Conversation
}

// NewRegistry creates a registry whose sessions come from engine. A non-positive
// ttl uses DefaultIdleTTL.
func NewRegistry(engine *Engine, ttl time.Duration, logger *slog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Registry{
		engine:        engine,
		ttl:           ttl,
		logger:        logger,
		conversations: make(map[string]*Conversation),
	}
}

// Engine returns the engine sessions are created from.
func (r *Registry) Engine() *Engine {
	return r.engine
}

// Create starts a conversation with a fresh UUID, a notification log and a
// position reporter as its locator.
func (r *Registry) Create() *Conversation {
	id := uuid.NewString()
	notes := NewNotificationLog(r.engine.clock)
	reporter := NewPositionReporter()
	c := &Conversation{
		Session: r.engine.NewSession(
			WithID(id),
			WithNotifier(notes),
			WithLocator(reporter),
		),
		Notifications: notes,
		Position:      reporter,
		lastUsed:      r.engine.clock.Now(),
	}

	r.mu.Lock()
	r.conversations[id] = c
	n := len(r.conversations)
	r.mu.Unlock()

	r.engine.metrics.SessionsActive.Set(float64(n))
	return c
}

// Get returns the conversation and marks it used.
func (r *Registry) Get(id string) (*Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if ok {
		c.lastUsed = r.engine.clock.Now()
	}
	return c, ok
}

// Close removes and closes a conversation. It reports whether id was known.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	c, ok := r.conversations[id]
	delete(r.conversations, id)
	n := len(r.conversations)
	r.mu.Unlock()

	if !ok {
		return false
	}
	c.Close()
	r.engine.metrics.SessionsActive.Set(float64(n))
	return true
}

// Len returns the number of live conversations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}

// Sweep closes conversations idle for longer than the TTL as of now and
// returns how many were closed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var expired []*Conversation
	for id, c := range r.conversations {
		if now.Sub(c.lastUsed) > r.ttl {
			expired = append(expired, c)
			delete(r.conversations, id)
		}
	}
	n := len(r.conversations)
	r.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	r.engine.metrics.SessionsActive.Set(float64(n))
	if len(expired) > 0 {
		r.logger.Info("idle sessions expired", "count", len(expired), "active", n)
	}
	return len(expired)
}

// Run sweeps on the engine clock until ctx is cancelled, then closes every
// remaining conversation.
func (r *Registry) Run(ctx context.Context) {
	ticker := r.engine.clock.NewTicker(sweepInterval(r.ttl))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.Chan():
			r.Sweep(r.engine.clock.Now())
		}
	}
}

// CloseAll closes every conversation.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.conversations
	r.conversations = make(map[string]*Conversation)
	r.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	r.engine.metrics.SessionsActive.Set(0)
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval > time.Minute {
		return time.Minute
	}
	if interval < time.Second {
		return time.Second
	}
	return interval
}
