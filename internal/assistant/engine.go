package assistant

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-nova/internal/domain"
	"github.com/couchcryptid/flood-nova/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	// DefaultReplyDelay is the pause between a user message and Nova's reply.
	DefaultReplyDelay = time.Second
	// DefaultLocateTimeout bounds a single location resolution.
	DefaultLocateTimeout = 10 * time.Second
)

// Engine holds what every conversation shares: the normalizer, the clock used
// for reply pacing, and observability. Sessions are created from it.
type Engine struct {
	normalizer    *domain.Normalizer
	geocoder      domain.Geocoder
	clock         clockwork.Clock
	replyDelay    time.Duration
	locateTimeout time.Duration
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithNormalizer replaces the built-in typo dictionary.
func WithNormalizer(n *domain.Normalizer) Option {
	return func(e *Engine) { e.normalizer = n }
}

// WithGeocoder enables reverse geocoding of resolved positions.
func WithGeocoder(g domain.Geocoder) Option {
	return func(e *Engine) { e.geocoder = g }
}

// WithClock sets the clock driving reply delays.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithReplyDelay sets the reply delay. Zero appends replies synchronously.
func WithReplyDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.replyDelay = d
		}
	}
}

// WithLocateTimeout bounds location resolution.
func WithLocateTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.locateTimeout = d
		}
	}
}

// NewEngine creates an Engine. A nil metrics value uses unregistered collectors.
func NewEngine(logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Engine {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	e := &Engine{
		clock:         clockwork.NewRealClock(),
		replyDelay:    DefaultReplyDelay,
		locateTimeout: DefaultLocateTimeout,
		logger:        logger,
		metrics:       metrics,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.normalizer == nil {
		e.normalizer = domain.DefaultNormalizer()
	}
	return e
}

// Clock returns the engine's clock.
func (e *Engine) Clock() clockwork.Clock {
	return e.clock
}

// ReplyDelay returns the configured reply delay.
func (e *Engine) ReplyDelay() time.Duration {
	return e.replyDelay
}

// Reply classifies input and renders the reply for loc. It has no side effects.
func (e *Engine) Reply(loc domain.LocationContext, input string) (domain.Intent, domain.Message) {
	return domain.Respond(loc.Snapshot(), input)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithID sets the session identifier used in logs.
func WithID(id string) SessionOption {
	return func(s *Session) { s.id = id }
}

// WithNotifier sets where session notices are delivered.
func WithNotifier(n Notifier) SessionOption {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLocator sets how the session resolves the user's position.
func WithLocator(l Locator) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.locator = l
		}
	}
}

// WithLocation overrides the starting location context.
func WithLocation(loc domain.LocationContext) SessionOption {
	return func(s *Session) { s.location = loc.Snapshot() }
}

// NewSession starts a conversation. Its transcript holds only the greeting.
func (e *Engine) NewSession(opts ...SessionOption) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		engine:     e,
		notifier:   discardNotifier{},
		locator:    unavailableLocator{},
		location:   domain.DefaultLocation(),
		transcript: []domain.Message{domain.Greeting()},
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = e.logger.With("session_id", s.id)
	e.metrics.SessionsStarted.Inc()
	s.logger.Debug("session started")
	return s
}
