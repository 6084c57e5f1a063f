package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/flood-nova/internal/domain"
)

const correctionNotice = "I've corrected some spelling to better understand your question."

var (
	// ErrBlankInput is returned for empty or whitespace-only input. The
	// transcript is left unchanged.
	ErrBlankInput = errors.New("blank input")
	// ErrSessionClosed is returned when submitting to a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// Session is one conversation with Nova. All methods are safe for concurrent use.
type Session struct {
	id       string
	engine   *Engine
	notifier Notifier
	locator  Locator
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	transcript []domain.Message
	location   domain.LocationContext
	pending    []*Turn
	closed     bool
}

// ID returns the session identifier, empty when none was assigned.
func (s *Session) ID() string {
	return s.id
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.transcript))
	for i, m := range s.transcript {
		out[i] = m.Clone()
	}
	return out
}

// Location returns a copy of the current location context.
func (s *Session) Location() domain.LocationContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location.Snapshot()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SubmitOption records label as a user message, verbatim, and schedules the reply.
func (s *Session) SubmitOption(label string) (*Turn, error) {
	if strings.TrimSpace(label) == "" {
		return nil, ErrBlankInput
	}
	return s.submit(label, SourceOption, false)
}

// SubmitText normalizes raw, records it as a user message and schedules the
// reply. When the normalizer changed the text an info notice is raised before
// the message is appended.
func (s *Session) SubmitText(raw string) (*Turn, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrBlankInput
	}
	text, corrected := s.engine.normalizer.Correct(raw)
	if corrected {
		if s.Closed() {
			return nil, ErrSessionClosed
		}
		s.engine.metrics.Corrections.Inc()
		s.notifier.Notify(correctionNotice, SeverityInfo)
	}
	return s.submit(text, SourceText, corrected)
}

func (s *Session) submit(text string, source Source, corrected bool) (*Turn, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}

	user := domain.UserMessage(text)
	intent, reply := s.engine.Reply(s.location, text)
	turn := newTurn(user, reply, intent, source)
	turn.Corrected = corrected

	s.transcript = append(s.transcript, user)
	if intent == domain.IntentLocation {
		s.startLocating()
	}

	delay := s.engine.replyDelay
	if delay == 0 {
		s.transcript = append(s.transcript, reply.Clone())
		turn.settled = true
		close(turn.done)
	} else {
		s.wg.Add(1)
		s.pending = append(s.pending, turn)
		turn.timer = s.engine.clock.AfterFunc(delay, func() { s.fire(turn) })
	}
	s.mu.Unlock()

	s.engine.metrics.Turns.WithLabelValues(string(intent), string(source)).Inc()
	s.logger.Debug("turn submitted",
		"intent", intent,
		"source", source,
		"corrected", corrected,
	)
	return turn, nil
}

// fire marks turn due and flushes every due reply at the head of the queue,
// so replies land in submission order even if timers fire out of order.
func (s *Session) fire(turn *Turn) {
	s.mu.Lock()
	if turn.settled {
		s.mu.Unlock()
		return
	}
	turn.fired = true

	var flushed []*Turn
	for len(s.pending) > 0 && s.pending[0].fired {
		t := s.pending[0]
		s.pending = s.pending[1:]
		s.transcript = append(s.transcript, t.Reply.Clone())
		t.settled = true
		flushed = append(flushed, t)
	}
	s.mu.Unlock()

	for _, t := range flushed {
		close(t.done)
		s.wg.Done()
	}
}

// startLocating launches a background resolution. Caller holds s.mu.
func (s *Session) startLocating() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.locate()
	}()
}

func (s *Session) locate() {
	ctx, cancel := context.WithTimeout(s.ctx, s.engine.locateTimeout)
	defer cancel()

	pos, err := s.locator.ResolveCurrentPosition(ctx)
	if err != nil {
		s.locationFailed(err)
		return
	}

	enriched := domain.EnrichLocation(ctx, s.Location(), pos, s.engine.geocoder, s.logger)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("location resolved after close, discarded")
		return
	}
	s.location.Coordinates = enriched.Coordinates
	s.location.ResolvedPlace = enriched.ResolvedPlace
	loc := s.location.Snapshot()
	s.mu.Unlock()

	s.engine.metrics.LocationLookups.WithLabelValues("success").Inc()
	s.logger.Info("location resolved",
		"lat", pos.Latitude,
		"lon", pos.Longitude,
		"resolved_place", loc.ResolvedPlace,
	)
	s.notifier.Notify(fmt.Sprintf("Location updated to %s, %s", loc.City, loc.Region), SeverityInfo)
}

func (s *Session) locationFailed(err error) {
	s.mu.Lock()
	closed := s.closed
	city := s.location.City
	s.mu.Unlock()
	if closed {
		return
	}

	s.engine.metrics.LocationLookups.WithLabelValues("error").Inc()
	s.logger.Warn("location resolution failed", "error", err)
	s.notifier.Notify(fmt.Sprintf("Unable to access location. Using default %s location.", city), SeverityError)
}

// Close ends the conversation. Pending replies are dropped and in-flight
// location lookups are cancelled. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	dropped := s.pending
	s.pending = nil
	for _, t := range dropped {
		t.timer.Stop()
		t.settled = true
		t.dropped = true
	}
	s.mu.Unlock()

	s.cancel()
	for _, t := range dropped {
		close(t.done)
		s.wg.Done()
	}
	if n := len(dropped); n > 0 {
		s.engine.metrics.RepliesDropped.Add(float64(n))
		s.logger.Debug("pending replies dropped", "count", n)
	}
}

// Wait blocks until every pending reply and location lookup has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}
