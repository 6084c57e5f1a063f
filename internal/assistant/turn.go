package assistant

import (
	"github.com/couchcryptid/flood-nova/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Source records how the user produced a turn.
type Source string

const (
	SourceOption Source = "option"
	SourceText   Source = "text"
)

// Turn is one user message and the reply scheduled for it. The reply is
// rendered when the turn is submitted and appended to the transcript after the
// engine's reply delay.
type Turn struct {
	User      domain.Message
	Reply     domain.Message
	Intent    domain.Intent
	Source    Source
	Corrected bool

	timer   clockwork.Timer
	fired   bool
	settled bool
	dropped bool
	done    chan struct{}
}

func newTurn(user, reply domain.Message, intent domain.Intent, source Source) *Turn {
	return &Turn{
		User:   user,
		Reply:  reply,
		Intent: intent,
		Source: source,
		done:   make(chan struct{}),
	}
}

// Done is closed once the reply has been appended or dropped.
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Dropped reports whether the session closed before the reply was appended.
// It is only meaningful after Done is closed.
func (t *Turn) Dropped() bool {
	select {
	case <-t.done:
		return t.dropped
	default:
		return false
	}
}
