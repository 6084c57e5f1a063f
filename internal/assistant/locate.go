package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/couchcryptid/flood-nova/internal/domain"
)

var (
	// ErrLocatorUnavailable is returned when the session has no way to obtain a position.
	ErrLocatorUnavailable = errors.New("location service unavailable")
	// ErrPositionDenied is returned when the user refuses to share a position.
	ErrPositionDenied = errors.New("location permission denied")
)

// Locator resolves the user's current position. Implementations should return
// promptly when ctx is cancelled.
type Locator interface {
	ResolveCurrentPosition(ctx context.Context) (domain.Coordinates, error)
}

// LocatorFunc adapts a plain function to the Locator interface.
type LocatorFunc func(ctx context.Context) (domain.Coordinates, error)

// ResolveCurrentPosition calls f.
func (f LocatorFunc) ResolveCurrentPosition(ctx context.Context) (domain.Coordinates, error) {
	return f(ctx)
}

// StaticLocator always reports the same position.
func StaticLocator(pos domain.Coordinates) Locator {
	return LocatorFunc(func(context.Context) (domain.Coordinates, error) {
		return pos, nil
	})
}

type unavailableLocator struct{}

func (unavailableLocator) ResolveCurrentPosition(context.Context) (domain.Coordinates, error) {
	return domain.Coordinates{}, ErrLocatorUnavailable
}

type positionReport struct {
	pos domain.Coordinates
	err error
}

// PositionReporter is a Locator fed from outside, typically by a browser client
// that owns the geolocation permission. A resolution waits until the client
// reports a position or a denial. Only the latest unconsumed report is kept.
type PositionReporter struct {
	mu      sync.Mutex
	reports chan positionReport
}

// NewPositionReporter returns a reporter with no pending report.
func NewPositionReporter() *PositionReporter {
	return &PositionReporter{reports: make(chan positionReport, 1)}
}

// Report supplies the user's position.
func (p *PositionReporter) Report(pos domain.Coordinates) {
	p.offer(positionReport{pos: pos})
}

// Deny records that the user refused to share a position.
func (p *PositionReporter) Deny() {
	p.offer(positionReport{err: ErrPositionDenied})
}

func (p *PositionReporter) offer(r positionReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.reports:
	default:
	}
	p.reports <- r
}

// ResolveCurrentPosition waits for the next report.
func (p *PositionReporter) ResolveCurrentPosition(ctx context.Context) (domain.Coordinates, error) {
	select {
	case r := <-p.reports:
		return r.pos, r.err
	case <-ctx.Done():
		return domain.Coordinates{}, fmt.Errorf("wait for position report: %w", ctx.Err())
	}
}
