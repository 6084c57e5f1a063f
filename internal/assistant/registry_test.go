package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/flood-nova/internal/domain"
	"github.com/couchcryptid/flood-nova/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(clock *clockwork.FakeClock, ttl time.Duration) (*Registry, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	e := NewEngine(discardLogger(), metrics, WithClock(clock), WithReplyDelay(0))
	return NewRegistry(e, ttl, discardLogger()), metrics
}

func TestRegistry_CreateGetClose(t *testing.T) {
	r, metrics := newTestRegistry(clockwork.NewFakeClock(), time.Minute)

	c := r.Create()
	_, err := uuid.Parse(c.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.InDelta(t, 1, gaugeValue(t, metrics), 0)

	got, ok := r.Get(c.ID())
	require.True(t, ok)
	assert.Same(t, c, got)

	assert.True(t, r.Close(c.ID()))
	assert.False(t, r.Close(c.ID()))
	assert.True(t, c.Closed())
	_, ok = r.Get(c.ID())
	assert.False(t, ok)
	assert.InDelta(t, 0, gaugeValue(t, metrics), 0)
}

func TestRegistry_DistinctIDs(t *testing.T) {
	r, _ := newTestRegistry(clockwork.NewFakeClock(), time.Minute)
	assert.NotEqual(t, r.Create().ID(), r.Create().ID())
}

func TestRegistry_SweepExpiresIdle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r, _ := newTestRegistry(clock, 10*time.Minute)

	idle := r.Create()
	busy := r.Create()

	clock.Advance(6 * time.Minute)
	_, ok := r.Get(busy.ID())
	require.True(t, ok)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, r.Sweep(clock.Now()))

	assert.True(t, idle.Closed())
	assert.False(t, busy.Closed())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RunSweepsAndClosesOnCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r, _ := newTestRegistry(clock, 2*time.Minute)
	idle := r.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	clock.Advance(3 * time.Minute)
	require.Eventually(t, idle.Closed, 2*time.Second, 5*time.Millisecond)

	other := r.Create()
	cancel()
	<-done
	assert.True(t, other.Closed())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_PositionReporterFeedsSession(t *testing.T) {
	r, _ := newTestRegistry(clockwork.NewFakeClock(), time.Minute)
	c := r.Create()

	c.Position.Report(domain.Coordinates{Latitude: 13.1, Longitude: 80.2})
	_, err := c.SubmitOption(domain.OptionSetLocation)
	require.NoError(t, err)
	c.Wait()

	require.True(t, c.Location().Resolved())
	entries := c.Notifications.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, SeverityInfo, entries[0].Severity)
}

func TestRegistry_PositionDenied(t *testing.T) {
	r, _ := newTestRegistry(clockwork.NewFakeClock(), time.Minute)
	c := r.Create()

	_, err := c.SubmitOption(domain.OptionSetLocation)
	require.NoError(t, err)
	c.Position.Deny()
	c.Wait()

	assert.Equal(t, 1, c.Notifications.Count(SeverityError))
	assert.False(t, c.Location().Resolved())
}

func TestPositionReporter_KeepsLatest(t *testing.T) {
	p := NewPositionReporter()
	p.Deny()
	p.Report(domain.Coordinates{Latitude: 1, Longitude: 2})

	pos, err := p.ResolveCurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Latitude: 1, Longitude: 2}, pos)
}

func TestPositionReporter_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPositionReporter().ResolveCurrentPosition(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPositionReporter_Deny(t *testing.T) {
	p := NewPositionReporter()
	p.Deny()
	_, err := p.ResolveCurrentPosition(context.Background())
	assert.True(t, errors.Is(err, ErrPositionDenied))
}

func TestNotifierFunc(t *testing.T) {
	var got []Severity
	n := NotifierFunc(func(_ string, s Severity) { got = append(got, s) })
	n.Notify("a", SeverityInfo)
	n.Notify("b", SeverityError)
	assert.Equal(t, []Severity{SeverityInfo, SeverityError}, got)
}

func TestNotificationLog_Timestamps(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.November, 30, 18, 0, 0, 0, time.UTC))
	l := NewNotificationLog(clock)
	l.Notify("first", SeverityInfo)
	clock.Advance(time.Second)
	l.Notify("second", SeverityError)

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, time.Second, entries[1].At.Sub(entries[0].At))
	assert.Equal(t, 1, l.Count(SeverityInfo))
}

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, time.Minute, sweepInterval(30*time.Minute))
	assert.Equal(t, 30*time.Second, sweepInterval(time.Minute))
	assert.Equal(t, time.Second, sweepInterval(time.Second))
}

func gaugeValue(t *testing.T, m *observability.Metrics) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.SessionsActive.Write(&out))
	return out.GetGauge().GetValue()
}
