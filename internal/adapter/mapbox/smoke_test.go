//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/flood-nova/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), "Guindy", "Chennai")
	require.NoError(t, err)

	assert.InDelta(t, 13.01, result.Lat, 0.1, "lat should be near Guindy")
	assert.InDelta(t, 80.21, result.Lon, 0.1, "lon should be near Guindy")
	assert.Contains(t, result.FormattedAddress, "Chennai")
	assert.Greater(t, result.Confidence, 0.5)
}

func TestSmoke_ReverseGeocode(t *testing.T) {
	c := smokeClient(t)

	// Chennai Central
	result, err := c.ReverseGeocode(context.Background(), 13.0827, 80.2707)
	require.NoError(t, err)

	assert.NotEmpty(t, result.FormattedAddress)
	assert.NotEmpty(t, result.PlaceName)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestSmoke_CachedForward(t *testing.T) {
	cached := NewCachedGeocoder(smokeClient(t), 10, observability.NewMetricsForTesting())

	first, err := cached.ForwardGeocode(context.Background(), "Ayanavaram", "Chennai")
	require.NoError(t, err)
	second, err := cached.ForwardGeocode(context.Background(), "Ayanavaram", "Chennai")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
