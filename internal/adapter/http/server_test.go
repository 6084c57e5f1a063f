package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	httpadapter "github.com/couchcryptid/flood-nova/internal/adapter/http"
	"github.com/couchcryptid/flood-nova/internal/assistant"
	"github.com/couchcryptid/flood-nova/internal/domain"
	"github.com/couchcryptid/flood-nova/internal/helpline"
	"github.com/couchcryptid/flood-nova/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type sessionBody struct {
	ID            string                   `json:"id"`
	Transcript    []domain.Message         `json:"transcript"`
	Location      domain.LocationContext   `json:"location"`
	Notifications []assistant.Notification `json:"notifications"`
}

type turnBody struct {
	User         domain.Message `json:"user"`
	Intent       domain.Intent  `json:"intent"`
	Corrected    bool           `json:"corrected"`
	ReplyAfterMS int64          `json:"reply_after_ms"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	srv      *httpadapter.Server
	registry *assistant.Registry
}

func newFixture(t *testing.T, readyErr error) fixture {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	engine := assistant.NewEngine(discardLogger(), metrics,
		assistant.WithClock(clockwork.NewFakeClock()),
		assistant.WithReplyDelay(0),
		assistant.WithLocateTimeout(time.Second),
	)
	registry := assistant.NewRegistry(engine, time.Hour, discardLogger())
	t.Cleanup(registry.CloseAll)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	help := helpline.NewService(helpline.NewMemoryStore(), nil, nil, node, discardLogger(), metrics)

	srv := httpadapter.NewServer(":0", []string{"*"}, registry, help, &mockReadiness{err: readyErr}, discardLogger())
	return fixture{srv: srv, registry: registry}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func (f fixture) createSession(t *testing.T) sessionBody {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var body sessionBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (f fixture) getSession(t *testing.T, id string) sessionBody {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/api/sessions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body sessionBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// --- health ---

func TestHealthzReturns200(t *testing.T) {
	rec := newFixture(t, nil).do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := newFixture(t, nil).do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := newFixture(t, fmt.Errorf("database unreachable")).do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := newFixture(t, nil).do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	f.srv.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// --- sessions ---

func TestCreateSession(t *testing.T) {
	f := newFixture(t, nil)
	body := f.createSession(t)

	assert.NotEmpty(t, body.ID)
	require.Len(t, body.Transcript, 1)
	assert.Equal(t, domain.Greeting(), body.Transcript[0])
	assert.Equal(t, "Chennai", body.Location.City)
	assert.Empty(t, body.Notifications)
	assert.Equal(t, 1, f.registry.Len())
}

func TestGetSession_NotFound(t *testing.T) {
	rec := newFixture(t, nil).do(t, http.MethodGet, "/api/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostMessage(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createSession(t).ID

	rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/messages", `{"text":"whats the risk of a flod"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var turn turnBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	assert.Equal(t, domain.IntentRisk, turn.Intent)
	assert.Equal(t, "what's the risk of a flood", turn.User.Text)
	assert.True(t, turn.Corrected)
	assert.Zero(t, turn.ReplyAfterMS)

	view := f.getSession(t, id)
	require.Len(t, view.Transcript, 3)
	assert.Equal(t, domain.SpeakerAssistant, view.Transcript[2].Speaker)
	require.Len(t, view.Notifications, 1)
	assert.Equal(t, assistant.SeverityInfo, view.Notifications[0].Severity)
}

func TestPostMessage_Blank(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createSession(t).ID

	rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/messages", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, f.getSession(t, id).Transcript, 1)
}

func TestPostMessage_BadJSON(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createSession(t).ID

	rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/messages", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostOption_MainMenu(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createSession(t).ID

	rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/options", `{"label":"Back to main menu"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	view := f.getSession(t, id)
	require.Len(t, view.Transcript, 3)
	assert.Equal(t, domain.Greeting(), view.Transcript[2])
}

func TestPostOption_Empty(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createSession(t).ID

	rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/options", `{"label":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPosition_Report(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createSession(t).ID

	rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/position", `{"latitude":13.0827,"longitude":80.2707}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/sessions/"+id+"/options", `{"label":"Set my location"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	c, ok := f.registry.Get(id)
	require.True(t, ok)
	c.Wait()

	view := f.getSession(t, id)
	require.NotNil(t, view.Location.Coordinates)
	assert.Equal(t, 13.0827, view.Location.Coordinates.Latitude)
	require.Len(t, view.Notifications, 1)
	assert.Equal(t, "Location updated to Chennai, Tamil Nadu", view.Notifications[0].Message)
}

func TestPosition_Denied(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createSession(t).ID

	rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/options", `{"label":"Set my location"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/sessions/"+id+"/position", `{"denied":true}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	c, ok := f.registry.Get(id)
	require.True(t, ok)
	c.Wait()

	view := f.getSession(t, id)
	assert.Nil(t, view.Location.Coordinates)
	require.Len(t, view.Notifications, 1)
	assert.Equal(t, assistant.SeverityError, view.Notifications[0].Severity)
	assert.Equal(t, "Unable to access location. Using default Chennai location.", view.Notifications[0].Message)
	assert.Len(t, view.Transcript, 3)
}

func TestPosition_Invalid(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createSession(t).ID

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/sessions/"+id+"/position", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/sessions/"+id+"/position", `{"latitude":95,"longitude":10}`).Code)
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createSession(t).ID

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/sessions/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/sessions/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/sessions/"+id+"/messages", `{"text":"menu"}`).Code)
}

// --- help requests ---

func TestSubmitHelpRequest(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/help-requests", `{
		"num_adults": 2,
		"num_children": 1,
		"num_elderly": 1,
		"water_level": "waist-high",
		"area": "Guindy"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.HelpRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.InDelta(t, 0.5, created.PriorityScore, 1e-9)
	assert.Equal(t, domain.RiskModerate, created.RiskLevel)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/help-requests/%d", created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched domain.HelpRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Guindy", fetched.Area)
}

func TestSubmitHelpRequest_Invalid(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/help-requests", `{"area":"Atlantis"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown area")
}

func TestSubmitHelpRequest_UnknownField(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/help-requests", `{"num_pets":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHelpRequest_NotFoundAndBadID(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/help-requests/12345", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/help-requests/abc", "").Code)
}
