package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/flood-nova/internal/config"
	"github.com/couchcryptid/flood-nova/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2023, 12, 4, 6, 45, 0, 0, time.UTC)
	req := domain.HelpRequest{
		ID:              1834567890123456789,
		HelpRequestForm: domain.HelpRequestForm{Elderly: 2, Area: "Anna Nagar"},
		PriorityScore:   0.85,
		RiskLevel:       domain.RiskExtreme,
		SubmittedAt:     now,
	}

	msg, err := serializeToMessage(req)
	require.NoError(t, err)

	assert.Equal(t, []byte("1834567890123456789"), msg.Key)
	assert.Contains(t, string(msg.Value), `"id":"1834567890123456789"`)
	assert.Contains(t, string(msg.Value), `"risk_level":"Extreme"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "risk_level", msg.Headers[0].Key)
	assert.Equal(t, []byte("Extreme"), msg.Headers[0].Value)
	assert.Equal(t, "area", msg.Headers[1].Key)
	assert.Equal(t, []byte("Anna Nagar"), msg.Headers[1].Value)
	assert.Equal(t, "submitted_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var decoded domain.HelpRequest
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, req.ID, decoded.ID)
	assert.Equal(t, 2, decoded.Elderly)
}

func TestNewWriter_UsesHelpTopic(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaHelpTopic: "help"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "help", w.writer.Topic)
}
