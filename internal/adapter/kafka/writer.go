package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/flood-nova/internal/config"
	"github.com/couchcryptid/flood-nova/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces accepted help requests to a Kafka topic for responders.
// It implements helpline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured help-request topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaHelpTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes one help request. Requests are keyed by ID so
// updates for the same request land on the same partition.
func (w *Writer) Publish(ctx context.Context, req domain.HelpRequest) error {
	msg, err := serializeToMessage(req)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write help request %d: %w", req.ID, err)
	}
	w.logger.Debug("help request published", "help_request_id", req.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a HelpRequest into a Kafka message.
func serializeToMessage(req domain.HelpRequest) (kafkago.Message, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize help request: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(req.ID, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_level", Value: []byte(req.RiskLevel)},
			{Key: "area", Value: []byte(req.Area)},
			{Key: "submitted_at", Value: []byte(req.SubmittedAt.Format(time.RFC3339))},
		},
	}, nil
}
