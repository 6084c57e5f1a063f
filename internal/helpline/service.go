package helpline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/couchcryptid/flood-nova/internal/domain"
	"github.com/couchcryptid/flood-nova/internal/observability"
)

// ErrNotFound is returned when no help request has the requested ID.
var ErrNotFound = errors.New("help request not found")

// Store persists accepted help requests.
type Store interface {
	Save(ctx context.Context, req domain.HelpRequest) error
	Get(ctx context.Context, id int64) (domain.HelpRequest, error)
	Ping(ctx context.Context) error
}

// Publisher forwards accepted help requests to responders.
type Publisher interface {
	Publish(ctx context.Context, req domain.HelpRequest) error
}

const (
	publishAttempts   = 3
	initialBackoff    = 200 * time.Millisecond
	maxPublishBackoff = 5 * time.Second
)

// Service accepts emergency help requests: it scores, identifies, geocodes,
// stores and publishes them.
type Service struct {
	store     Store
	publisher Publisher
	geocoder  domain.Geocoder
	node      *snowflake.Node
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService creates a Service. publisher and geocoder may be nil.
func NewService(store Store, publisher Publisher, geocoder domain.Geocoder, node *snowflake.Node, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		geocoder:  geocoder,
		node:      node,
		logger:    logger,
		metrics:   metrics,
	}
}

// Submit validates and scores the form and records the resulting request.
// Validation failures wrap domain.ErrInvalidHelpRequest. A request that was
// stored is accepted even if publishing it fails.
func (s *Service) Submit(ctx context.Context, form domain.HelpRequestForm) (domain.HelpRequest, error) {
	req, err := domain.PrepareHelpRequest(form)
	if err != nil {
		s.metrics.HelpRequests.WithLabelValues("invalid").Inc()
		return domain.HelpRequest{}, err
	}
	req.ID = s.node.Generate().Int64()
	req = domain.EnrichHelpRequest(ctx, req, s.geocoder, s.logger)

	if err := s.store.Save(ctx, req); err != nil {
		s.metrics.HelpRequests.WithLabelValues("error").Inc()
		return domain.HelpRequest{}, fmt.Errorf("save help request %d: %w", req.ID, err)
	}

	s.metrics.HelpRequests.WithLabelValues("accepted").Inc()
	s.metrics.HelpPriority.Observe(req.PriorityScore)
	s.logger.Info("help request accepted",
		"help_request_id", req.ID,
		"area", req.Area,
		"priority_score", req.PriorityScore,
		"risk_level", req.RiskLevel,
		"geo_source", req.GeoSource,
	)

	if err := s.publish(ctx, req); err != nil {
		s.metrics.HelpPublishErrors.Inc()
		s.logger.Error("publish help request failed",
			"help_request_id", req.ID,
			"error", err,
		)
	}
	return req, nil
}

// Get returns a stored help request.
func (s *Service) Get(ctx context.Context, id int64) (domain.HelpRequest, error) {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.HelpRequest{}, fmt.Errorf("get help request %d: %w", id, err)
	}
	return req, nil
}

// CheckReadiness reports whether the store is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("help request store: %w", err)
	}
	return nil
}

// publish retries with exponential backoff: start at 200ms, double each
// retry, cap at 5s.
func (s *Service) publish(ctx context.Context, req domain.HelpRequest) error {
	if s.publisher == nil {
		return nil
	}

	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err = s.publisher.Publish(ctx, req); err == nil {
			return nil
		}
		if attempt == publishAttempts {
			break
		}
		s.logger.Warn("publish help request failed, retrying",
			"help_request_id", req.ID,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, maxPublishBackoff)
	}
	return fmt.Errorf("after %d attempts: %w", publishAttempts, err)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
