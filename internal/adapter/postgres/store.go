package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/flood-nova/internal/domain"
	"github.com/couchcryptid/flood-nova/internal/helpline"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS help_requests (
	id                BIGINT PRIMARY KEY,
	form              JSONB            NOT NULL,
	area              TEXT             NOT NULL DEFAULT '',
	disability_count  INTEGER          NOT NULL,
	chronic_count     INTEGER          NOT NULL,
	priority_score    DOUBLE PRECISION NOT NULL,
	risk_level        TEXT             NOT NULL,
	latitude          DOUBLE PRECISION,
	longitude         DOUBLE PRECISION,
	formatted_address TEXT             NOT NULL DEFAULT '',
	geo_source        TEXT             NOT NULL DEFAULT '',
	submitted_at      TIMESTAMPTZ      NOT NULL
);
CREATE INDEX IF NOT EXISTS help_requests_priority_idx ON help_requests (priority_score DESC);
`

const insertRequest = `
INSERT INTO help_requests (
	id, form, area, disability_count, chronic_count, priority_score, risk_level,
	latitude, longitude, formatted_address, geo_source, submitted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const selectRequest = `
SELECT form, disability_count, chronic_count, priority_score, risk_level,
	latitude, longitude, formatted_address, geo_source, submitted_at
FROM help_requests WHERE id = $1`

// Config holds connection pool settings.
type Config struct {
	DSN      string
	MaxConns int32
}

// Store persists help requests in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database, verifies the connection and applies the schema.
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the help_requests table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Save inserts req. IDs are unique, so a second save of the same ID fails.
func (s *Store) Save(ctx context.Context, req domain.HelpRequest) error {
	var lat, lon *float64
	if req.Geo != nil {
		lat, lon = &req.Geo.Latitude, &req.Geo.Longitude
	}
	_, err := s.pool.Exec(ctx, insertRequest,
		req.ID,
		req.HelpRequestForm,
		req.Area,
		req.DisabilityCount,
		req.ChronicConditionsCount,
		req.PriorityScore,
		string(req.RiskLevel),
		lat,
		lon,
		req.FormattedAddress,
		req.GeoSource,
		req.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert help request: %w", err)
	}
	return nil
}

// Get loads a help request by ID.
func (s *Store) Get(ctx context.Context, id int64) (domain.HelpRequest, error) {
	req := domain.HelpRequest{ID: id}
	var (
		risk     string
		lat, lon *float64
	)
	err := s.pool.QueryRow(ctx, selectRequest, id).Scan(
		&req.HelpRequestForm,
		&req.DisabilityCount,
		&req.ChronicConditionsCount,
		&req.PriorityScore,
		&risk,
		&lat,
		&lon,
		&req.FormattedAddress,
		&req.GeoSource,
		&req.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HelpRequest{}, helpline.ErrNotFound
		}
		return domain.HelpRequest{}, fmt.Errorf("select help request: %w", err)
	}
	req.RiskLevel = domain.RiskLevel(risk)
	if lat != nil && lon != nil {
		req.Geo = &domain.Coordinates{Latitude: *lat, Longitude: *lon}
	}
	req.SubmittedAt = req.SubmittedAt.UTC()
	return req, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
