package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"github.com/PratikDhanave/device-info-service/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

const connectTimeout = 10 * time.Second

// PostgresStore persists device records and reads users from Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// ConnectPostgres retries NewPostgresStore with capped exponential backoff.
// It gives up after maxRetries failed retries or when ctx is done.
func ConnectPostgres(ctx context.Context, dbURL string, maxRetries uint64, logger *slog.Logger) (*PostgresStore, error) {
	backoff := retry.NewExponential(500 * time.Millisecond)
	backoff = retry.WithCappedDuration(10*time.Second, backoff)
	backoff = retry.WithMaxRetries(maxRetries, backoff)

	attempt := 0
	var st *PostgresStore
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		s, err := NewPostgresStore(ctx, dbURL)
		if err != nil {
			logger.Warn("Failed to connect to database", "attempt", attempt, "error", err.Error())
			return retry.RetryableError(err)
		}
		st = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", attempt, err)
	}
	return st, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// LatestUserEmailByIP returns the email of the most recent user registered from ip.
// The email is nil when that user has none; found is false when no user matches.
func (p *PostgresStore) LatestUserEmailByIP(ctx context.Context, ip string) (*string, bool, error) {
	var email *string
	err := p.pool.QueryRow(ctx, `
		SELECT email
		FROM users
		WHERE ip_address = $1
		ORDER BY "timestamp" DESC
		LIMIT 1
	`, ip).Scan(&email)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return email, true, nil
}

// InsertDeviceInfoIfAbsent stores rec and returns inserted=false when the tuple already exists.
//
// Duplicate detection is enforced by the unique index on tuple_hash, a
// generated hash of (email, browser, os, device_type, ip_address) in which
// null matches only null, so concurrent identical submissions produce a
// single row whatever the field lengths.
func (p *PostgresStore) InsertDeviceInfoIfAbsent(ctx context.Context, rec models.DeviceInfo) (bool, error) {
	if rec.ID == "" {
		return false, errors.New("device info id required")
	}

	// RETURNING 1 only when inserted; duplicates return no rows.
	var one int
	err := p.pool.QueryRow(ctx, `
		INSERT INTO device_infos(id, email, browser, os, device_type, ip_address, "timestamp")
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT DO NOTHING
		RETURNING 1
	`, rec.ID, rec.Email, rec.Browser, rec.OS, rec.DeviceType, rec.IPAddress, rec.Timestamp).Scan(&one)

	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// ListDeviceInfos returns every stored device record in insertion order.
func (p *PostgresStore) ListDeviceInfos(ctx context.Context) ([]models.DeviceInfo, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id::text AS id, email, browser, os, device_type, ip_address, "timestamp"
		FROM device_infos
		ORDER BY "timestamp", id
	`)
	if err != nil {
		return nil, err
	}

	infos, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.DeviceInfo])
	if err != nil {
		return nil, err
	}
	if infos == nil {
		infos = []models.DeviceInfo{}
	}
	return infos, nil
}
