package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clearbook-finance/rates-adapter/pkg/model"
)

// Store caches raw provider payloads in Redis and archives observations and
// build audit rows in Postgres. The Postgres side is optional: with no
// DATABASE_URL configured the archive methods are no-ops.
type Store interface {
	GetRawSeries(ctx context.Context, series string) ([]byte, error)
	CacheRawSeries(ctx context.Context, series string, body []byte, ttl time.Duration) error
	ArchiveObservations(ctx context.Context, series model.SourceSeries) error
	RecordBuild(ctx context.Context, audit model.BuildAudit) error
	ListBuilds(ctx context.Context, limit int) ([]model.BuildAudit, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type HybridStore struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid creates a Redis-first, Postgres-backed store.
func NewHybrid(redisAddr string, redisDB int, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	return &HybridStore{redis: rdb, PG: pgPool, logger: logger}, nil
}

func rawSeriesKey(series string) string {
	return "rates:raw:" + series
}

// GetRawSeries returns the cached provider CSV body, or nil on a miss.
func (s *HybridStore) GetRawSeries(ctx context.Context, series string) ([]byte, error) {
	data, err := s.redis.Get(ctx, rawSeriesKey(series)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return data, nil
}

// CacheRawSeries stores a provider CSV body with a TTL.
func (s *HybridStore) CacheRawSeries(ctx context.Context, series string, body []byte, ttl time.Duration) error {
	return s.redis.Set(ctx, rawSeriesKey(series), body, ttl).Err()
}

// ArchiveObservations upserts one series' raw observations into
// rates.observation. Re-archiving after every rebuild is idempotent.
func (s *HybridStore) ArchiveObservations(ctx context.Context, series model.SourceSeries) error {
	if s.PG == nil {
		return nil
	}

	batch := &pgx.Batch{}
	for _, o := range series.Obs {
		batch.Queue(`
			INSERT INTO rates.observation (series, duration_days, obs_date, value, missing, archived_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (series, obs_date)
			DO UPDATE SET
				value = EXCLUDED.value,
				missing = EXCLUDED.missing,
				archived_at = EXCLUDED.archived_at;
		`, series.Series, series.Duration, o.Date, o.Value, o.Missing)
	}

	br := s.PG.SendBatch(ctx, batch)
	defer br.Close()
	for range series.Obs {
		if _, err := br.Exec(); err != nil {
			s.logger.Error("store.pg.archive_failed",
				zap.String("series", series.Series),
				zap.Error(err))
			return err
		}
	}
	return nil
}

// RecordBuild inserts one build audit row.
func (s *HybridStore) RecordBuild(ctx context.Context, audit model.BuildAudit) error {
	if s.PG == nil {
		return nil
	}
	durations, err := json.Marshal(audit.Durations)
	if err != nil {
		return err
	}
	_, err = s.PG.Exec(ctx, `
		INSERT INTO rates.build_audit (
			id, first_date, last_date, rows, durations,
			started_at, finished_at, outcome, detail
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, audit.ID, audit.FirstDate, audit.LastDate, audit.Rows, durations,
		audit.StartedAt, audit.FinishedAt, audit.Outcome, audit.Detail)
	if err != nil {
		s.logger.Error("store.pg.audit_insert_failed", zap.Error(err))
	}
	return err
}

// ListBuilds returns the most recent build audit rows, newest first.
func (s *HybridStore) ListBuilds(ctx context.Context, limit int) ([]model.BuildAudit, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	rows, err := s.PG.Query(ctx, `
		SELECT id, first_date, last_date, rows, durations,
		       started_at, finished_at, outcome, detail
		FROM rates.build_audit
		ORDER BY started_at DESC
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []model.BuildAudit
	for rows.Next() {
		var a model.BuildAudit
		var durations []byte
		if err := rows.Scan(&a.ID, &a.FirstDate, &a.LastDate, &a.Rows, &durations,
			&a.StartedAt, &a.FinishedAt, &a.Outcome, &a.Detail); err != nil {
			return nil, err
		}
		if len(durations) > 0 {
			if err := json.Unmarshal(durations, &a.Durations); err != nil {
				return nil, err
			}
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
