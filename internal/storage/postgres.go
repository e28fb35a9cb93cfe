package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dopust/internal/core"

	_ "github.com/lib/pq"
)

// PostgresStore persists day snapshots in a shared Postgres database.
type PostgresStore struct {
	db *sql.DB
}

var _ SnapshotStore = (*PostgresStore)(nil)

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runPostgresMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, username string, year int, types map[string]core.Classification, fetchedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM day_snapshots WHERE username = $1 AND year = $2`,
		username, year,
	); err != nil {
		return fmt.Errorf("clear previous snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO day_snapshots (username, year, day, classification, fetched_at)
		 VALUES ($1, $2, $3, $4, $5)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	stamp := fetchedAt.UTC().Format(time.RFC3339)
	for day, class := range types {
		if _, err := stmt.ExecContext(ctx, username, year, day, string(class), stamp); err != nil {
			return fmt.Errorf("insert day %s: %w", day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadSnapshot(ctx context.Context, username string, year int) (map[string]core.Classification, time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, classification, fetched_at FROM day_snapshots
		 WHERE username = $1 AND year = $2`,
		username, year,
	)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	types := make(map[string]core.Classification)
	var fetchedAt time.Time
	for rows.Next() {
		var day, class, stamp string
		if err := rows.Scan(&day, &class, &stamp); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan snapshot row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("parse fetched_at %q: %w", stamp, err)
		}
		if ts.After(fetchedAt) {
			fetchedAt = ts
		}
		types[day] = core.Classification(class)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("read snapshot rows: %w", err)
	}
	if len(types) == 0 {
		return nil, time.Time{}, ErrNotFound
	}
	return types, fetchedAt, nil
}

func (s *PostgresStore) ListStale(ctx context.Context, olderThan time.Time) ([]SnapshotKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, year FROM day_snapshots
		 GROUP BY username, year
		 HAVING MAX(fetched_at) < $1
		 ORDER BY username, year`,
		olderThan.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("query stale snapshots: %w", err)
	}
	defer rows.Close()

	var keys []SnapshotKey
	for rows.Next() {
		var k SnapshotKey
		if err := rows.Scan(&k.Username, &k.Year); err != nil {
			return nil, fmt.Errorf("scan stale snapshot: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read stale snapshots: %w", err)
	}
	return keys, nil
}
