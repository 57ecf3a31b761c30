package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psicoapp/agenda-service/internal/clock"
)

// PgStore keeps every collection in a single jsonb-backed table. Filtering
// goes through the shared Go matcher so FindByQuery behaves identically to
// the file and memory drivers. Write atomicity per record comes from row
// locks instead of the in-process mutex.
type PgStore struct {
	pool *pgxpool.Pool
	clk  clock.Clock
}

func NewPgStore(pool *pgxpool.Pool, clk clock.Clock) *PgStore {
	return &PgStore{pool: pool, clk: clk}
}

// Migrate creates the records table. Safe to run on every startup.
func (s *PgStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			seq        bigserial,
			collection text  NOT NULL,
			id         text  NOT NULL,
			data       jsonb NOT NULL,
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("migrate records table: %w", err)
	}
	return nil
}

func (s *PgStore) Create(ctx context.Context, collection string, rec Record) (Record, error) {
	stored := cloneRecord(rec)
	stored["id"] = uuid.NewString()
	stored["createdAt"] = s.clk.Now().UTC().Format(time.RFC3339)

	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO records (collection, id, data) VALUES ($1, $2, $3)`,
		collection, stored["id"], raw)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return stored, nil
}

func (s *PgStore) FindAll(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT data FROM records WHERE collection = $1 ORDER BY seq`, collection)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("parse record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *PgStore) FindByID(ctx context.Context, collection, id string) (Record, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM records WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return rec, nil
}

func (s *PgStore) Update(ctx context.Context, collection, id string, patch Record) (Record, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `
		SELECT data FROM records WHERE collection = $1 AND id = $2 FOR UPDATE`,
		collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock record: %w", err)
	}

	var merged Record
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	for k, v := range patch {
		merged[k] = v
	}
	merged["id"] = id
	merged["updatedAt"] = s.clk.Now().UTC().Format(time.RFC3339)

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE records SET data = $3 WHERE collection = $1 AND id = $2`,
		collection, id, out); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return merged, nil
}

func (s *PgStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM records WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PgStore) FindByQuery(ctx context.Context, collection string, query map[string]string) ([]Record, error) {
	all, err := s.FindAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return filterRecords(all, query), nil
}
