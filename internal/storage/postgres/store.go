package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crosspool/internal/model"
)

// Store provides Postgres persistence for pool events and exporter state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertEvents writes a batch of pool events. Replays of already stored
// (pool_address, seq) pairs are ignored, so the exporter can resume
// safely.
func (s *Store) InsertEvents(ctx context.Context, events []model.PoolEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
			INSERT INTO pool_events (
				pool_address, seq, event_type, actor, counterparty, asset,
				amount, value, shares, event_ts, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, to_timestamp($10), now())
			ON CONFLICT (pool_address, seq) DO NOTHING
		`,
			event.PoolAddress,
			int64(event.Seq),
			event.Type,
			event.Actor,
			nullable(event.Counterparty),
			nullable(event.Asset),
			event.Amount,
			nullable(event.Value),
			nullable(event.Shares),
			int64(event.Timestamp),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the last exported sequence number for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var seq uint64
	row := s.pool.QueryRow(ctx, `SELECT last_exported_seq FROM exporter_state WHERE name=$1`, name)
	if err := row.Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return seq, true, nil
}

// SaveState upserts the last exported sequence number for a name.
func (s *Store) SaveState(ctx context.Context, name string, seq uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO exporter_state (name, last_exported_seq, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_exported_seq = EXCLUDED.last_exported_seq, updated_at = now()
	`, name, seq)
	return err
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
