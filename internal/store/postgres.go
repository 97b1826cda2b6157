package store

import (
	"context"
	"encoding/json"
	"errors"

	"minesweeper_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists documents in the game_documents table, one
// jsonb row per instance. The version column drives conditional saves
// through plain UPDATE ... WHERE version = $n. The pool is injected and
// stays owned by the caller (the archive repository shares it).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context, key string) (*domain.GameDocument, int64, error) {
	var (
		data    []byte
		version int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT doc, version FROM game_documents WHERE key = $1`,
		key,
	).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	var doc domain.GameDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, err
	}
	return &doc, version, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, doc *domain.GameDocument, expectVersion int64) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if expectVersion == 0 {
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO game_documents (key, doc, version)
			 VALUES ($1, $2, 1)
			 ON CONFLICT (key) DO NOTHING`,
			key, data,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
		return nil
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE game_documents
		 SET doc = $2, version = version + 1, updated_at = now()
		 WHERE key = $1 AND version = $3`,
		key, data, expectVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {}
