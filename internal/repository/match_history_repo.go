package repository

import (
	"context"
	"time"

	"minesweeper_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ModeShared = "shared"
	ModeSolo   = "solo"

	ResultWin  = "win"
	ResultLose = "lose"
)

// Match is one finished game from either surface.
type Match struct {
	ID              int64             `json:"id"`
	InstanceKey     string            `json:"instance_key"`
	PlayerID        string            `json:"player_id"`
	Mode            string            `json:"mode"`
	Difficulty      domain.Difficulty `json:"difficulty"`
	Result          string            `json:"result"`
	DurationSeconds int               `json:"duration_seconds"`
	Revealed        int               `json:"revealed"`
	Score           int               `json:"score"`
	CreatedAt       time.Time         `json:"created_at"`
}

// MatchArchive records finished games and serves the history endpoint.
// Writes are fire-and-forget at the call sites: errors are logged there,
// never surfaced to the player.
type MatchArchive interface {
	Record(ctx context.Context, m *Match) error
	RecentByInstance(ctx context.Context, instanceKey string, limit int) ([]*Match, error)
}

type MatchHistoryRepository struct {
	db *pgxpool.Pool
}

func NewMatchHistoryRepository(db *pgxpool.Pool) *MatchHistoryRepository {
	return &MatchHistoryRepository{db: db}
}

func (r *MatchHistoryRepository) Record(ctx context.Context, m *Match) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO match_history
			(instance_key, player_id, mode, difficulty, result, duration_seconds, revealed, score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		m.InstanceKey,
		m.PlayerID,
		m.Mode,
		m.Difficulty,
		m.Result,
		m.DurationSeconds,
		m.Revealed,
		m.Score,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *MatchHistoryRepository) RecentByInstance(ctx context.Context, instanceKey string, limit int) ([]*Match, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, instance_key, player_id, mode, difficulty, result,
				duration_seconds, revealed, score, created_at
		 FROM match_history
		 WHERE instance_key = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		instanceKey, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(
			&m.ID, &m.InstanceKey, &m.PlayerID, &m.Mode, &m.Difficulty,
			&m.Result, &m.DurationSeconds, &m.Revealed, &m.Score, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &m)
	}

	return result, rows.Err()
}

// NopArchive is wired in when no database is configured.
type NopArchive struct{}

func (NopArchive) Record(ctx context.Context, m *Match) error { return nil }

func (NopArchive) RecentByInstance(ctx context.Context, instanceKey string, limit int) ([]*Match, error) {
	return nil, nil
}
