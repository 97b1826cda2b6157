package service

import "minesweeper_webapp/internal/domain"

// SnapshotCell is one board cell as clients see it. Value and bomb stay
// hidden until the cell is revealed or the game is over.
type SnapshotCell struct {
	Revealed bool `json:"revealed"`
	Flagged  bool `json:"flagged"`
	Value    int  `json:"value,omitempty"`
	Bomb     bool `json:"bomb,omitempty"`
}

// Snapshot is the client view of a shared session.
type Snapshot struct {
	Page          domain.Page                            `json:"page"`
	GridSize      int                                    `json:"grid_size,omitempty"`
	Difficulty    domain.Difficulty                      `json:"difficulty,omitempty"`
	Grid          []SnapshotCell                         `json:"grid,omitempty"`
	BombCount     int                                    `json:"bomb_count"`
	FlagCount     int                                    `json:"flag_count"`
	RevealedCount int                                    `json:"revealed_count"`
	SafeCells     int                                    `json:"safe_cells"`
	MoveCount     int                                    `json:"move_count"`
	GameOver      bool                                   `json:"game_over"`
	TimeElapsed   int                                    `json:"time_elapsed"`
	StreakCount   int                                    `json:"streak_count"`
	BestScores    map[domain.Difficulty]domain.BestScore `json:"best_scores,omitempty"`
}

// stateFrame is the push envelope the ws hub fans out.
type stateFrame struct {
	Type     string    `json:"type"`
	Instance string    `json:"instance"`
	State    *Snapshot `json:"state"`
}

func buildSnapshot(s *domain.SharedSession) *Snapshot {
	snap := &Snapshot{
		Page:          s.Page,
		GridSize:      s.GridSize,
		Difficulty:    s.Difficulty,
		BombCount:     s.BombCount,
		FlagCount:     s.FlagCount,
		RevealedCount: s.RevealedCount,
		MoveCount:     s.MoveCount,
		GameOver:      s.GameOver,
		TimeElapsed:   s.TimeElapsed,
		StreakCount:   s.StreakCount,
		BestScores:    s.BestScores,
	}
	if len(s.Grid) > 0 {
		snap.SafeCells = s.TotalSafeCells()
		snap.Grid = make([]SnapshotCell, len(s.Grid))
		for i := range s.Grid {
			cell := &s.Grid[i]
			sc := SnapshotCell{Revealed: cell.Revealed, Flagged: cell.Flagged}
			if cell.Revealed || s.GameOver {
				sc.Value = cell.Value
				sc.Bomb = cell.Kind == domain.CellBomb
			}
			snap.Grid[i] = sc
		}
	}
	return snap
}
