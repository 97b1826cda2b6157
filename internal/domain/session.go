package domain

// Page - current page of the shared interactive session
type Page string

const (
	PageHome        Page = "home"
	PageSetup       Page = "setup"
	PageGame        Page = "game"
	PageWin         Page = "win"
	PageLose        Page = "lose"
	PageLeaderboard Page = "leaderboard"
)

// BestScore is the per-difficulty completion record. Absence of a difficulty
// key in SharedSession.BestScores means no record yet.
type BestScore struct {
	TimeSeconds int `json:"time"`
	Revealed    int `json:"revealed"`
}

// SharedSession is the single shared board of a game instance, owned by the
// interactive display flow.
type SharedSession struct {
	Page          Page                     `json:"page"`
	Grid          Grid                     `json:"grid,omitempty"`
	GridSize      int                      `json:"grid_size"`
	Difficulty    Difficulty               `json:"difficulty"`
	BombCount     int                      `json:"bomb_count"`
	FlagCount     int                      `json:"flag_count"`
	RevealedCount int                      `json:"revealed_count"`
	MoveCount     int                      `json:"move_count"`
	GameOver      bool                     `json:"game_over"`
	StartTime     int64                    `json:"start_time"` // unix seconds, 0 = not started
	TimeElapsed   int                      `json:"time_elapsed"`
	StreakCount   int                      `json:"streak_count"`
	BestScores    map[Difficulty]BestScore `json:"best_scores,omitempty"`
}

// TotalSafeCells is the number of cells that must be revealed to win.
func (s *SharedSession) TotalSafeCells() int {
	return len(s.Grid) - s.BombCount
}
