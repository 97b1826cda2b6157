package domain

// PlayerProfile holds a player's lifetime stats plus the embedded board of the
// command path. Session is nil while the player has no game in progress.
// Score, TotalGamesPlayed and TotalGamesWon only ever grow.
type PlayerProfile struct {
	ID               string         `json:"id"`
	Username         string         `json:"username"`
	Score            int            `json:"score"`
	TotalGamesPlayed int            `json:"total_games_played"`
	TotalGamesWon    int            `json:"total_games_won"`
	Session          *PlayerSession `json:"session,omitempty"`
}

// PlayerSession is a per-player board, independent from the shared one.
// Reinitialized in full on every play command.
type PlayerSession struct {
	Grid          Grid       `json:"grid"`
	GridSize      int        `json:"grid_size"`
	Difficulty    Difficulty `json:"difficulty"`
	BombCount     int        `json:"bomb_count"`
	FlagCount     int        `json:"flag_count"`
	RevealedCount int        `json:"revealed_count"`
	MoveCount     int        `json:"move_count"`
	GameOver      bool       `json:"game_over"`
	StartTime     int64      `json:"start_time"`
}

// TotalSafeCells is the number of cells that must be revealed to win.
func (s *PlayerSession) TotalSafeCells() int {
	return len(s.Grid) - s.BombCount
}
