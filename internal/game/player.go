package game

import "minesweeper_webapp/internal/domain"

// StartPlayerGame reinitializes the player's embedded session with a fresh
// fixed-size board. Games played is counted here on start, not on completion.
func (e *Engine) StartPlayerGame(p *domain.PlayerProfile, d domain.Difficulty) error {
	if d == "" {
		d = domain.DifficultyMedium
	}
	if _, ok := difficultyConfigs[d]; !ok {
		return ErrBadDifficulty
	}
	cfg := ConfigFor(d)
	grid, err := e.gen.Generate(CommandGridSize, cfg.BombRate)
	if err != nil {
		return err
	}
	p.Session = &domain.PlayerSession{
		Grid:       grid,
		GridSize:   CommandGridSize,
		Difficulty: d,
		BombCount:  BombCount(CommandGridSize, cfg.BombRate),
		StartTime:  e.now(),
	}
	p.TotalGamesPlayed++
	return nil
}

// RevealPlayer uncovers a cell on the player's own board with the unbounded
// flood fill.
func (e *Engine) RevealPlayer(p *domain.PlayerProfile, row, col int) (MoveResult, error) {
	var res MoveResult
	s := p.Session
	if s == nil || len(s.Grid) == 0 {
		return res, ErrNoActiveGame
	}
	if s.GameOver {
		return res, ErrGameOver
	}
	b := Board{Cells: s.Grid, Size: s.GridSize}
	if !b.InBounds(row, col) {
		return res, ErrOutOfBounds
	}
	cell := b.At(row, col)
	if cell.Flagged {
		return res, ErrCellFlagged
	}
	if cell.Revealed {
		return res, ErrCellRevealed
	}

	var strat RevealStrategy = FloodFill{}
	out := strat.Reveal(b, row, col)
	s.MoveCount++
	res.Outcome = out
	if out.HitBomb {
		s.GameOver = true
		res.Lost = true
		res.DurationSeconds = int(e.now() - s.StartTime)
		return res, nil
	}
	s.RevealedCount += out.Count()
	if s.RevealedCount >= s.TotalSafeCells() {
		s.GameOver = true
		elapsed := int(e.now() - s.StartTime)
		res.ScoreEarned = Score(s.TotalSafeCells(), s.Difficulty, elapsed)
		p.Score += res.ScoreEarned
		p.TotalGamesWon++
		res.Won = true
		res.DurationSeconds = elapsed
	}
	return res, nil
}

// FlagPlayer toggles the flag on an unrevealed cell of the player's board.
func (e *Engine) FlagPlayer(p *domain.PlayerProfile, row, col int) error {
	s := p.Session
	if s == nil || len(s.Grid) == 0 {
		return ErrNoActiveGame
	}
	if s.GameOver {
		return ErrGameOver
	}
	b := Board{Cells: s.Grid, Size: s.GridSize}
	if !b.InBounds(row, col) {
		return ErrOutOfBounds
	}
	cell := b.At(row, col)
	if cell.Revealed {
		return ErrCellRevealed
	}
	cell.Flagged = !cell.Flagged
	if cell.Flagged {
		s.FlagCount++
	} else {
		s.FlagCount--
	}
	s.MoveCount++
	return nil
}
