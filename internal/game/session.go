package game

import (
	"errors"
	"time"

	"minesweeper_webapp/internal/domain"
)

var (
	ErrNoActiveGame  = errors.New("no active game")
	ErrGameOver      = errors.New("game is over")
	ErrOutOfBounds   = errors.New("coordinates out of bounds")
	ErrCellRevealed  = errors.New("cell already revealed")
	ErrCellFlagged   = errors.New("cell is flagged")
	ErrBadGridSize   = errors.New("grid size must be between 4 and 16")
	ErrBadDifficulty = errors.New("unknown difficulty")
	ErrBadTransition = errors.New("page transition not allowed")
)

const (
	MinGridSize     = 4
	MaxGridSize     = 16
	DefaultGridSize = 8

	// CommandGridSize is the fixed board size of the command path.
	CommandGridSize = 8

	// HintCells is how many cells one hint uncovers at most.
	HintCells = 3
)

// MoveResult reports the session-level consequences of a mutating move.
type MoveResult struct {
	Outcome RevealOutcome
	// Deferred holds planned reveals not applied yet, fed back later through
	// RevealDeferred (the gradual-reveal continuation).
	Deferred    []Coord
	Hinted      int
	Won         bool
	Lost        bool
	ScoreEarned int
	// DurationSeconds is how long the finished game ran; set only with Won or Lost.
	DurationSeconds int
}

// Engine applies the game rules to shared and per-player sessions. A single
// engine serves every instance; it owns the generator and random source.
type Engine struct {
	gen *Generator
	rnd Rand
	now func() int64
}

// NewEngine builds an engine over the given random source. Pass nil for the
// production crypto source.
func NewEngine(rnd Rand) *Engine {
	if rnd == nil {
		rnd = cryptoRand{}
	}
	return &Engine{
		gen: NewGenerator(rnd),
		rnd: rnd,
		now: func() int64 { return time.Now().Unix() },
	}
}

// Navigate moves the shared session between pages. Home and leaderboard are
// reachable from anywhere, setup only from home; game, win and lose are
// entered through the game flow, never directly.
func (e *Engine) Navigate(s *domain.SharedSession, to domain.Page) error {
	switch to {
	case domain.PageHome, domain.PageLeaderboard:
	case domain.PageSetup:
		if s.Page != domain.PageHome {
			return ErrBadTransition
		}
	default:
		return ErrBadTransition
	}
	s.Page = to
	return nil
}

// Configure stores the board parameters and enters the setup page.
func (e *Engine) Configure(s *domain.SharedSession, size int, d domain.Difficulty) error {
	if s.Page != domain.PageHome && s.Page != domain.PageSetup {
		return ErrBadTransition
	}
	if size < MinGridSize || size > MaxGridSize {
		return ErrBadGridSize
	}
	if _, ok := difficultyConfigs[d]; !ok {
		return ErrBadDifficulty
	}
	s.Page = domain.PageSetup
	s.GridSize = size
	s.Difficulty = d
	return nil
}

// Start generates a fresh board from the configured parameters and enters the
// game page. Allowed from setup and, as play-again, from win or lose.
func (e *Engine) Start(s *domain.SharedSession) error {
	switch s.Page {
	case domain.PageSetup, domain.PageWin, domain.PageLose:
	default:
		return ErrBadTransition
	}
	if s.GridSize == 0 {
		s.GridSize = DefaultGridSize
	}
	if s.Difficulty == "" {
		s.Difficulty = domain.DifficultyMedium
	}
	cfg := ConfigFor(s.Difficulty)
	grid, err := e.gen.Generate(s.GridSize, cfg.BombRate)
	if err != nil {
		return err
	}
	s.Grid = grid
	s.BombCount = BombCount(s.GridSize, cfg.BombRate)
	s.FlagCount = 0
	s.RevealedCount = 0
	s.MoveCount = 0
	s.GameOver = false
	s.StartTime = e.now()
	s.TimeElapsed = 0
	s.Page = domain.PageGame
	return nil
}

// RevealShared uncovers a cell on the shared board with the bounded-depth
// strategy for the session difficulty, applied in full.
func (e *Engine) RevealShared(doc *domain.GameDocument, actor *domain.PlayerProfile, row, col int) (MoveResult, error) {
	return e.revealShared(doc, actor, row, col, -1)
}

// RevealSharedStepped applies the origin and first ring now and returns the
// deeper coordinates in Deferred for a later RevealDeferred call.
func (e *Engine) RevealSharedStepped(doc *domain.GameDocument, actor *domain.PlayerProfile, row, col int) (MoveResult, error) {
	return e.revealShared(doc, actor, row, col, 1)
}

func (e *Engine) revealShared(doc *domain.GameDocument, actor *domain.PlayerProfile, row, col, applyDepth int) (MoveResult, error) {
	var res MoveResult
	s := &doc.Shared
	if s.Page != domain.PageGame || len(s.Grid) == 0 {
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

	cfg := ConfigFor(s.Difficulty)
	var out RevealOutcome
	if applyDepth < 0 {
		var strat RevealStrategy = BoundedDepth{Depth: cfg.FloodDepth}
		out = strat.Reveal(b, row, col)
	} else {
		out = planReveal(b, row, col, func(origin Coord) [][]Coord {
			return expandBounded(b, origin, cfg.FloodDepth)
		})
		out, res.Deferred = out.Split(applyDepth)
		applyReveal(b, out)
	}

	s.MoveCount++
	res.Outcome = out
	if out.HitBomb {
		e.finishSharedLoss(doc, actor)
		res.Lost = true
		res.Deferred = nil
		res.DurationSeconds = s.TimeElapsed
		return res, nil
	}
	s.RevealedCount += out.Count()
	if s.RevealedCount >= s.TotalSafeCells() {
		res.ScoreEarned = e.finishSharedWin(doc, actor)
		res.Won = true
		res.Deferred = nil
		res.DurationSeconds = s.TimeElapsed
	}
	return res, nil
}

// RevealDeferred applies coordinates planned by an earlier stepped reveal.
// Cells flagged or revealed in the meantime are skipped; no move is counted.
func (e *Engine) RevealDeferred(doc *domain.GameDocument, actor *domain.PlayerProfile, coords []Coord) (MoveResult, error) {
	var res MoveResult
	s := &doc.Shared
	if s.Page != domain.PageGame || len(s.Grid) == 0 {
		return res, ErrNoActiveGame
	}
	if s.GameOver {
		return res, ErrGameOver
	}
	b := Board{Cells: s.Grid, Size: s.GridSize}
	var ring []Coord
	for _, c := range coords {
		if !b.InBounds(c.Row, c.Col) {
			continue
		}
		cell := b.At(c.Row, c.Col)
		if cell.Revealed || cell.Flagged || cell.Kind == domain.CellBomb {
			continue
		}
		cell.Revealed = true
		ring = append(ring, c)
	}
	if len(ring) == 0 {
		return res, nil
	}
	s.RevealedCount += len(ring)
	res.Outcome = RevealOutcome{Rings: [][]Coord{ring}}
	if s.RevealedCount >= s.TotalSafeCells() {
		res.ScoreEarned = e.finishSharedWin(doc, actor)
		res.Won = true
		res.DurationSeconds = s.TimeElapsed
	}
	return res, nil
}

// FlagShared toggles the flag on an unrevealed cell of the shared board.
func (e *Engine) FlagShared(doc *domain.GameDocument, row, col int) error {
	s := &doc.Shared
	if s.Page != domain.PageGame || len(s.Grid) == 0 {
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

// HintShared picks up to three random unrevealed, unflagged, safe cells and
// uncovers each with the bounded-depth walk. The move count grows by the
// number of cells hinted, not by one.
func (e *Engine) HintShared(doc *domain.GameDocument, actor *domain.PlayerProfile) (MoveResult, error) {
	var res MoveResult
	s := &doc.Shared
	if s.Page != domain.PageGame || len(s.Grid) == 0 {
		return res, ErrNoActiveGame
	}
	if s.GameOver {
		return res, ErrGameOver
	}
	b := Board{Cells: s.Grid, Size: s.GridSize}

	var pool []Coord
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			cell := b.At(row, col)
			if !cell.Revealed && !cell.Flagged && cell.Kind != domain.CellBomb {
				pool = append(pool, Coord{Row: row, Col: col})
			}
		}
	}

	cfg := ConfigFor(s.Difficulty)
	var rings [][]Coord
	for hinted := 0; hinted < HintCells && len(pool) > 0; hinted++ {
		i := e.rnd.IntN(len(pool))
		target := pool[i]
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]

		// Earlier hints may have already uncovered the target; planReveal
		// then yields nothing.
		out := planReveal(b, target.Row, target.Col, func(origin Coord) [][]Coord {
			return expandBounded(b, origin, cfg.FloodDepth)
		})
		s.RevealedCount += applyReveal(b, out)
		rings = append(rings, out.Rings...)
		res.Hinted++
	}

	s.MoveCount += res.Hinted
	res.Outcome = RevealOutcome{Rings: rings}
	if s.RevealedCount >= s.TotalSafeCells() {
		res.ScoreEarned = e.finishSharedWin(doc, actor)
		res.Won = true
		res.DurationSeconds = s.TimeElapsed
	}
	return res, nil
}

func (e *Engine) finishSharedWin(doc *domain.GameDocument, actor *domain.PlayerProfile) int {
	s := &doc.Shared
	s.GameOver = true
	s.Page = domain.PageWin
	s.StreakCount++
	s.BestScores, _ = UpdateBest(s.BestScores, s.Difficulty, s.TimeElapsed, s.RevealedCount)
	earned := Score(s.TotalSafeCells(), s.Difficulty, s.TimeElapsed)
	if actor != nil {
		actor.TotalGamesPlayed++
		actor.TotalGamesWon++
		actor.Score += earned
	}
	return earned
}

func (e *Engine) finishSharedLoss(doc *domain.GameDocument, actor *domain.PlayerProfile) {
	s := &doc.Shared
	s.GameOver = true
	s.Page = domain.PageLose
	s.StreakCount = 0
	if actor != nil {
		actor.TotalGamesPlayed++
	}
}
