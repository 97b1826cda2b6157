package game

import (
	"errors"
	"testing"

	"minesweeper_webapp/internal/domain"
)

// gameDoc wraps a crafted grid in a document sitting on the game page.
func gameDoc(grid domain.Grid, size int, d domain.Difficulty) *domain.GameDocument {
	doc := domain.NewGameDocument()
	doc.Shared = domain.SharedSession{
		Page:       domain.PageGame,
		Grid:       grid,
		GridSize:   size,
		Difficulty: d,
		BombCount:  countBombs(grid),
	}
	return doc
}

func TestNavigateTransitions(t *testing.T) {
	cases := []struct {
		from domain.Page
		to   domain.Page
		ok   bool
	}{
		{domain.PageHome, domain.PageSetup, true},
		{domain.PageHome, domain.PageLeaderboard, true},
		{domain.PageGame, domain.PageHome, true},
		{domain.PageWin, domain.PageHome, true},
		{domain.PageLose, domain.PageLeaderboard, true},
		{domain.PageLeaderboard, domain.PageHome, true},
		{domain.PageLeaderboard, domain.PageSetup, false},
		{domain.PageHome, domain.PageGame, false},
		{domain.PageHome, domain.PageWin, false},
		{domain.PageSetup, domain.PageLose, false},
	}

	e := newTestEngine(1)
	for _, tc := range cases {
		s := &domain.SharedSession{Page: tc.from}
		err := e.Navigate(s, tc.to)
		if tc.ok && err != nil {
			t.Fatalf("Navigate(%s -> %s): %v", tc.from, tc.to, err)
		}
		if !tc.ok {
			if !errors.Is(err, ErrBadTransition) {
				t.Fatalf("Navigate(%s -> %s) = %v, want ErrBadTransition", tc.from, tc.to, err)
			}
			if s.Page != tc.from {
				t.Fatalf("rejected navigation still moved page to %s", s.Page)
			}
		}
	}
}

func TestConfigureValidation(t *testing.T) {
	e := newTestEngine(1)

	s := &domain.SharedSession{Page: domain.PageHome}
	if err := e.Configure(s, 8, domain.DifficultyEasy); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if s.Page != domain.PageSetup || s.GridSize != 8 || s.Difficulty != domain.DifficultyEasy {
		t.Fatalf("Configure did not record setup: %+v", s)
	}

	// Reconfiguring on the setup page is allowed.
	if err := e.Configure(s, 10, domain.DifficultyHard); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}

	if err := e.Configure(s, 3, domain.DifficultyEasy); !errors.Is(err, ErrBadGridSize) {
		t.Fatalf("small grid: %v, want ErrBadGridSize", err)
	}
	if err := e.Configure(s, 17, domain.DifficultyEasy); !errors.Is(err, ErrBadGridSize) {
		t.Fatalf("large grid: %v, want ErrBadGridSize", err)
	}
	if err := e.Configure(s, 8, domain.Difficulty("NIGHTMARE")); !errors.Is(err, ErrBadDifficulty) {
		t.Fatalf("unknown difficulty: %v, want ErrBadDifficulty", err)
	}

	s.Page = domain.PageGame
	if err := e.Configure(s, 8, domain.DifficultyEasy); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("configure mid-game: %v, want ErrBadTransition", err)
	}
}

func TestStartGeneratesGame(t *testing.T) {
	e := newTestEngine(3)
	s := &domain.SharedSession{Page: domain.PageHome}

	if err := e.Start(s); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("start from home: %v, want ErrBadTransition", err)
	}

	if err := e.Configure(s, 8, domain.DifficultyMedium); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := e.Start(s); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if s.Page != domain.PageGame {
		t.Fatalf("page = %s, want game", s.Page)
	}
	if len(s.Grid) != 64 {
		t.Fatalf("grid has %d cells, want 64", len(s.Grid))
	}
	if s.BombCount != 9 {
		t.Fatalf("bomb count = %d, want 9", s.BombCount)
	}
	if got := countBombs(s.Grid); got != 9 {
		t.Fatalf("grid holds %d bombs, want 9", got)
	}
	if s.RevealedCount != 0 || s.FlagCount != 0 || s.MoveCount != 0 || s.GameOver {
		t.Fatalf("counters not zeroed: %+v", s)
	}
	if s.StartTime == 0 || s.TimeElapsed != 0 {
		t.Fatalf("timer fields wrong: start=%d elapsed=%d", s.StartTime, s.TimeElapsed)
	}
}

func TestStartAgainFromWinAndLose(t *testing.T) {
	e := newTestEngine(4)
	for _, page := range []domain.Page{domain.PageWin, domain.PageLose} {
		s := &domain.SharedSession{Page: page, GridSize: 8, Difficulty: domain.DifficultyEasy, GameOver: true}
		if err := e.Start(s); err != nil {
			t.Fatalf("Start from %s: %v", page, err)
		}
		if s.Page != domain.PageGame || s.GameOver {
			t.Fatalf("play again from %s left page=%s gameOver=%v", page, s.Page, s.GameOver)
		}
	}
}

func TestRevealSharedBombLoss(t *testing.T) {
	e := newTestEngine(5)
	grid := makeGrid(t,
		"*...",
		"....",
		"....",
		"...*",
	)
	doc := gameDoc(grid, 4, domain.DifficultyEasy)
	doc.Shared.StreakCount = 3
	actor := doc.EnsurePlayer("p1", "alice")

	res, err := e.RevealShared(doc, actor, 0, 0)
	if err != nil {
		t.Fatalf("RevealShared: %v", err)
	}
	if !res.Lost || res.Won {
		t.Fatalf("result = %+v, want loss", res)
	}
	s := &doc.Shared
	if !s.GameOver || s.Page != domain.PageLose {
		t.Fatalf("page=%s gameOver=%v after bomb", s.Page, s.GameOver)
	}
	if s.StreakCount != 0 {
		t.Fatalf("streak = %d, want 0", s.StreakCount)
	}
	if actor.TotalGamesPlayed != 1 || actor.TotalGamesWon != 0 {
		t.Fatalf("actor stats %+v", actor)
	}
	b := Board{Cells: s.Grid, Size: 4}
	if !b.At(0, 0).Revealed || !b.At(3, 3).Revealed {
		t.Fatalf("bombs not all revealed on loss")
	}
	if s.RevealedCount != 0 {
		t.Fatalf("revealedCount = %d after loss, want 0", s.RevealedCount)
	}
}

func TestRevealSharedWinExactlyAtLastSafeCell(t *testing.T) {
	e := newTestEngine(6)
	grid := makeGrid(t,
		"*...",
		"....",
		"....",
		"....",
	)
	doc := gameDoc(grid, 4, domain.DifficultyEasy)
	doc.Shared.TimeElapsed = 42
	actor := doc.EnsurePlayer("p1", "alice")

	// Reveal safe cells one by one; the win must not fire before the last.
	var last MoveResult
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if grid[row*4+col].Kind == domain.CellBomb {
				continue
			}
			if doc.Shared.Grid[row*4+col].Revealed {
				continue
			}
			if doc.Shared.GameOver && doc.Shared.RevealedCount < doc.Shared.TotalSafeCells() {
				t.Fatalf("game over before all safe cells revealed")
			}
			res, err := e.RevealShared(doc, actor, row, col)
			if err != nil {
				t.Fatalf("RevealShared(%d,%d): %v", row, col, err)
			}
			if res.Won && doc.Shared.RevealedCount != doc.Shared.TotalSafeCells() {
				t.Fatalf("won at %d/%d cells", doc.Shared.RevealedCount, doc.Shared.TotalSafeCells())
			}
			last = res
		}
	}

	s := &doc.Shared
	if !last.Won || !s.GameOver || s.Page != domain.PageWin {
		t.Fatalf("expected win, got page=%s gameOver=%v", s.Page, s.GameOver)
	}
	if s.StreakCount != 1 {
		t.Fatalf("streak = %d, want 1", s.StreakCount)
	}
	want := Score(15, domain.DifficultyEasy, 42)
	if last.ScoreEarned != want || actor.Score != want {
		t.Fatalf("score earned %d (actor %d), want %d", last.ScoreEarned, actor.Score, want)
	}
	if actor.TotalGamesPlayed != 1 || actor.TotalGamesWon != 1 {
		t.Fatalf("actor stats %+v", actor)
	}
	best, ok := s.BestScores[domain.DifficultyEasy]
	if !ok || best.TimeSeconds != 42 || best.Revealed != 15 {
		t.Fatalf("best record %+v ok=%v", best, ok)
	}
}

func TestRevealSharedValidation(t *testing.T) {
	e := newTestEngine(7)
	grid := makeGrid(t,
		"*...",
		"....",
		"....",
		"....",
	)
	doc := gameDoc(grid, 4, domain.DifficultyMedium)
	actor := doc.EnsurePlayer("p1", "alice")

	if _, err := e.RevealShared(doc, actor, 4, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("out of bounds: %v", err)
	}

	if err := e.FlagShared(doc, 2, 2); err != nil {
		t.Fatalf("FlagShared: %v", err)
	}
	if _, err := e.RevealShared(doc, actor, 2, 2); !errors.Is(err, ErrCellFlagged) {
		t.Fatalf("reveal flagged: %v, want ErrCellFlagged", err)
	}

	if _, err := e.RevealShared(doc, actor, 1, 1); err != nil {
		t.Fatalf("RevealShared: %v", err)
	}
	if _, err := e.RevealShared(doc, actor, 1, 1); !errors.Is(err, ErrCellRevealed) {
		t.Fatalf("reveal revealed: %v, want ErrCellRevealed", err)
	}

	doc.Shared.GameOver = true
	if _, err := e.RevealShared(doc, actor, 3, 3); !errors.Is(err, ErrGameOver) {
		t.Fatalf("reveal after game over: %v, want ErrGameOver", err)
	}

	doc.Shared.Page = domain.PageHome
	if _, err := e.RevealShared(doc, actor, 3, 3); !errors.Is(err, ErrNoActiveGame) {
		t.Fatalf("reveal off the game page: %v, want ErrNoActiveGame", err)
	}
}

func TestFlagSharedToggleAndRejectRevealed(t *testing.T) {
	e := newTestEngine(8)
	grid := makeGrid(t,
		"*...",
		"....",
		"....",
		"....",
	)
	doc := gameDoc(grid, 4, domain.DifficultyMedium)
	actor := doc.EnsurePlayer("p1", "alice")

	if err := e.FlagShared(doc, 0, 0); err != nil {
		t.Fatalf("FlagShared: %v", err)
	}
	if !doc.Shared.Grid[0].Flagged || doc.Shared.FlagCount != 1 {
		t.Fatalf("flag not set: %+v", doc.Shared)
	}
	if err := e.FlagShared(doc, 0, 0); err != nil {
		t.Fatalf("unflag: %v", err)
	}
	if doc.Shared.Grid[0].Flagged || doc.Shared.FlagCount != 0 {
		t.Fatalf("flag not toggled off")
	}

	if _, err := e.RevealShared(doc, actor, 1, 1); err != nil {
		t.Fatalf("RevealShared: %v", err)
	}
	before := doc.Shared.Grid[1*4+1]
	if err := e.FlagShared(doc, 1, 1); !errors.Is(err, ErrCellRevealed) {
		t.Fatalf("flag revealed cell: %v, want ErrCellRevealed", err)
	}
	if doc.Shared.Grid[1*4+1] != before {
		t.Fatalf("rejected flag still mutated the cell")
	}
}

func TestHintShared(t *testing.T) {
	e := newTestEngine(9)
	grid := makeGrid(t,
		"*...",
		"....",
		"....",
		"...*",
	)
	doc := gameDoc(grid, 4, domain.DifficultyMedium)
	actor := doc.EnsurePlayer("p1", "alice")

	res, err := e.HintShared(doc, actor)
	if err != nil {
		t.Fatalf("HintShared: %v", err)
	}
	if res.Hinted != HintCells {
		t.Fatalf("hinted %d cells, want %d", res.Hinted, HintCells)
	}
	if doc.Shared.MoveCount != HintCells {
		t.Fatalf("moveCount = %d, want %d", doc.Shared.MoveCount, HintCells)
	}
	b := Board{Cells: doc.Shared.Grid, Size: 4}
	if b.At(0, 0).Revealed || b.At(3, 3).Revealed {
		t.Fatalf("hint revealed a bomb")
	}
	if doc.Shared.RevealedCount == 0 {
		t.Fatalf("hint revealed nothing")
	}
	if doc.Shared.RevealedCount != countRevealed(doc.Shared.Grid) {
		t.Fatalf("revealedCount %d does not match grid (%d)", doc.Shared.RevealedCount, countRevealed(doc.Shared.Grid))
	}
}

func TestRevealSharedSteppedDefersDeepRings(t *testing.T) {
	e := newTestEngine(10)
	grid := makeGrid(t,
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
	doc := gameDoc(grid, 8, domain.DifficultyEasy)
	actor := doc.EnsurePlayer("p1", "alice")

	res, err := e.RevealSharedStepped(doc, actor, 4, 4)
	if err != nil {
		t.Fatalf("RevealSharedStepped: %v", err)
	}
	if got := res.Outcome.Count(); got != 9 {
		t.Fatalf("first step revealed %d cells, want 9", got)
	}
	if len(res.Deferred) != 16 {
		t.Fatalf("deferred %d cells, want the 16-cell outer ring", len(res.Deferred))
	}
	if doc.Shared.RevealedCount != 9 {
		t.Fatalf("revealedCount = %d after step, want 9", doc.Shared.RevealedCount)
	}

	// A flag placed between the steps wins over the continuation.
	blocked := res.Deferred[0]
	if err := e.FlagShared(doc, blocked.Row, blocked.Col); err != nil {
		t.Fatalf("FlagShared: %v", err)
	}

	cont, err := e.RevealDeferred(doc, actor, res.Deferred)
	if err != nil {
		t.Fatalf("RevealDeferred: %v", err)
	}
	if got := cont.Outcome.Count(); got != 15 {
		t.Fatalf("continuation revealed %d cells, want 15", got)
	}
	if doc.Shared.Grid[blocked.Row*8+blocked.Col].Revealed {
		t.Fatalf("continuation revealed a flagged cell")
	}
	if doc.Shared.RevealedCount != 24 {
		t.Fatalf("revealedCount = %d, want 24", doc.Shared.RevealedCount)
	}
	if doc.Shared.MoveCount != 2 {
		t.Fatalf("moveCount = %d, want 2 (reveal + flag, continuation free)", doc.Shared.MoveCount)
	}
}
