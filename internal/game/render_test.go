package game

import (
	"strings"
	"testing"

	"minesweeper_webapp/internal/domain"
)

func TestRenderBoardMasked(t *testing.T) {
	grid := makeGrid(t,
		"*.",
		"..",
	)
	b := Board{Cells: grid, Size: 2}
	b.At(0, 1).Flagged = true
	b.At(1, 0).Revealed = true

	got := RenderBoard(grid, 2, false)
	want := strings.Join([]string{
		"     1  2 ",
		"    ------",
		" 1 | ▢  🚩 ",
		" 2 | 1  ▢ ",
	}, "\n") + "\n"
	if got != want {
		t.Fatalf("masked render:\n%q\nwant\n%q", got, want)
	}
}

func TestRenderBoardFullShowsBombs(t *testing.T) {
	grid := makeGrid(t,
		"*.",
		"..",
	)
	b := Board{Cells: grid, Size: 2}
	b.At(0, 1).Flagged = true

	got := RenderBoard(grid, 2, true)
	want := strings.Join([]string{
		"     1  2 ",
		"    ------",
		" 1 | 💣  1 ",
		" 2 | 1  1 ",
	}, "\n") + "\n"
	if got != want {
		t.Fatalf("full render:\n%q\nwant\n%q", got, want)
	}
}

func TestRenderBoardBlankForRevealedEmpty(t *testing.T) {
	grid := makeGrid(t,
		"...",
		"...",
		"...",
	)
	b := Board{Cells: grid, Size: 3}
	b.At(1, 1).Revealed = true

	got := RenderBoard(grid, 3, false)
	lines := strings.Split(got, "\n")
	if lines[3] != " 2 | ▢     ▢ " {
		t.Fatalf("middle row = %q", lines[3])
	}
}

func TestRenderBoardTwoDigitHeaders(t *testing.T) {
	grid := make(domain.Grid, 10*10)
	for i := range grid {
		grid[i].Kind = domain.CellEmpty
	}

	got := RenderBoard(grid, 10, false)
	lines := strings.Split(got, "\n")
	if lines[0] != "     1  2  3  4  5  6  7  8  9 10 " {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[11], "10 |") {
		t.Fatalf("row 10 prefix = %q", lines[11])
	}
}
