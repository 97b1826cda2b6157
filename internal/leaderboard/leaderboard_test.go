package leaderboard

import (
	"strings"
	"testing"

	"minesweeper_webapp/internal/domain"
)

func TestBuildSortsByScore(t *testing.T) {
	players := map[string]*domain.PlayerProfile{
		"a": {ID: "a", Username: "alice", Score: 300, TotalGamesPlayed: 4, TotalGamesWon: 3},
		"b": {ID: "b", Username: "bob", Score: 900, TotalGamesPlayed: 10, TotalGamesWon: 4},
		"c": {ID: "c", Username: "carol", Score: 300, TotalGamesPlayed: 2, TotalGamesWon: 1},
		"d": {ID: "d", Username: "dave"},
	}

	entries := Build(players)
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	gotOrder := []string{entries[0].Username, entries[1].Username, entries[2].Username, entries[3].Username}
	wantOrder := []string{"bob", "alice", "carol", "dave"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("order = %v, want %v", gotOrder, wantOrder)
		}
	}

	for i, e := range entries {
		if e.Rank != i+1 {
			t.Fatalf("entry %d has rank %d", i, e.Rank)
		}
	}
	if entries[0].WinRate != 40 {
		t.Fatalf("bob win rate = %d%%, want 40%%", entries[0].WinRate)
	}
	if entries[3].WinRate != 0 {
		t.Fatalf("no games should mean 0%%, got %d%%", entries[3].WinRate)
	}
}

func TestMarkdownTable(t *testing.T) {
	entries := Build(map[string]*domain.PlayerProfile{
		"a": {ID: "a", Username: "alice", Score: 450, TotalGamesPlayed: 3, TotalGamesWon: 2},
	})

	md := Markdown(entries)
	lines := strings.Split(strings.TrimRight(md, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + divider + 1 row", len(lines))
	}
	if lines[0] != "| Rank | Player | Score | Games | Wins | Win Rate |" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[2] != "| 1 | alice | 450 | 3 | 2 | 66% |" {
		t.Fatalf("row = %q", lines[2])
	}
}
