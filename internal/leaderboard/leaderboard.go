package leaderboard

import (
	"fmt"
	"sort"
	"strings"

	"minesweeper_webapp/internal/domain"
)

// Entry is one leaderboard row.
type Entry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Games    int    `json:"games"`
	Wins     int    `json:"wins"`
	WinRate  int    `json:"win_rate"` // whole percent
}

// Build derives the ranking from the player profiles, score descending.
// Equal scores order by username so the table is stable between reads.
func Build(players map[string]*domain.PlayerProfile) []Entry {
	entries := make([]Entry, 0, len(players))
	for _, p := range players {
		e := Entry{
			PlayerID: p.ID,
			Username: p.Username,
			Score:    p.Score,
			Games:    p.TotalGamesPlayed,
			Wins:     p.TotalGamesWon,
		}
		if e.Games > 0 {
			e.WinRate = e.Wins * 100 / e.Games
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Markdown renders the ranking as a Markdown table.
func Markdown(entries []Entry) string {
	var sb strings.Builder
	sb.WriteString("| Rank | Player | Score | Games | Wins | Win Rate |\n")
	sb.WriteString("|------|--------|-------|-------|------|----------|\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "| %d | %s | %d | %d | %d | %d%% |\n",
			e.Rank, e.Username, e.Score, e.Games, e.Wins, e.WinRate)
	}
	return sb.String()
}
