package game

import "minesweeper_webapp/internal/domain"

// Score computes the points for a completed game:
// floor(totalSafeCells * 10 * multiplier / (elapsedMinutes + 1)).
// Awarded only on a win, added to the player's cumulative score.
func Score(totalSafeCells int, d domain.Difficulty, elapsedSeconds int) int {
	mult := ConfigFor(d).Multiplier
	minutes := float64(elapsedSeconds) / 60.0
	return int(float64(totalSafeCells) * 10 * mult / (minutes + 1))
}

// UpdateBest folds a finished game into the per-difficulty best records.
// A record is beaten by a strictly faster time, or by the same time with
// strictly more cells revealed. Returns the map (allocated on first record)
// and whether it changed.
func UpdateBest(best map[domain.Difficulty]domain.BestScore, d domain.Difficulty, elapsedSeconds, revealed int) (map[domain.Difficulty]domain.BestScore, bool) {
	prev, ok := best[d]
	improved := !ok ||
		elapsedSeconds < prev.TimeSeconds ||
		(elapsedSeconds == prev.TimeSeconds && revealed > prev.Revealed)
	if !improved {
		return best, false
	}
	if best == nil {
		best = make(map[domain.Difficulty]domain.BestScore)
	}
	best[d] = domain.BestScore{TimeSeconds: elapsedSeconds, Revealed: revealed}
	return best, true
}
