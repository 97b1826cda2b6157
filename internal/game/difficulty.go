package game

import "minesweeper_webapp/internal/domain"

// DifficultyConfig holds the board and scoring parameters of one difficulty.
type DifficultyConfig struct {
	BombRate   float64
	FloodDepth int
	Multiplier float64
}

var difficultyConfigs = map[domain.Difficulty]DifficultyConfig{
	domain.DifficultyEasy:   {BombRate: 0.10, FloodDepth: 2, Multiplier: 1.0},
	domain.DifficultyMedium: {BombRate: 0.15, FloodDepth: 1, Multiplier: 1.5},
	domain.DifficultyHard:   {BombRate: 0.20, FloodDepth: 1, Multiplier: 2.0},
}

// ConfigFor returns the parameters for a difficulty. Unknown values fall back
// to MEDIUM.
func ConfigFor(d domain.Difficulty) DifficultyConfig {
	if cfg, ok := difficultyConfigs[d]; ok {
		return cfg
	}
	return difficultyConfigs[domain.DifficultyMedium]
}
