package domain

import "strings"

// CellKind classifies a board cell
type CellKind string

const (
	CellEmpty  CellKind = "empty"
	CellBomb   CellKind = "bomb"
	CellNumber CellKind = "number"
)

// Cell is a single board cell. Kind is number iff Value > 0.
type Cell struct {
	Kind     CellKind `json:"kind"`
	Value    int      `json:"value"`
	Revealed bool     `json:"revealed"`
	Flagged  bool     `json:"flagged"`
}

// Grid is a row-major size*size sequence of cells. Topology (Kind/Value)
// never changes after generation, only Revealed/Flagged mutate.
type Grid []Cell

// Difficulty - game difficulty level
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// ParseDifficulty maps user input to a difficulty, reporting whether it
// matched. Matching ignores case.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToUpper(s)); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	}
	return "", false
}
