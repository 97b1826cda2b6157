package game

import "minesweeper_webapp/internal/domain"

// Coord is a 0-based board coordinate.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// RevealOutcome reports what a reveal uncovered. Rings holds the newly
// revealed coordinates grouped by hop distance from the origin, ring 0 being
// the origin itself. A bomb hit carries no rings.
type RevealOutcome struct {
	HitBomb bool
	Rings   [][]Coord
}

// Count returns the total number of newly revealed cells.
func (o RevealOutcome) Count() int {
	n := 0
	for _, ring := range o.Rings {
		n += len(ring)
	}
	return n
}

// Split cuts the outcome after the given ring index: now covers rings up to
// and including it, later flattens everything deeper.
func (o RevealOutcome) Split(depth int) (now RevealOutcome, later []Coord) {
	if o.HitBomb || len(o.Rings) <= depth+1 {
		return o, nil
	}
	now = RevealOutcome{Rings: o.Rings[:depth+1]}
	for _, ring := range o.Rings[depth+1:] {
		later = append(later, ring...)
	}
	return now, later
}

// RevealStrategy uncovers cells starting from a target cell, mutating the
// board's Revealed flags and reporting what changed. The two variants behave
// differently around empty cells and are selected by session type: the shared
// interactive board uses BoundedDepth, per-player command boards use
// FloodFill.
type RevealStrategy interface {
	Reveal(b Board, row, col int) RevealOutcome
}

// BoundedDepth expands an empty origin outward over the 8-neighborhood up to
// Depth hops. Expansion is not limited to empty cells: numbered cells keep
// expanding until the depth runs out. Bombs, flagged and already revealed
// cells are left alone and never traversed through.
type BoundedDepth struct {
	Depth int
}

func (s BoundedDepth) Reveal(b Board, row, col int) RevealOutcome {
	out := planReveal(b, row, col, func(origin Coord) [][]Coord {
		return expandBounded(b, origin, s.Depth)
	})
	applyReveal(b, out)
	return out
}

// FloodFill is the classic unbounded reveal: expansion continues through
// empty cells only, numbered cells form the revealed border.
type FloodFill struct{}

func (FloodFill) Reveal(b Board, row, col int) RevealOutcome {
	out := planReveal(b, row, col, func(origin Coord) [][]Coord {
		return expandFlood(b, origin)
	})
	applyReveal(b, out)
	return out
}

// planReveal resolves the target cell without mutating the board: a bomb hit,
// a single numbered reveal, or an empty origin handed to the strategy's
// expansion walk.
func planReveal(b Board, row, col int, expand func(origin Coord) [][]Coord) RevealOutcome {
	var out RevealOutcome
	if !b.InBounds(row, col) {
		return out
	}
	cell := b.At(row, col)
	if cell.Revealed || cell.Flagged {
		return out
	}
	origin := Coord{Row: row, Col: col}
	switch cell.Kind {
	case domain.CellBomb:
		out.HitBomb = true
	case domain.CellNumber:
		out.Rings = [][]Coord{{origin}}
	default:
		out.Rings = append([][]Coord{{origin}}, expand(origin)...)
	}
	return out
}

// expandBounded is a depth-limited BFS over the 8-neighborhood.
func expandBounded(b Board, origin Coord, depth int) [][]Coord {
	visited := map[Coord]bool{origin: true}
	frontier := []Coord{origin}
	var rings [][]Coord

	for hop := 1; hop <= depth && len(frontier) > 0; hop++ {
		var ring []Coord
		for _, cur := range frontier {
			for _, d := range neighborOffsets {
				next := Coord{Row: cur.Row + d[0], Col: cur.Col + d[1]}
				if !b.InBounds(next.Row, next.Col) || visited[next] {
					continue
				}
				visited[next] = true
				cell := b.At(next.Row, next.Col)
				if cell.Revealed || cell.Flagged || cell.Kind == domain.CellBomb {
					continue
				}
				ring = append(ring, next)
			}
		}
		if len(ring) == 0 {
			break
		}
		rings = append(rings, ring)
		frontier = ring
	}
	return rings
}

// expandFlood walks the empty component with an explicit queue and visited
// set. Every unrevealed, unflagged neighbor of an empty cell is taken; only
// empty cells expand further. Neighbors of an empty cell are never bombs.
func expandFlood(b Board, origin Coord) [][]Coord {
	type item struct {
		at  Coord
		hop int
	}
	visited := map[Coord]bool{origin: true}
	queue := []item{{at: origin}}
	var rings [][]Coord

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.hop > 0 && b.At(cur.at.Row, cur.at.Col).Kind != domain.CellEmpty {
			continue
		}
		for _, d := range neighborOffsets {
			next := Coord{Row: cur.at.Row + d[0], Col: cur.at.Col + d[1]}
			if !b.InBounds(next.Row, next.Col) || visited[next] {
				continue
			}
			visited[next] = true
			cell := b.At(next.Row, next.Col)
			if cell.Revealed || cell.Flagged {
				continue
			}
			for len(rings) <= cur.hop {
				rings = append(rings, nil)
			}
			rings[cur.hop] = append(rings[cur.hop], next)
			queue = append(queue, item{at: next, hop: cur.hop + 1})
		}
	}
	return rings
}

// applyReveal marks the planned coordinates revealed and returns how many
// cells changed. A bomb hit instead uncovers the full mine layout.
func applyReveal(b Board, out RevealOutcome) int {
	if out.HitBomb {
		revealAllBombs(b)
		return 0
	}
	n := 0
	for _, ring := range out.Rings {
		for _, c := range ring {
			cell := b.At(c.Row, c.Col)
			if !cell.Revealed {
				cell.Revealed = true
				n++
			}
		}
	}
	return n
}

func revealAllBombs(b Board) {
	for i := range b.Cells {
		if b.Cells[i].Kind == domain.CellBomb {
			b.Cells[i].Revealed = true
		}
	}
}
