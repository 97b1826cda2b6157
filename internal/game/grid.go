package game

import (
	"crypto/rand"
	"errors"
	"math/big"

	"minesweeper_webapp/internal/domain"
)

// Rand is the random source used for bomb placement and hint selection.
// *math/rand/v2.Rand satisfies it, which is what tests inject.
type Rand interface {
	IntN(n int) int
}

// cryptoRand draws from crypto/rand, the production source.
type cryptoRand struct{}

func (cryptoRand) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0 // Fallback
	}
	return int(v.Int64())
}

// Board pairs a grid with its dimension for coordinate math.
type Board struct {
	Cells domain.Grid
	Size  int
}

var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

func (b Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Size && col >= 0 && col < b.Size
}

func (b Board) Index(row, col int) int {
	return row*b.Size + col
}

func (b Board) At(row, col int) *domain.Cell {
	return &b.Cells[b.Index(row, col)]
}

// Generator builds fresh boards: bomb placement plus adjacency numbering.
// A single generator serves both the shared and the per-player sessions.
type Generator struct {
	rnd Rand
}

func NewGenerator(rnd Rand) *Generator {
	if rnd == nil {
		rnd = cryptoRand{}
	}
	return &Generator{rnd: rnd}
}

// Generate builds a size*size grid with exactly floor(size²·bombRate) bombs.
// Placement is rejection sampling: draw a uniform cell, redraw on collision.
func (g *Generator) Generate(size int, bombRate float64) (domain.Grid, error) {
	if size < 1 {
		return nil, errors.New("grid size must be positive")
	}
	if bombRate < 0 || bombRate >= 1 {
		return nil, errors.New("bomb rate must be in [0, 1)")
	}

	total := size * size
	grid := make(domain.Grid, total)
	for i := range grid {
		grid[i].Kind = domain.CellEmpty
	}

	bombs := int(float64(total) * bombRate)
	placed := 0
	for placed < bombs {
		pos := g.rnd.IntN(total)
		if grid[pos].Kind == domain.CellBomb {
			continue
		}
		grid[pos].Kind = domain.CellBomb
		placed++
	}

	b := Board{Cells: grid, Size: size}
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			cell := b.At(row, col)
			if cell.Kind == domain.CellBomb {
				continue
			}
			n := 0
			for _, d := range neighborOffsets {
				nr, nc := row+d[0], col+d[1]
				if b.InBounds(nr, nc) && b.At(nr, nc).Kind == domain.CellBomb {
					n++
				}
			}
			cell.Value = n
			if n > 0 {
				cell.Kind = domain.CellNumber
			}
		}
	}

	return grid, nil
}

// BombCount is the exact number of bombs Generate places for the parameters.
func BombCount(size int, bombRate float64) int {
	return int(float64(size*size) * bombRate)
}
