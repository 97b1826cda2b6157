package game

import (
	"fmt"
	"strings"

	"minesweeper_webapp/internal/domain"
)

const (
	glyphHidden = " ▢ "
	glyphFlag   = " 🚩 "
	glyphBomb   = " 💣 "
	glyphBlank  = "   "
)

// RenderBoard renders the monospace text view of a grid: a header row of
// 1-based column numbers, an underline, then one "NN |" prefixed line per
// row with a 3-character glyph per cell. With full set the complete layout,
// bombs included, is shown; otherwise unrevealed cells stay masked.
func RenderBoard(grid domain.Grid, size int, full bool) string {
	b := Board{Cells: grid, Size: size}
	var sb strings.Builder

	sb.WriteString("    ")
	for col := 1; col <= size; col++ {
		fmt.Fprintf(&sb, "%2d ", col)
	}
	sb.WriteByte('\n')
	sb.WriteString("    ")
	sb.WriteString(strings.Repeat("-", size*3))
	sb.WriteByte('\n')

	for row := 0; row < size; row++ {
		fmt.Fprintf(&sb, "%2d |", row+1)
		for col := 0; col < size; col++ {
			sb.WriteString(cellGlyph(b.At(row, col), full))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func cellGlyph(cell *domain.Cell, full bool) string {
	if !full && !cell.Revealed {
		if cell.Flagged {
			return glyphFlag
		}
		return glyphHidden
	}
	switch cell.Kind {
	case domain.CellBomb:
		return glyphBomb
	case domain.CellNumber:
		return fmt.Sprintf(" %d ", cell.Value)
	default:
		return glyphBlank
	}
}
