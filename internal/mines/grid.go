package mines

import (
	"strconv"
	"strings"
)

// Mine is the Value of a cell holding a mine. Any other value is the number
// of mines among the cell's neighbours (0 to 8).
const Mine = -1

type CellState int8

const (
	Hidden CellState = iota
	Revealed
	Flagged
	Questioned
)

func (s CellState) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Revealed:
		return "revealed"
	case Flagged:
		return "flagged"
	case Questioned:
		return "questioned"
	default:
		return "unknown"
	}
}

// Covered reports whether the player cannot see the cell's value.
func (s CellState) Covered() bool {
	return s != Revealed
}

type Cell struct {
	Row, Col int
	Value    int
	State    CellState
	Exploded bool
}

func (c Cell) IsMine() bool {
	return c.Value == Mine
}

type Point struct {
	Row, Col int
}

// Board is a rows x cols grid stored row-major. Operations in this package
// never modify a Board they are given; they return a fresh copy instead.
type Board struct {
	Rows, Cols int
	Cells      []Cell
}

func CreateEmptyBoard(rows, cols int) Board {
	cells := make([]Cell, rows*cols)
	for r := range rows {
		for c := range cols {
			cells[r*cols+c] = Cell{Row: r, Col: c, State: Hidden}
		}
	}
	return Board{Rows: rows, Cols: cols, Cells: cells}
}

func (b Board) Clone() Board {
	cells := make([]Cell, len(b.Cells))
	copy(cells, b.Cells)
	return Board{Rows: b.Rows, Cols: b.Cols, Cells: cells}
}

func (b Board) InBounds(row, col int) bool {
	return 0 <= row && row < b.Rows && 0 <= col && col < b.Cols
}

func (b Board) index(row, col int) int {
	return row*b.Cols + col
}

// At returns the cell at (row, col). Coordinates must be in bounds.
func (b Board) At(row, col int) Cell {
	return b.Cells[b.index(row, col)]
}

// Neighbors lists the in-bounds cells around (row, col), not including
// the cell itself. There is no wraparound.
func (b Board) Neighbors(row, col int) []Point {
	points := make([]Point, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if b.InBounds(row+dr, col+dc) {
				points = append(points, Point{row + dr, col + dc})
			}
		}
	}
	return points
}

func (b Board) countNeighbors(row, col int, pred func(Cell) bool) int {
	n := 0
	for _, p := range b.Neighbors(row, col) {
		if pred(b.At(p.Row, p.Col)) {
			n++
		}
	}
	return n
}

func (b Board) MineCount() int {
	n := 0
	for _, c := range b.Cells {
		if c.IsMine() {
			n++
		}
	}
	return n
}

// Encode renders the player's view of the board one string per row: the
// digit of a revealed cell, 'F' for a flag and 'H' for anything still
// covered. Revealed mines are written as '*'.
func (b Board) Encode() []string {
	rows := make([]string, b.Rows)
	var sb strings.Builder
	for r := range b.Rows {
		sb.Reset()
		for c := range b.Cols {
			cell := b.At(r, c)
			switch {
			case cell.State == Flagged:
				sb.WriteByte('F')
			case cell.State.Covered():
				sb.WriteByte('H')
			case cell.IsMine():
				sb.WriteByte('*')
			default:
				sb.WriteString(strconv.Itoa(cell.Value))
			}
		}
		rows[r] = sb.String()
	}
	return rows
}

// String shows every cell regardless of its state. Useful when debugging
// generation.
func (b Board) String() string {
	var sb strings.Builder
	for r := range b.Rows {
		for c := range b.Cols {
			cell := b.At(r, c)
			switch {
			case cell.IsMine():
				sb.WriteString("* ")
			case cell.Value == 0:
				sb.WriteString(". ")
			default:
				sb.WriteString(strconv.Itoa(cell.Value) + " ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
