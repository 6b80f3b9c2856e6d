package mines

import (
	"github.com/gammazero/deque"
)

// RevealCell opens the cell at (row, col) and reports whether it was a mine.
//
// Only hidden cells can be opened; anything else leaves the board as is and
// reports no hit. A mine is opened alone and marked as exploded. An empty
// cell opens its whole zero-valued region together with the numbered cells
// bordering it.
func RevealCell(board Board, row, col int) (Board, bool) {
	if board.At(row, col).State != Hidden {
		return board, false
	}

	next := board.Clone()
	start := &next.Cells[next.index(row, col)]
	start.State = Revealed

	if start.IsMine() {
		start.Exploded = true
		return next, true
	}

	if start.Value == 0 {
		floodFill(next, row, col)
	}

	return next, false
}

// floodFill opens the neighbours of the zero cell at (row, col), expanding
// breadth first through further zeros. A cell's Revealed state doubles as
// its visited mark, so no cell is queued twice.
func floodFill(b Board, row, col int) {
	var todo deque.Deque[int]
	todo.PushBack(b.index(row, col))

	for todo.Len() > 0 {
		i := todo.PopFront()
		cell := b.Cells[i]
		for _, p := range b.Neighbors(cell.Row, cell.Col) {
			j := b.index(p.Row, p.Col)
			if b.Cells[j].State != Hidden {
				continue
			}
			b.Cells[j].State = Revealed
			if b.Cells[j].Value == 0 {
				todo.PushBack(j)
			}
		}
	}
}

// Chord opens every hidden neighbour of a revealed number once the player
// has placed as many flags around it as the number says. Wrong flags mean
// a mine gets opened, which is reported like any other hit.
func Chord(board Board, row, col int) (Board, bool) {
	cell := board.At(row, col)
	if cell.State != Revealed || cell.IsMine() || cell.Value == 0 {
		return board, false
	}

	flags := board.countNeighbors(row, col, func(c Cell) bool {
		return c.State == Flagged
	})
	if flags != cell.Value {
		return board, false
	}

	next := board
	for _, p := range board.Neighbors(row, col) {
		var hit bool
		if next, hit = RevealCell(next, p.Row, p.Col); hit {
			return next, true
		}
	}
	return next, false
}
