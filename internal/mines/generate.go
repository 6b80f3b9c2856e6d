package mines

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

func inSafeZone(row, col, safeRow, safeCol int) bool {
	return absDiff(row, safeRow) <= 1 && absDiff(col, safeCol) <= 1
}

// SafeZone lists the clicked cell and its in-bounds neighbours.
func SafeZone(rows, cols, safeRow, safeCol int) []Point {
	zone := make([]Point, 0, 9)
	for r := safeRow - 1; r <= safeRow+1; r++ {
		for c := safeCol - 1; c <= safeCol+1; c++ {
			if 0 <= r && r < rows && 0 <= c && c < cols {
				zone = append(zone, Point{r, c})
			}
		}
	}
	return zone
}

func SafeZoneSize(rows, cols, safeRow, safeCol int) int {
	return len(SafeZone(rows, cols, safeRow, safeCol))
}

// PlaceMines returns a copy of board with d.Mines mines placed outside the
// safe zone around (safeRow, safeCol) and every other cell numbered.
//
// Cells are drawn uniformly and rejected when already mined or inside the
// safe zone, so the caller must ensure d.Mines < rows*cols - |safe zone|
// (see [Difficulty.Validate]) or this never returns.
func PlaceMines(board Board, d Difficulty, safeRow, safeCol int, rnd *rand.Rand) Board {
	next := board.Clone()

	placed, attempts := 0, 0
	for placed < d.Mines {
		attempts++
		row, col := rnd.IntN(next.Rows), rnd.IntN(next.Cols)
		if inSafeZone(row, col, safeRow, safeCol) {
			continue
		}
		cell := &next.Cells[next.index(row, col)]
		if cell.IsMine() {
			continue
		}
		cell.Value = Mine
		placed++
	}

	for i := range next.Cells {
		cell := &next.Cells[i]
		if cell.IsMine() {
			continue
		}
		cell.Value = next.countNeighbors(cell.Row, cell.Col, Cell.IsMine)
	}

	Log.WithFields(logrus.Fields{
		"rows":     next.Rows,
		"cols":     next.Cols,
		"mines":    placed,
		"attempts": attempts,
		"safe":     Point{safeRow, safeCol},
	}).Debug("placed mines")

	return next
}

func absDiff(a, b int) int {
	if a < b {
		return b - a
	}
	return a - b
}
