package mines

// RevealAllMines opens every mine, flagged or not, and leaves the other
// cells alone.
func RevealAllMines(board Board) Board {
	next := board.Clone()
	for i := range next.Cells {
		if next.Cells[i].IsMine() {
			next.Cells[i].State = Revealed
		}
	}
	return next
}
