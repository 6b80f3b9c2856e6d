package mines

// ToggleFlag flips a covered cell between hidden and flagged. A question mark
// is replaced by a flag. Revealed cells do not change.
func ToggleFlag(board Board, row, col int) Board {
	var state CellState
	switch board.At(row, col).State {
	case Hidden, Questioned:
		state = Flagged
	case Flagged:
		state = Hidden
	default:
		return board
	}
	next := board.Clone()
	next.Cells[next.index(row, col)].State = state
	return next
}

// CycleMark steps a covered cell through hidden, flagged and questioned.
func CycleMark(board Board, row, col int) Board {
	var state CellState
	switch board.At(row, col).State {
	case Hidden:
		state = Flagged
	case Flagged:
		state = Questioned
	case Questioned:
		state = Hidden
	default:
		return board
	}
	next := board.Clone()
	next.Cells[next.index(row, col)].State = state
	return next
}
