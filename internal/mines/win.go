package mines

// CheckWin reports whether the only covered cells left are as many as the
// mines. Flags are not checked for correctness: once every safe cell is open
// the game is won whatever the player has flagged.
func CheckWin(board Board, mines int) bool {
	covered := 0
	for _, c := range board.Cells {
		if c.State.Covered() {
			covered++
		}
	}
	return covered == mines
}
