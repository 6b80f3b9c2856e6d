package mines

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckWin(t *testing.T) {
	b := boardFromLayout(
		"*..",
		"...",
		"..*",
	)
	assert.False(t, CheckWin(b, 2))

	b, _ = RevealCell(b, 0, 2)
	b, _ = RevealCell(b, 2, 0)
	assert.True(t, CheckWin(b, 2), "%v", b.Encode())

	flagged := ToggleFlag(b, 0, 0)
	assert.True(t, CheckWin(flagged, 2), "flags on mines still count as covered")
}

func TestCheckWinCountsFlagsAsCovered(t *testing.T) {
	b := boardFromLayout(
		"*.",
		"..",
	)
	b, _ = RevealCell(b, 0, 1)
	b, _ = RevealCell(b, 1, 0)
	assert.False(t, CheckWin(b, 1))

	b = ToggleFlag(b, 1, 1)
	assert.False(t, CheckWin(b, 1), "a flagged safe cell is still covered")

	b = ToggleFlag(b, 1, 1)
	b, _ = RevealCell(b, 1, 1)
	assert.True(t, CheckWin(b, 1))
}

func TestRevealAllMines(t *testing.T) {
	b := boardFromLayout(
		"*.*",
		"...",
		"*..",
	)
	b = ToggleFlag(b, 0, 0)
	b = ToggleFlag(b, 1, 1)

	all := RevealAllMines(b)

	for _, c := range all.Cells {
		if c.IsMine() {
			assert.Equal(t, Revealed, c.State)
		} else {
			assert.Equal(t, b.At(c.Row, c.Col).State, c.State)
		}
	}
	assert.Equal(t, Flagged, b.At(0, 0).State, "input board modified")
}

func TestToggleFlag(t *testing.T) {
	b := CreateEmptyBoard(2, 2)

	b = ToggleFlag(b, 0, 0)
	assert.Equal(t, Flagged, b.At(0, 0).State)
	b = ToggleFlag(b, 0, 0)
	assert.Equal(t, Hidden, b.At(0, 0).State)

	b, _ = RevealCell(b, 1, 1)
	assert.Equal(t, b, ToggleFlag(b, 1, 1))
}

func TestCycleMark(t *testing.T) {
	b := CreateEmptyBoard(1, 1)
	seen := []CellState{}
	for range 4 {
		b = CycleMark(b, 0, 0)
		seen = append(seen, b.At(0, 0).State)
	}
	assert.Equal(t, []CellState{Flagged, Questioned, Hidden, Flagged}, seen)
}

func TestEncode(t *testing.T) {
	b := boardFromLayout(
		"..*",
		"...",
	)
	b = ToggleFlag(b, 0, 2)
	b, _ = RevealCell(b, 1, 0)

	assert.Equal(t, []string{"01F", "01H"}, b.Encode())

	b = RevealAllMines(b)
	assert.Equal(t, []string{"01*", "01H"}, b.Encode())
}
