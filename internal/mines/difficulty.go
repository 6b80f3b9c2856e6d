package mines

import (
	"errors"
	"fmt"
	"strings"
)

type Difficulty struct {
	Name              string
	Rows, Cols, Mines int
}

var (
	Beginner     = Difficulty{Name: "beginner", Rows: 9, Cols: 9, Mines: 10}
	Intermediate = Difficulty{Name: "intermediate", Rows: 16, Cols: 16, Mines: 40}
	Expert       = Difficulty{Name: "expert", Rows: 16, Cols: 30, Mines: 99}
)

var Presets = []Difficulty{Beginner, Intermediate, Expert}

var (
	ErrBadDimensions  = errors.New("rows and cols must be positive")
	ErrTooManyMines   = errors.New("too many mines for the board")
	ErrBadMineCount   = errors.New("mine count must not be negative")
	ErrUnknownPreset  = errors.New("unknown difficulty")
	ErrMalformedParam = errors.New("malformed difficulty")
)

// MaxBoardSide bounds custom boards so rejection sampling stays cheap.
const MaxBoardSide = 64

func Preset(name string) (Difficulty, error) {
	for _, d := range Presets {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return Difficulty{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

func Custom(rows, cols, mines int) (Difficulty, error) {
	d := Difficulty{Name: "custom", Rows: rows, Cols: cols, Mines: mines}
	return d, d.Validate()
}

// Validate checks that mine placement terminates for any first click. The
// worst case is an interior click, which reserves a full 3x3 safe zone.
func (d Difficulty) Validate() error {
	if d.Rows <= 0 || d.Cols <= 0 || d.Rows > MaxBoardSide || d.Cols > MaxBoardSide {
		return ErrBadDimensions
	}
	if d.Mines < 0 {
		return ErrBadMineCount
	}
	if d.Mines > 0 && d.Mines >= d.Rows*d.Cols-SafeZoneSize(d.Rows, d.Cols, d.Rows/2, d.Cols/2) {
		return ErrTooManyMines
	}
	return nil
}

func (d Difficulty) ValidatePoint(row, col int) bool {
	return 0 <= row && row < d.Rows && 0 <= col && col < d.Cols
}

func (d Difficulty) Seed() string {
	return fmt.Sprintf("%d:%d:%d", d.Rows, d.Cols, d.Mines)
}

func ParseSeed(seed string) (Difficulty, error) {
	var rows, cols, mines int
	n, err := fmt.Sscanf(strings.ReplaceAll(seed, ":", " "), "%d %d %d", &rows, &cols, &mines)
	if n != 3 || err != nil {
		return Difficulty{}, fmt.Errorf("%w: %q", ErrMalformedParam, seed)
	}
	for _, p := range Presets {
		if p.Rows == rows && p.Cols == cols && p.Mines == mines {
			return p, nil
		}
	}
	return Custom(rows, cols, mines)
}
