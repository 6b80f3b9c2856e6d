package game

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/RFlame/Gemi-SaoLei/internal/mines"
)

type Status int8

const (
	Idle Status = iota
	Playing
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

func (s Status) Over() bool {
	return s == Won || s == Lost
}

var (
	ErrGameOver    = errors.New("game is over")
	ErrOutOfBounds = errors.New("invalid cell coordinates")
)

// Session is the state of one game owned by its caller. Board is replaced on
// every move; a previously read Board is never modified.
type Session struct {
	Difficulty mines.Difficulty
	Board      mines.Board
	Status     Status
	StartedAt  time.Time
	EndedAt    time.Time
}

func New(d mines.Difficulty) *Session {
	return &Session{
		Difficulty: d,
		Board:      mines.CreateEmptyBoard(d.Rows, d.Cols),
		Status:     Idle,
	}
}

func Decode(buf []byte) (*Session, error) {
	var s Session
	if err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s Session) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Session) Reset() {
	*s = *New(s.Difficulty)
}

func (s *Session) check(row, col int) error {
	if s.Status.Over() {
		return ErrGameOver
	}
	if !s.Difficulty.ValidatePoint(row, col) {
		return ErrOutOfBounds
	}
	return nil
}

// Reveal opens a cell. The first reveal of a session lays the mines out
// around it, so the first click never loses.
func (s *Session) Reveal(row, col int, rnd *rand.Rand) error {
	if err := s.check(row, col); err != nil {
		return err
	}
	if s.Board.At(row, col).State != mines.Hidden {
		return nil
	}

	if s.Status == Idle {
		s.Board = mines.PlaceMines(s.Board, s.Difficulty, row, col, rnd)
		s.Status = Playing
		s.StartedAt = time.Now().UTC()
	}

	board, hit := mines.RevealCell(s.Board, row, col)
	s.settle(board, hit)
	return nil
}

func (s *Session) Chord(row, col int) error {
	if err := s.check(row, col); err != nil {
		return err
	}
	if s.Status != Playing {
		return nil
	}
	board, hit := mines.Chord(s.Board, row, col)
	s.settle(board, hit)
	return nil
}

func (s *Session) settle(board mines.Board, hit bool) {
	switch {
	case hit:
		s.Board = mines.RevealAllMines(board)
		s.end(Lost)
	case mines.CheckWin(board, s.Difficulty.Mines):
		s.Board = board
		s.end(Won)
	default:
		s.Board = board
	}
}

func (s *Session) ToggleFlag(row, col int) error {
	if err := s.check(row, col); err != nil {
		return err
	}
	s.Board = mines.ToggleFlag(s.Board, row, col)
	return nil
}

// Mark cycles a covered cell through flag, question mark and back.
func (s *Session) Mark(row, col int) error {
	if err := s.check(row, col); err != nil {
		return err
	}
	s.Board = mines.CycleMark(s.Board, row, col)
	return nil
}

// Forfeit ends a running game as lost and shows the mines. An idle game
// has no mines yet, so it only ends.
func (s *Session) Forfeit() error {
	if s.Status.Over() {
		return ErrGameOver
	}
	s.Board = mines.RevealAllMines(s.Board)
	s.end(Lost)
	return nil
}

func (s *Session) end(status Status) {
	s.Status = status
	s.EndedAt = time.Now().UTC()
	if s.StartedAt.IsZero() {
		s.StartedAt = s.EndedAt
	}
}

func (s Session) FlagsPlaced() int {
	n := 0
	for _, c := range s.Board.Cells {
		if c.State == mines.Flagged {
			n++
		}
	}
	return n
}

// RemainingMines is what the mine counter shows. It goes negative when
// the player places more flags than there are mines.
func (s Session) RemainingMines() int {
	return s.Difficulty.Mines - s.FlagsPlaced()
}

func (s Session) Playtime() time.Duration {
	switch {
	case s.StartedAt.IsZero():
		return 0
	case s.EndedAt.IsZero():
		return time.Since(s.StartedAt)
	default:
		return s.EndedAt.Sub(s.StartedAt)
	}
}
