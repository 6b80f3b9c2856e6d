package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/schema"

	"github.com/RFlame/Gemi-SaoLei/internal/game"
	"github.com/RFlame/Gemi-SaoLei/internal/mines"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

type CreateNewGameDTO struct {
	Difficulty string `schema:"difficulty"`
	Rows       int    `schema:"rows"`
	Cols       int    `schema:"cols"`
	Mines      int    `schema:"mines"`
}

var ErrMissingDifficulty = errors.New("either difficulty or rows, cols and mines are required")

// ParseDifficulty reads a preset name or a custom rows/cols/mines triple.
func ParseDifficulty(src url.Values) (mines.Difficulty, error) {
	var dto CreateNewGameDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return mines.Difficulty{}, err
	}
	switch {
	case dto.Difficulty != "" && dto.Difficulty != "custom":
		return mines.Preset(dto.Difficulty)
	case dto.Rows == 0 && dto.Cols == 0 && dto.Mines == 0:
		return mines.Difficulty{}, ErrMissingDifficulty
	default:
		return mines.Custom(dto.Rows, dto.Cols, dto.Mines)
	}
}

type GameMove string

const (
	Open  GameMove = "open"
	Flag  GameMove = "flag"
	Mark  GameMove = "mark"
	Chord GameMove = "chord"
)

type MoveDTO struct {
	Move GameMove `schema:"move,required"`
	Row  int      `schema:"row,required"`
	Col  int      `schema:"col,required"`
}

var ErrUnknownMove = errors.New("unknown move")

func ParseMove(src url.Values) (MoveDTO, error) {
	var dto MoveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	switch dto.Move {
	case Open, Flag, Mark, Chord:
		return dto, nil
	default:
		return dto, fmt.Errorf("%w: %q", ErrUnknownMove, dto.Move)
	}
}

type CellDTO struct {
	State    string `json:"state"`
	Value    *int   `json:"value,omitempty"`
	Exploded bool   `json:"exploded,omitempty"`
}

type GameSessionDTO struct {
	GameSessionId  string      `json:"game_session_id"`
	Difficulty     string      `json:"difficulty"`
	Rows           int         `json:"rows"`
	Cols           int         `json:"cols"`
	MineCount      int         `json:"mine_count"`
	RemainingMines int         `json:"remaining_mines"`
	Status         string      `json:"status"`
	Board          [][]CellDTO `json:"board"`
	StartedAt      *int64      `json:"started_at,omitempty"`
	EndedAt        *int64      `json:"ended_at,omitempty"`
}

func unixMilliOrNil(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// NewBoardDTO shows values of revealed cells only.
func NewBoardDTO(b mines.Board) [][]CellDTO {
	board := make([][]CellDTO, b.Rows)
	for r := range b.Rows {
		board[r] = make([]CellDTO, b.Cols)
		for c := range b.Cols {
			cell := b.At(r, c)
			dto := CellDTO{State: cell.State.String(), Exploded: cell.Exploded}
			if cell.State == mines.Revealed {
				v := cell.Value
				dto.Value = &v
			}
			board[r][c] = dto
		}
	}
	return board
}

func NewGameSessionDTO(gameSessionId int64, s *game.Session) *GameSessionDTO {
	return &GameSessionDTO{
		GameSessionId:  strconv.FormatInt(gameSessionId, 10),
		Difficulty:     s.Difficulty.Name,
		Rows:           s.Difficulty.Rows,
		Cols:           s.Difficulty.Cols,
		MineCount:      s.Difficulty.Mines,
		RemainingMines: s.RemainingMines(),
		Status:         s.Status.String(),
		Board:          NewBoardDTO(s.Board),
		StartedAt:      unixMilliOrNil(s.StartedAt),
		EndedAt:        unixMilliOrNil(s.EndedAt),
	}
}
