package handlers

import (
	"context"
	"fmt"
	mrand "math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RFlame/Gemi-SaoLei/internal/config"
	"github.com/RFlame/Gemi-SaoLei/internal/game"
	"github.com/RFlame/Gemi-SaoLei/internal/hint"
	"github.com/RFlame/Gemi-SaoLei/internal/middleware"
	"github.com/RFlame/Gemi-SaoLei/internal/mines"
)

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		query string
		want  mines.Difficulty
		err   error
	}{
		{"difficulty=expert", mines.Expert, nil},
		{"difficulty=Beginner", mines.Beginner, nil},
		{"rows=5&cols=6&mines=7", mines.Difficulty{Name: "custom", Rows: 5, Cols: 6, Mines: 7}, nil},
		{"difficulty=custom&rows=5&cols=6&mines=7", mines.Difficulty{Name: "custom", Rows: 5, Cols: 6, Mines: 7}, nil},
		{"rows=4&cols=4&mines=0", mines.Difficulty{Name: "custom", Rows: 4, Cols: 4, Mines: 0}, nil},
		{"difficulty=nightmare", mines.Difficulty{}, mines.ErrUnknownPreset},
		{"rows=5&cols=5&mines=25", mines.Difficulty{}, mines.ErrTooManyMines},
		{"rows=0&cols=5&mines=1", mines.Difficulty{}, mines.ErrBadDimensions},
		{"", mines.Difficulty{}, ErrMissingDifficulty},
	}

	for _, test := range tests {
		t.Run(test.query, func(t *testing.T) {
			query, err := url.ParseQuery(test.query)
			require.NoError(t, err)

			d, err := ParseDifficulty(query)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, d)
		})
	}
}

func TestParseMove(t *testing.T) {
	query, _ := url.ParseQuery("move=chord&row=2&col=3")
	move, err := ParseMove(query)
	require.NoError(t, err)
	assert.Equal(t, MoveDTO{Move: Chord, Row: 2, Col: 3}, move)

	query, _ = url.ParseQuery("move=dig&row=2&col=3")
	_, err = ParseMove(query)
	assert.ErrorIs(t, err, ErrUnknownMove)

	query, _ = url.ParseQuery("move=open&row=2")
	_, err = ParseMove(query)
	assert.Error(t, err)
}

func TestNewBoardDTOMasksCoveredCells(t *testing.T) {
	board := mines.CreateEmptyBoard(2, 2)
	board.Cells[0].Value = mines.Mine
	board.Cells[1].Value = 1
	board.Cells[1].State = mines.Revealed
	board.Cells[2].Value = 1
	board.Cells[2].State = mines.Flagged

	dto := NewBoardDTO(board)

	assert.Nil(t, dto[0][0].Value)
	require.NotNil(t, dto[0][1].Value)
	assert.Equal(t, 1, *dto[0][1].Value)
	assert.Equal(t, "flagged", dto[1][0].State)
	assert.Nil(t, dto[1][0].Value)
}

func TestNewGame(t *testing.T) {
	f := newGameFixture()

	dto := f.newGame(t, "difficulty=beginner")

	assert.Equal(t, "1", dto.GameSessionId)
	assert.Equal(t, "beginner", dto.Difficulty)
	assert.Equal(t, "idle", dto.Status)
	assert.Equal(t, 10, dto.RemainingMines)
	assert.Nil(t, dto.StartedAt)
	require.Len(t, dto.Board, 9)
	for _, row := range dto.Board {
		require.Len(t, row, 9)
		for _, cell := range row {
			assert.Equal(t, "hidden", cell.State)
			assert.Nil(t, cell.Value)
		}
	}

	w := f.do(http.MethodPost, "/game?rows=3&cols=3&mines=9")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestNewGameForPlayer(t *testing.T) {
	f := newGameFixture()

	r := httptest.NewRequest(http.MethodPost, "/game?difficulty=intermediate", nil)
	r = r.WithContext(context.WithValue(
		r.Context(), middleware.CtxPlayerClaims, config.NewPlayerClaims(7, "bob"),
	))
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := f.store.FetchGameSession(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored.PlayerId)
	assert.Equal(t, int64(7), *stored.PlayerId)
}

func TestMakeAMove(t *testing.T) {
	f := newGameFixture()
	f.newGame(t, "difficulty=beginner")

	w := f.do(http.MethodPost, "/game/1/move?move=open&row=4&col=4")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dto := decodeJSON[*GameSessionDTO](t, w)

	assert.Equal(t, "playing", dto.Status)
	assert.NotNil(t, dto.StartedAt)
	require.NotNil(t, dto.Board[4][4].Value)
	assert.Equal(t, 0, *dto.Board[4][4].Value)
	assert.Equal(t, game.Playing, f.store.session(t, 1).Status)

	row, col := firstHidden(t, dto)
	w = f.do(http.MethodPost, fmt.Sprintf("/game/1/move?move=flag&row=%d&col=%d", row, col))
	require.Equal(t, http.StatusOK, w.Code)
	dto = decodeJSON[*GameSessionDTO](t, w)
	assert.Equal(t, "flagged", dto.Board[row][col].State)
	assert.Equal(t, 9, dto.RemainingMines)

	w = f.do(http.MethodGet, "/game/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto, decodeJSON[*GameSessionDTO](t, w))
}

func TestMakeAMoveErrors(t *testing.T) {
	f := newGameFixture()
	f.newGame(t, "difficulty=beginner")

	tests := []struct {
		target string
		status int
	}{
		{"/game/1/move?move=dig&row=0&col=0", http.StatusBadRequest},
		{"/game/1/move?move=open&row=9&col=0", http.StatusBadRequest},
		{"/game/1/move?move=open&row=-1&col=0", http.StatusBadRequest},
		{"/game/abc/move?move=open&row=0&col=0", http.StatusBadRequest},
		{"/game/42/move?move=open&row=0&col=0", http.StatusNotFound},
	}

	for _, test := range tests {
		t.Run(test.target, func(t *testing.T) {
			w := f.do(http.MethodPost, test.target)
			assert.Equal(t, test.status, w.Code, w.Body.String())
		})
	}

	assert.Equal(t, game.Idle, f.store.session(t, 1).Status)
}

func TestForfeitAndReset(t *testing.T) {
	f := newGameFixture()
	f.newGame(t, "difficulty=beginner")
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/game/1/move?move=open&row=4&col=4").Code)

	w := f.do(http.MethodPost, "/game/1/forfeit")
	require.Equal(t, http.StatusOK, w.Code)
	dto := decodeJSON[*GameSessionDTO](t, w)
	assert.Equal(t, "lost", dto.Status)
	assert.NotNil(t, dto.EndedAt)

	w = f.do(http.MethodPost, "/game/1/move?move=open&row=8&col=8")
	assert.Equal(t, http.StatusConflict, w.Code)
	w = f.do(http.MethodPost, "/game/1/forfeit")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPost, "/game/1/reset")
	require.Equal(t, http.StatusOK, w.Code)
	dto = decodeJSON[*GameSessionDTO](t, w)
	assert.Equal(t, "2", dto.GameSessionId)
	assert.Equal(t, "idle", dto.Status)
	assert.Nil(t, dto.EndedAt)
	assert.Equal(t, 0, f.store.session(t, 2).Board.MineCount())
	assert.Equal(t, game.Lost, f.store.session(t, 1).Status)
}

func TestResetUnfinishedGameInPlace(t *testing.T) {
	f := newGameFixture()
	f.newGame(t, "difficulty=beginner")
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/game/1/move?move=open&row=4&col=4").Code)

	w := f.do(http.MethodPost, "/game/1/reset")
	require.Equal(t, http.StatusOK, w.Code)
	dto := decodeJSON[*GameSessionDTO](t, w)
	assert.Equal(t, "1", dto.GameSessionId)
	assert.Equal(t, "idle", dto.Status)
	assert.Nil(t, dto.StartedAt)
	stored := f.store.session(t, 1)
	assert.Equal(t, game.Idle, stored.Status)
	assert.Equal(t, 0, stored.Board.MineCount())
	assert.True(t, stored.StartedAt.IsZero())

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/game/9/reset").Code)
}

func TestResetKeepsWonGame(t *testing.T) {
	f := newGameFixture()

	won := game.New(mines.Beginner)
	require.NoError(t, won.Reveal(4, 4, mrand.New(mrand.NewPCG(1, 2))))
	for _, c := range won.Board.Cells {
		if won.Status.Over() {
			break
		}
		if !c.IsMine() {
			require.NoError(t, won.Reveal(c.Row, c.Col, nil))
		}
	}
	require.Equal(t, game.Won, won.Status)

	playerId := int64(7)
	_, err := f.store.CreateGameSession(context.Background(), won, &playerId)
	require.NoError(t, err)

	w := f.do(http.MethodPost, "/game/1/reset")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dto := decodeJSON[*GameSessionDTO](t, w)
	assert.Equal(t, "2", dto.GameSessionId)
	assert.Equal(t, "idle", dto.Status)

	kept, err := f.store.FetchGameSession(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "won", kept.Status)
	record := f.store.session(t, 1)
	assert.Equal(t, game.Won, record.Status)
	assert.False(t, record.StartedAt.IsZero())
	assert.False(t, record.EndedAt.IsZero())

	next, err := f.store.FetchGameSession(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, next.PlayerId)
	assert.Equal(t, playerId, *next.PlayerId)
}

func TestHint(t *testing.T) {
	f := newGameFixture()
	f.newGame(t, "difficulty=beginner")

	w := f.do(http.MethodGet, "/game/1/hint")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hint": null}`, w.Body.String())
	assert.Equal(t, 1, f.advisor.calls)
	assert.Equal(t, 10, f.advisor.remaining)

	f.advisor.suggestion = &hint.Suggestion{Row: 1, Col: 2, Action: hint.Reveal, Reasoning: "safe"}
	w = f.do(http.MethodGet, "/game/1/hint")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"hint": {"row": 1, "col": 2, "action": "reveal", "reasoning": "safe"}}`,
		w.Body.String(),
	)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/game/1/forfeit").Code)
	w = f.do(http.MethodGet, "/game/1/hint")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hint": null}`, w.Body.String())
	assert.Equal(t, 2, f.advisor.calls, "finished games are not sent to the advisor")

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/game/2/hint").Code)
}

func TestSessionLocks(t *testing.T) {
	locks := newSessionLocks()

	unlock := locks.lock(1)
	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		locks.lock(1)()
	}()

	locks.lock(2)()
	select {
	case <-acquired:
		t.Fatal("second lock on the same session acquired early")
	default:
	}

	unlock()
	<-acquired
	assert.Empty(t, locks.locks)
}
