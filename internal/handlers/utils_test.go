package handlers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"log/slog"
	mrand "math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/RFlame/Gemi-SaoLei/internal/config"
	"github.com/RFlame/Gemi-SaoLei/internal/game"
	"github.com/RFlame/Gemi-SaoLei/internal/hint"
	"github.com/RFlame/Gemi-SaoLei/internal/mines"
	"github.com/RFlame/Gemi-SaoLei/internal/repository"
)

type fakeStore struct {
	mu       sync.Mutex
	sessions map[int64]repository.GameSession
	players  map[string]repository.Player
	nextId   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[int64]repository.GameSession),
		players:  make(map[string]repository.Player),
	}
}

func (f *fakeStore) CreateGameSession(
	ctx context.Context, s *game.Session, playerId *int64,
) (*repository.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	f.nextId++
	stored := repository.GameSession{
		GameSessionId: f.nextId,
		PlayerId:      playerId,
		Difficulty:    s.Difficulty.Name,
		BoardRows:     int32(s.Difficulty.Rows),
		BoardCols:     int32(s.Difficulty.Cols),
		MineCount:     int32(s.Difficulty.Mines),
		Status:        s.Status.String(),
		State:         state,
	}
	f.sessions[stored.GameSessionId] = stored
	return &stored, nil
}

func (f *fakeStore) FetchGameSession(ctx context.Context, gameSessionId int64) (*repository.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[gameSessionId]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &stored, nil
}

func (f *fakeStore) UpdateGameSession(
	ctx context.Context, gameSessionId int64, s *game.Session,
) (*repository.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[gameSessionId]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	state, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	stored.Status = s.Status.String()
	stored.State = state
	f.sessions[gameSessionId] = stored
	return &stored, nil
}

func (f *fakeStore) session(t *testing.T, gameSessionId int64) *game.Session {
	t.Helper()
	stored, err := f.FetchGameSession(context.Background(), gameSessionId)
	require.NoError(t, err)
	s, err := stored.Decode()
	require.NoError(t, err)
	return s
}

func (f *fakeStore) CreatePlayer(
	ctx context.Context, params repository.CreatePlayerParams,
) (*repository.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.players[params.Username]; ok {
		return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	}
	f.nextId++
	p := repository.Player{
		PlayerId:     f.nextId,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
	}
	f.players[p.Username] = p
	return &p, nil
}

func (f *fakeStore) FetchPlayer(ctx context.Context, username string) (*repository.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

type fakeAdvisor struct {
	suggestion *hint.Suggestion
	calls      int
	remaining  int
}

func (a *fakeAdvisor) Suggest(ctx context.Context, board mines.Board, remaining int) *hint.Suggestion {
	a.calls++
	a.remaining = remaining
	return a.suggestion
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWebSocket() *config.WebSocket {
	return &config.WebSocket{
		Upgrader:     websocket.Upgrader{},
		ReadLimit:    4096,
		IdleTimeout:  time.Minute,
		WriteTimeout: time.Second,
	}
}

type gameFixture struct {
	store   *fakeStore
	advisor *fakeAdvisor
	handler *GameHandler
	mux     *http.ServeMux
}

func newGameFixture() *gameFixture {
	f := &gameFixture{
		store:   newFakeStore(),
		advisor: &fakeAdvisor{},
	}
	f.handler = NewGameHandler(
		discardLogger(), f.store, f.advisor, testWebSocket(),
		mrand.New(mrand.NewPCG(1, 2)),
	)
	f.mux = http.NewServeMux()
	f.mux.HandleFunc("POST /game", f.handler.NewGame)
	f.mux.HandleFunc("GET /game/{id}", f.handler.Fetch)
	f.mux.HandleFunc("POST /game/{id}/move", f.handler.MakeAMove)
	f.mux.HandleFunc("POST /game/{id}/forfeit", f.handler.Forfeit)
	f.mux.HandleFunc("POST /game/{id}/reset", f.handler.Reset)
	f.mux.HandleFunc("GET /game/{id}/hint", f.handler.Hint)
	f.mux.HandleFunc("/game/{id}/connect", f.handler.ConnectWS)
	return f
}

func (f *gameFixture) do(method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (f *gameFixture) newGame(t *testing.T, query string) *GameSessionDTO {
	t.Helper()
	w := f.do(http.MethodPost, "/game?"+query)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeJSON[*GameSessionDTO](t, w)
}

func testCookies(t *testing.T) *config.Cookies {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return config.NewCookiesWith(
		config.NewJWTWithKeys(key, &key.PublicKey, time.Hour),
		"localhost", false, http.SameSiteStrictMode,
	)
}

// firstHidden returns the coordinates of some cell that is still hidden.
func firstHidden(t *testing.T, dto *GameSessionDTO) (int, int) {
	t.Helper()
	for r, row := range dto.Board {
		for c, cell := range row {
			if cell.State == mines.Hidden.String() {
				return r, c
			}
		}
	}
	t.Fatal("no hidden cell")
	return 0, 0
}
