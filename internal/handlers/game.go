package handlers

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/RFlame/Gemi-SaoLei/internal/config"
	"github.com/RFlame/Gemi-SaoLei/internal/game"
	"github.com/RFlame/Gemi-SaoLei/internal/hint"
	"github.com/RFlame/Gemi-SaoLei/internal/middleware"
	"github.com/RFlame/Gemi-SaoLei/internal/mines"
	"github.com/RFlame/Gemi-SaoLei/internal/repository"
)

type GameStore interface {
	CreateGameSession(ctx context.Context, s *game.Session, playerId *int64) (*repository.GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionId int64) (*repository.GameSession, error)
	UpdateGameSession(ctx context.Context, gameSessionId int64, s *game.Session) (*repository.GameSession, error)
}

type Advisor interface {
	Suggest(ctx context.Context, board mines.Board, remaining int) *hint.Suggestion
}

type GameHandler struct {
	logger  *slog.Logger
	store   GameStore
	advisor Advisor
	ws      *config.WebSocket
	rnd     *rand.Rand
	locks   *sessionLocks
}

// NewGameHandler expects rnd to be safe for concurrent use.
func NewGameHandler(
	logger *slog.Logger,
	store GameStore,
	advisor Advisor,
	ws *config.WebSocket,
	rnd *rand.Rand,
) *GameHandler {
	return &GameHandler{
		logger:  logger,
		store:   store,
		advisor: advisor,
		ws:      ws,
		rnd:     rnd,
		locks:   newSessionLocks(),
	}
}

// sessionLocks serializes read-modify-write cycles on a single game session.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[int64]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[int64]*sessionLock)}
}

func (l *sessionLocks) lock(id int64) (unlock func()) {
	l.mu.Lock()
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func parseSessionId(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// load fetches and decodes a stored session, replying on failure.
func (g GameHandler) load(
	w http.ResponseWriter, r *http.Request, gameSessionId int64,
) (*game.Session, bool) {
	_, s, ok := g.loadStored(w, r, gameSessionId)
	return s, ok
}

func (g GameHandler) loadStored(
	w http.ResponseWriter, r *http.Request, gameSessionId int64,
) (*repository.GameSession, *game.Session, bool) {
	stored, err := g.store.FetchGameSession(r.Context(), gameSessionId)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return nil, nil, false
	}
	if err != nil {
		internalError(w, g.logger, "unable to fetch session from db", err)
		return nil, nil, false
	}

	s, err := stored.Decode()
	if err != nil {
		internalError(w, g.logger, "db returned invalid game_session.state", err)
		return nil, nil, false
	}
	return stored, s, true
}

func (g GameHandler) moveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameOver):
		sendError(w, g.logger, http.StatusConflict, err)
	case errors.Is(err, game.ErrOutOfBounds):
		sendError(w, g.logger, http.StatusBadRequest, err)
	default:
		internalError(w, g.logger, "unable to apply move", err)
	}
}

// update applies fn to the stored session under its lock and persists the
// result.
func (g GameHandler) update(
	w http.ResponseWriter, r *http.Request, fn func(*game.Session) error,
) {
	gameSessionId, err := parseSessionId(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	unlock := g.locks.lock(gameSessionId)
	defer unlock()

	s, ok := g.load(w, r, gameSessionId)
	if !ok {
		return
	}

	if err := fn(s); err != nil {
		g.moveError(w, err)
		return
	}

	if _, err := g.store.UpdateGameSession(r.Context(), gameSessionId, s); err != nil {
		internalError(w, g.logger, "unable to update session in db", err)
		return
	}

	sendJSONOrLog(w, g.logger, NewGameSessionDTO(gameSessionId, s))
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	d, err := ParseDifficulty(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	var playerId *int64
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		playerId = &claims.PlayerId
	}

	s := game.New(d)
	stored, err := g.store.CreateGameSession(r.Context(), s, playerId)
	if err != nil {
		internalError(w, g.logger, "unable to create game session", err)
		return
	}

	g.logger.Debug("created game session",
		slog.Int64("game_session_id", stored.GameSessionId),
		slog.String("difficulty", d.Seed()),
		slog.Bool("anonymous", playerId == nil),
	)

	sendJSONOrLog(w, g.logger, NewGameSessionDTO(stored.GameSessionId, s))
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	gameSessionId, err := parseSessionId(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s, ok := g.load(w, r, gameSessionId)
	if !ok {
		return
	}

	sendJSONOrLog(w, g.logger, NewGameSessionDTO(gameSessionId, s))
}

func (g GameHandler) applyMove(s *game.Session, move MoveDTO) error {
	switch move.Move {
	case Open:
		return s.Reveal(move.Row, move.Col, g.rnd)
	case Flag:
		return s.ToggleFlag(move.Row, move.Col)
	case Mark:
		return s.Mark(move.Row, move.Col)
	case Chord:
		return s.Chord(move.Row, move.Col)
	default:
		return ErrUnknownMove
	}
}

func (g GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	move, err := ParseMove(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	g.update(w, r, func(s *game.Session) error {
		return g.applyMove(s, move)
	})
}

func (g GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	g.update(w, r, func(s *game.Session) error {
		return s.Forfeit()
	})
}

// Reset starts over with the same difficulty. An unfinished game is reset
// in place. A finished one stays on record, highscores included, and the
// new game is stored under a new id.
func (g GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	gameSessionId, err := parseSessionId(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	unlock := g.locks.lock(gameSessionId)
	defer unlock()

	stored, s, ok := g.loadStored(w, r, gameSessionId)
	if !ok {
		return
	}

	if !s.Status.Over() {
		s.Reset()
		if _, err := g.store.UpdateGameSession(r.Context(), gameSessionId, s); err != nil {
			internalError(w, g.logger, "unable to update session in db", err)
			return
		}
		sendJSONOrLog(w, g.logger, NewGameSessionDTO(gameSessionId, s))
		return
	}

	next := game.New(s.Difficulty)
	created, err := g.store.CreateGameSession(r.Context(), next, stored.PlayerId)
	if err != nil {
		internalError(w, g.logger, "unable to create game session", err)
		return
	}

	g.logger.Debug("replaced finished game session",
		slog.Int64("game_session_id", gameSessionId),
		slog.Int64("new_game_session_id", created.GameSessionId),
		slog.String("status", s.Status.String()),
	)

	sendJSONOrLog(w, g.logger, NewGameSessionDTO(created.GameSessionId, next))
}

type HintDTO struct {
	Hint *hint.Suggestion `json:"hint"`
}

// Hint never fails because of the advisor: when no suggestion is available
// the reply carries a null hint.
func (g GameHandler) Hint(w http.ResponseWriter, r *http.Request) {
	gameSessionId, err := parseSessionId(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s, ok := g.load(w, r, gameSessionId)
	if !ok {
		return
	}

	var dto HintDTO
	if !s.Status.Over() {
		dto.Hint = g.advisor.Suggest(r.Context(), s.Board, s.RemainingMines())
	}

	sendJSONOrLog(w, g.logger, dto)
}
