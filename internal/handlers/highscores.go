package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/RFlame/Gemi-SaoLei/internal/mines"
	"github.com/RFlame/Gemi-SaoLei/internal/repository"
)

type HighscoreStore interface {
	GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error)
}

type Highscores struct {
	logger *slog.Logger
	store  HighscoreStore
}

func NewHighscores(logger *slog.Logger, store HighscoreStore) *Highscores {
	return &Highscores{logger: logger, store: store}
}

// ParseHighscoreFilter accepts a preset name or a "rows:cols:mines" seed.
func ParseHighscoreFilter(r *http.Request) (repository.HighscoreFilter, error) {
	query := r.URL.Query()
	var filter repository.HighscoreFilter

	if query.Has("difficulty") {
		d, err := mines.ParseSeed(query.Get("difficulty"))
		if err != nil {
			if d, err = mines.Preset(query.Get("difficulty")); err != nil {
				return filter, err
			}
		}
		filter.Difficulty = &d
	}

	if query.Has("username") {
		username := query.Get("username")
		filter.Username = &username
	}

	if query.Has("limit") {
		limit, err := strconv.Atoi(query.Get("limit"))
		if err != nil {
			return filter, mines.ErrMalformedParam
		}
		filter.Limit = limit
	}

	return filter, nil
}

func (h Highscores) Fetch(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseHighscoreFilter(r)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	highscores, err := h.store.GetHighscores(r.Context(), filter)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		internalError(w, h.logger, "failed to fetch highscores", err)
		return
	}
	if highscores == nil {
		highscores = []repository.Highscore{}
	}

	sendJSONOrLog(w, h.logger, highscores)
}
