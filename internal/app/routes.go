package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"

	"github.com/RFlame/Gemi-SaoLei/internal/config"
	"github.com/RFlame/Gemi-SaoLei/internal/handlers"
	"github.com/RFlame/Gemi-SaoLei/internal/repository"
)

// lockedSource lets one generator serve concurrent requests.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func createRand() *rand.Rand {
	return rand.New(&lockedSource{src: rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	)})
}

// route registers h under "METHOD path" with the configured base path.
func (a *App) route(pattern string, h http.HandlerFunc) {
	method, path, found := strings.Cut(pattern, " ")
	if !found {
		a.router.HandleFunc(config.BasePath()+pattern, h)
		return
	}
	a.router.HandleFunc(method+" "+config.BasePath()+path, h)
}

func (a *App) loadRoutes() {
	repo := repository.New(a.db)

	game := handlers.NewGameHandler(a.logger, repo, a.hint, a.ws, createRand())
	auth := handlers.NewAuth(a.logger, repo, a.cookies)
	highscores := handlers.NewHighscores(a.logger, repo)

	a.route("POST /game", game.NewGame)
	a.route("GET /game/{id}", game.Fetch)
	a.route("POST /game/{id}/move", game.MakeAMove)
	a.route("POST /game/{id}/forfeit", game.Forfeit)
	a.route("POST /game/{id}/reset", game.Reset)
	a.route("GET /game/{id}/hint", game.Hint)
	a.route("/game/{id}/connect", game.ConnectWS)

	a.route("GET /highscores", highscores.Fetch)

	a.route("POST /register", auth.Register)
	a.route("POST /login", auth.Login)
	a.route("POST /logout", auth.Logout)
	a.route("GET /status", auth.Status)
}
