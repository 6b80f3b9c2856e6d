package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/RFlame/Gemi-SaoLei/internal/config"
	"github.com/RFlame/Gemi-SaoLei/internal/database"
	"github.com/RFlame/Gemi-SaoLei/internal/hint"
	"github.com/RFlame/Gemi-SaoLei/internal/middleware"
	"github.com/RFlame/Gemi-SaoLei/internal/mines"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	logger  *slog.Logger
	router  *http.ServeMux
	db      *pgxpool.Pool
	cookies *config.Cookies
	ws      *config.WebSocket
	hint    *hint.Client
}

func New(logger *slog.Logger) *App {
	return &App{
		logger: logger,
		router: http.NewServeMux(),
	}
}

func (a *App) setup(ctx context.Context) error {
	if err := config.SetupEngineLog(mines.Log); err != nil {
		return fmt.Errorf("unable to set up engine log: %w", err)
	}

	db, migrator, err := database.ConnectAndMigrate(ctx)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db
	if srcErr, dbErr := migrator.Close(); srcErr != nil || dbErr != nil {
		a.logger.Warn("unable to close migrator",
			slog.Any("source_error", srcErr),
			slog.Any("db_error", dbErr),
		)
	}

	jwt, err := config.NewJWT()
	if err != nil {
		return err
	}

	a.cookies, err = config.NewCookies(jwt)
	if err != nil {
		return err
	}

	a.ws, err = config.NewWebSocket()
	if err != nil {
		return err
	}

	hintConfig, err := config.NewHint()
	if err != nil {
		return err
	}
	a.hint = hint.New(*hintConfig, a.logger.With(slog.String("component", "hint")))
	if !a.hint.Enabled() {
		a.logger.Warn("HINT_API_KEY is not set, hints are disabled")
	}

	return nil
}

// Start serves until ctx is cancelled, then shuts the server down
// gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.setup(ctx); err != nil {
		return err
	}
	defer a.db.Close()

	a.loadRoutes()

	addr := config.Port()
	server := &http.Server{
		Addr: addr,
		Handler: middleware.Wrap(
			a.router,
			middleware.Logging(a.logger),
			middleware.Cors(config.CorsOrigins()...),
			middleware.Auth(a.logger, a.cookies),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
