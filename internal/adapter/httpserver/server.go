package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/zd8899/isitjustme/internal/adapter/metrics"
	"github.com/zd8899/isitjustme/internal/app"
	"github.com/zd8899/isitjustme/internal/domain"
	"github.com/zd8899/isitjustme/internal/platform/config"
	"github.com/zd8899/isitjustme/internal/ranking"
	"github.com/zd8899/isitjustme/internal/vote"
)

type appService interface {
	CastVote(ctx context.Context, target domain.TargetRef, voter domain.VoterID, value domain.VoteValue) (vote.Result, error)
	Feed(ctx context.Context, order ranking.Order, cursorToken string, limit int) (*app.FeedPage, error)
	CreatePost(ctx context.Context, authorID uuid.UUID, title, body string) (*domain.Post, error)
	GetPost(ctx context.Context, postID uuid.UUID) (*domain.Post, []*domain.Comment, error)
	CreateComment(ctx context.Context, postID, authorID uuid.UUID, body string) (*domain.Comment, error)
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app          appService
	sessionStore *sessions.CookieStore
	httpMetrics  *metrics.HTTPMetrics
	metricsHTTP  http.Handler
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app appService, httpMetrics *metrics.HTTPMetrics, metricsHandler http.Handler, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		sessionStore: setupSessionStore(cfg),
		httpMetrics:  httpMetrics,
		metricsHTTP:  metricsHandler,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Session and cookie keys
const (
	sessionName      = "isitjustme-session"
	sessionKeyUserID = "user_id"
	anonCookieName   = "anon_id"
)

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
