package httpserver

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zd8899/isitjustme/internal/domain"
	apperrors "github.com/zd8899/isitjustme/internal/errors"
)

func (s *Server) registerAuthRoutes() {
	s.echo.POST("/api/auth/register", s.handleRegister)
	s.echo.POST("/api/auth/login", s.handleLogin)
	s.echo.POST("/api/auth/logout", s.handleLogout)
	s.echo.GET("/api/auth/me", s.handleMe, s.requireAuth)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Karma    int64     `json:"karma"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Karma: u.Karma}
}

func (s *Server) handleRegister(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	user, err := s.app.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return apperrors.FromDomain(err)
	}

	if err := s.saveSession(c, user.ID); err != nil {
		return apperrors.InternalError("failed to create session", err)
	}

	if err := c.JSON(http.StatusCreated, toUserResponse(user)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleLogin(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	user, err := s.app.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return apperrors.FromDomain(err)
	}

	if err := s.saveSession(c, user.ID); err != nil {
		return apperrors.InternalError("failed to create session", err)
	}

	if err := c.JSON(http.StatusOK, toUserResponse(user)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	s.clearSession(c)
	if err := c.JSON(http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleMe(c echo.Context) error {
	userID, ok := c.Get("userID").(uuid.UUID)
	if !ok {
		return apperrors.InternalError("invalid user ID in context", nil)
	}

	user, err := s.app.GetUser(c.Request().Context(), userID)
	if err != nil {
		return apperrors.FromDomain(err)
	}

	if err := c.JSON(http.StatusOK, toUserResponse(user)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) saveSession(c echo.Context, userID uuid.UUID) error {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// A stale or tampered cookie still yields a fresh session value.
		session, _ = s.sessionStore.New(c.Request(), sessionName)
	}
	session.Values[sessionKeyUserID] = userID.String()
	return session.Save(c.Request(), c.Response().Writer)
}
