package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zd8899/isitjustme/internal/domain"
	apperrors "github.com/zd8899/isitjustme/internal/errors"
	"github.com/zd8899/isitjustme/internal/platform/correlation"
)

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// sessionUserID returns the logged-in user's ID, or uuid.Nil when the
// request has no valid session.
func (s *Server) sessionUserID(c echo.Context) uuid.UUID {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return uuid.Nil
	}
	idStr, ok := session.Values[sessionKeyUserID].(string)
	if !ok {
		return uuid.Nil
	}
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil
	}
	return userID
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := s.sessionUserID(c)
		if userID == uuid.Nil {
			return apperrors.UnauthorizedError("login required")
		}

		// Sessions referencing deleted accounts are invalidated here, not
		// trusted.
		if _, err := s.app.GetUser(c.Request().Context(), userID); err != nil {
			s.clearSession(c)
			return apperrors.UnauthorizedError("login required")
		}

		c.Set("userID", userID)
		return next(c)
	}
}

func (s *Server) clearSession(c echo.Context) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return
	}
	session.Options.MaxAge = -1
	_ = session.Save(c.Request(), c.Response().Writer)
}

// resolveVoter determines who is casting. An explicit anonymous id in the
// request always wins over the session; without either, an anon_id cookie
// identifies the visitor, minted on first use.
func (s *Server) resolveVoter(c echo.Context, explicitAnonID string) (domain.VoterID, error) {
	if explicitAnonID != "" {
		anonID, err := uuid.Parse(explicitAnonID)
		if err != nil || anonID == uuid.Nil {
			return domain.VoterID{}, apperrors.ValidationError("invalid anonymous_id").
				WithContext("anonymous_id", explicitAnonID)
		}
		return domain.AnonymousVoter(anonID), nil
	}

	if userID := s.sessionUserID(c); userID != uuid.Nil {
		return domain.RegisteredVoter(userID), nil
	}

	return domain.AnonymousVoter(s.anonCookieID(c)), nil
}

func (s *Server) anonCookieID(c echo.Context) uuid.UUID {
	if cookie, err := c.Cookie(anonCookieName); err == nil {
		if anonID, err := uuid.Parse(cookie.Value); err == nil && anonID != uuid.Nil {
			return anonID
		}
	}

	anonID := uuid.New()
	c.SetCookie(&http.Cookie{
		Name:     anonCookieName,
		Value:    anonID.String(),
		Path:     "/",
		MaxAge:   int(s.config.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.config.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	})
	return anonID
}
