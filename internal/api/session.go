package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const sessionCookie = "svt_session"

type loginRequest struct {
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogin sets a token cookie. Without remember the cookie lives for the
// browser session only; the token inside still expires after the TTL.
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, http.StatusBadRequest, "invalid login body", nil)
	}
	if !s.auth.Check(req.Password) {
		return s.writeError(c, http.StatusUnauthorized, "incorrect password", nil)
	}

	token, expires, err := s.auth.IssueToken()
	if err != nil {
		s.log.Error("issue session token failed", zap.Error(err))
		return s.writeError(c, http.StatusInternalServerError, "could not start session", nil)
	}

	cookie := s.newCookie(token)
	if req.Remember {
		cookie.Expires = expires
		cookie.MaxAge = int(time.Until(expires).Seconds())
	}
	c.SetCookie(cookie)
	return writeJSON(c, http.StatusOK, map[string]any{"authenticated": true, "remember": req.Remember})
}

func (s *Server) handleLogout(c echo.Context) error {
	cookie := s.newCookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	c.SetCookie(cookie)
	return writeJSON(c, http.StatusOK, map[string]bool{"authenticated": false})
}

func (s *Server) handleSession(c echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]bool{"authenticated": s.authenticated(c)})
}

func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.authenticated(c) {
			return s.writeError(c, http.StatusUnauthorized, "login required", nil)
		}
		return next(c)
	}
}

func (s *Server) authenticated(c echo.Context) bool {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	if err := s.auth.VerifyToken(cookie.Value); err != nil {
		s.log.Debug("session token rejected", zap.Error(err))
		return false
	}
	return true
}

func (s *Server) newCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
