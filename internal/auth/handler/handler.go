package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pdinteriors/catalog-service/internal/auth"
	"github.com/pdinteriors/catalog-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type Credentials struct {
	Username string
	Password string
}

type AuthHandler struct {
	sessions *auth.Sessions
	creds    Credentials
	secure   bool // mark cookies Secure outside dev
	logger   logger.ZapLogger
}

func NewAuthHandler(sessions *auth.Sessions, creds Credentials, secure bool, log logger.ZapLogger) *AuthHandler {
	return &AuthHandler{sessions: sessions, creds: creds, secure: secure, logger: log}
}

func (h *AuthHandler) Register(g *echo.Group) {
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	if h.creds.Username == "" || h.creds.Password == "" {
		h.logger.Error("admin credentials are not configured")
		return echo.NewHTTPError(http.StatusInternalServerError, "Admin credentials are not configured.")
	}

	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body.")
	}

	userOK := subtle.ConstantTimeCompare([]byte(payload.Username), []byte(h.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(payload.Password), []byte(h.creds.Password)) == 1
	if !userOK || !passOK {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials.")
	}

	token, expires, err := h.sessions.CreateSession(h.creds.Username)
	if err != nil {
		h.logger.Error("failed to issue session", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session.")
	}

	c.SetCookie(h.sessionCookie(token, int(time.Until(expires).Seconds())))
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "exp": expires.UnixMilli()})
}

// Session reports who is logged in; the UI calls it on load to restore state.
// Registered behind the session middleware.
func (h *AuthHandler) Session(c echo.Context) error {
	p := auth.PrincipalFrom(c)
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.")
	}
	return c.JSON(http.StatusOK, echo.Map{"username": p.Username})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
