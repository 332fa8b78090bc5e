package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the signed session token
const SessionCookieName = "chart_session"

const sessionContextKey = "session_id"

// SessionClaims represents the session token claims
type SessionClaims struct {
	SessionID uuid.UUID `json:"sid"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates HS256 session tokens
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessionManager creates a manager. ttl is the token lifetime, renewed
// on activity once half of it has passed.
func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Issue signs a token for sessionID
func (m *SessionManager) Issue(sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates a token and returns its claims
func (m *SessionManager) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == uuid.Nil {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}

// Middleware attaches a session ID to every request, starting a new session
// when the cookie is missing, forged or expired
func (m *SessionManager) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var claims *SessionClaims
		if cookie, err := c.Cookie(SessionCookieName); err == nil {
			claims, _ = m.Parse(cookie.Value)
		}

		if claims == nil || m.needsRenewal(claims) {
			sessionID := uuid.New()
			if claims != nil {
				sessionID = claims.SessionID
			}
			if err := m.setCookie(c, sessionID); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start session")
			}
			c.Set(sessionContextKey, sessionID)
		} else {
			c.Set(sessionContextKey, claims.SessionID)
		}

		return next(c)
	}
}

func (m *SessionManager) needsRenewal(claims *SessionClaims) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return time.Until(claims.ExpiresAt.Time) < m.ttl/2
}

func (m *SessionManager) setCookie(c echo.Context, sessionID uuid.UUID) error {
	token, err := m.Issue(sessionID)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// GetSessionID extracts the session ID from echo context
func GetSessionID(c echo.Context) (uuid.UUID, error) {
	sessionID, ok := c.Get(sessionContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("session_id not found in context")
	}
	return sessionID, nil
}
