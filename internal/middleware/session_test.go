package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false)
	id := uuid.New()

	token, err := m.Issue(id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SessionID != id {
		t.Fatalf("expected %s, got %s", id, claims.SessionID)
	}

	if _, err := NewSessionManager("other", time.Hour, false).Parse(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
	if _, err := NewSessionManager("secret", -time.Minute, false).Parse(mustIssue(t, NewSessionManager("secret", -time.Minute, false), id)); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func mustIssue(t *testing.T, m *SessionManager, id uuid.UUID) string {
	t.Helper()
	token, err := m.Issue(id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}

func runMiddleware(t *testing.T, m *SessionManager, cookie *http.Cookie) (uuid.UUID, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got uuid.UUID
	handler := m.Middleware(func(c echo.Context) error {
		id, err := GetSessionID(c)
		if err != nil {
			return err
		}
		got = id
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return got, rec
}

func TestMiddlewareStartsSession(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false)

	id, rec := runMiddleware(t, m, nil)
	if id == uuid.Nil {
		t.Fatalf("expected a session id")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName || !cookies[0].HttpOnly {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}

	again, rec2 := runMiddleware(t, m, cookies[0])
	if again != id {
		t.Fatalf("session should survive across requests")
	}
	if len(rec2.Result().Cookies()) != 0 {
		t.Fatalf("fresh token should not be reissued")
	}
}

func TestMiddlewareReplacesForgedCookie(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false)
	forged := &http.Cookie{Name: SessionCookieName, Value: mustIssue(t, NewSessionManager("attacker", time.Hour, false), uuid.New())}

	id, rec := runMiddleware(t, m, forged)
	if id == uuid.Nil || len(rec.Result().Cookies()) != 1 {
		t.Fatalf("forged cookie should start a new session")
	}
}

func TestGetSessionIDMissing(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, err := GetSessionID(c); err == nil {
		t.Fatalf("expected error without middleware")
	}
}
