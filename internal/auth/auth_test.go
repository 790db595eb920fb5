package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestParseToken(t *testing.T) {
	token := signToken(t, testSecret, "user_1", time.Hour)
	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user_1" {
		t.Fatalf("expected subject user_1, got %q", claims.Subject)
	}
}

func TestParseTokenRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"wrong secret": signToken(t, "other-secret", "user_1", time.Hour),
		"expired":      signToken(t, testSecret, "user_1", -time.Hour),
		"no subject":   signToken(t, testSecret, "", time.Hour),
		"garbage":      "not.a.token",
	}
	for name, token := range cases {
		if _, err := ParseToken(testSecret, token); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestMiddlewareInjectsSubject(t *testing.T) {
	var gotSubject string
	handler := Middleware(testSecret, func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = Subject(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user_1", time.Hour))
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotSubject != "user_1" {
		t.Fatalf("expected subject user_1, got %q", gotSubject)
	}
}

func TestMiddlewareAcceptsQueryToken(t *testing.T) {
	called := false
	handler := Middleware(testSecret, func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/export/csv?token="+signToken(t, testSecret, "user_1", time.Hour), nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusOK || !called {
		t.Fatalf("expected handler to run, got status %d called=%v", rr.Code, called)
	}
}

func TestMiddlewareSetsDownloadCookie(t *testing.T) {
	handler := Middleware(testSecret, func(w http.ResponseWriter, r *http.Request) {})
	token := signToken(t, testSecret, "user_1", time.Hour)

	// Header-authenticated request seeds the cookie.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler(rr, req)

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "dl_token" {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != token {
		t.Fatalf("expected dl_token cookie with the verified token, got %v", rr.Result().Cookies())
	}
	if !cookie.HttpOnly {
		t.Fatal("dl_token cookie must be HttpOnly")
	}

	// The cookie alone authenticates the follow-up request.
	var gotSubject string
	handler = Middleware(testSecret, func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = Subject(r.Context())
	})
	req = httptest.NewRequest(http.MethodGet, "/export/csv?year=2024&month=3", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	handler(rr, req)
	if rr.Code != http.StatusOK || gotSubject != "user_1" {
		t.Fatalf("cookie auth failed: status=%d subject=%q", rr.Code, gotSubject)
	}
}

func TestMiddlewareRejectsMissingAndInvalidTokens(t *testing.T) {
	handler := Middleware(testSecret, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run without authentication")
	})

	// No token at all.
	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	// Invalid token.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr = httptest.NewRecorder()
	handler(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
