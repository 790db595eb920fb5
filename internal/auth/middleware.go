package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const subjectKey contextKey = "auth_subject"

// Subject returns the authenticated subject stored in ctx, if any.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok && s != ""
}

// WithSubject returns a context carrying the given subject. Exposed for
// handler tests that bypass the middleware.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// Middleware verifies the caller's token and injects the subject into the
// request context. The token is taken from the Authorization header first,
// then from a ?token= query parameter (downloads cannot set headers), then
// from the dl_token cookie. On success the verified token is echoed back as
// the dl_token cookie, so plain anchor navigations like the CSV download
// authenticate on follow-up requests without a header.
func Middleware(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			tokenStr = r.URL.Query().Get("token")
		}
		if tokenStr == "" {
			if cookie, err := r.Cookie("dl_token"); err == nil {
				tokenStr = cookie.Value
			}
		}

		if tokenStr == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		claims, err := ParseToken(secret, tokenStr)
		if err != nil {
			slog.WarnContext(r.Context(), "Token rejected", "error", err, "path", r.URL.Path)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		if cookie, err := r.Cookie("dl_token"); err != nil || cookie.Value != tokenStr {
			http.SetCookie(w, &http.Cookie{
				Name:     "dl_token",
				Value:    tokenStr,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next(w, r.WithContext(WithSubject(r.Context(), claims.Subject)))
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
