package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bryanwahyu/admissions-desk/internal/domain/session"
	"github.com/bryanwahyu/admissions-desk/internal/logger"
)

type contextKey string

const SessionKey contextKey = "session"

// SessionAuth resolves "Authorization: Bearer <token>" to a stored session.
func SessionAuth(store session.Store, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}
			if err := ValidateSessionToken(token); err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid session token")
				return
			}

			sess, err := store.Get(r.Context(), session.ID(token))
			switch {
			case errors.Is(err, session.ErrNotFound):
				writeJSONError(w, http.StatusUnauthorized, "session expired, please log in again")
				return
			case err != nil:
				log.ErrorContext(r.Context(), "session lookup failed", slog.String("error", err.Error()))
				writeJSONError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			ctx = logger.WithSessionID(ctx, string(sess.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext returns the session SessionAuth stored, or nil.
func GetSessionFromContext(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(SessionKey).(*session.Session); ok {
		return s
	}
	return nil
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return token, token != ""
}
