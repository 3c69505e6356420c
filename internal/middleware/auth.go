package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Farvi-13/Medium-Clone/internal/auth"
	"github.com/Farvi-13/Medium-Clone/internal/http/respond"
)

type contextKey int

const claimsKey contextKey = iota

// UserClaims returns the verified token claims stored by Auth, if any.
func UserClaims(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(auth.Claims)
	return claims, ok
}

// Auth guards a handler behind a bearer token. Both "Bearer <jwt>" and
// "Token <jwt>" schemes are accepted; verified claims are placed in the
// request context for the handler to resolve the current user.
func Auth(tokens *auth.TokenManager, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respond.Error(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || (!strings.EqualFold(parts[0], "Bearer") && !strings.EqualFold(parts[0], "Token")) {
			respond.Error(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			logger.Warn("rejected access token", "error", err)
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
