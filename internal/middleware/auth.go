package middleware

import (
	"context"
	"net/http"
	"strings"

	"photo-journal-backend/internal/services"
)

type contextKey string

const sessionKey contextKey = "session"

// Session is the authenticated caller, carried explicitly in the request
// context instead of any ambient current-user state.
type Session struct {
	UserID string
}

// AuthMiddleware validates the bearer token and stores the session in the
// request context.
func AuthMiddleware(userService *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			userID, err := userService.ValidateJWT(parts[1])
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, Session{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession extracts the session from context. The zero session means the
// request was not authenticated.
func GetSession(ctx context.Context) Session {
	session, ok := ctx.Value(sessionKey).(Session)
	if !ok {
		return Session{}
	}
	return session
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
