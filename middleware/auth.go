package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/team-hub/logger"
	"github.com/Dosada05/team-hub/services"
	"go.uber.org/zap"
)

type contextKey string

const userContextKey contextKey = "user"

// TokenAuthenticator is the part of services.AuthService the middleware needs.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Claims, error)
}

// Authenticate требует заголовок Authorization: Bearer <token>.
func Authenticate(auth TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}
			authenticate(auth, token, next, w, r)
		})
	}
}

// AuthenticateWS принимает токен из ?token=, потому что браузерный WebSocket
// не умеет выставлять заголовки. Заголовок Authorization тоже подходит.
func AuthenticateWS(auth TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				token = strings.TrimSpace(r.URL.Query().Get("token"))
			}
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing token")
				return
			}
			authenticate(auth, token, next, w, r)
		})
	}
}

func authenticate(auth TokenAuthenticator, token string, next http.Handler, w http.ResponseWriter, r *http.Request) {
	claims, err := auth.Authenticate(r.Context(), token)
	if err != nil {
		if !errors.Is(err, services.ErrAuthenticationFailed) {
			logger.FromContext(r.Context()).Error("token check failed", zap.Error(err))
		}
		writeError(w, http.StatusUnauthorized, services.ErrAuthenticationFailed.Error())
		return
	}

	ctx := context.WithValue(r.Context(), userContextKey, claims)
	ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("user_id", claims.UserID.String())))
	next.ServeHTTP(w, r.WithContext(ctx))
}

// RequirePlatformAdmin пропускает только администраторов платформы.
// Ставится после Authenticate.
func RequirePlatformAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetClaimsFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, services.ErrAuthenticationFailed.Error())
			return
		}
		if !claims.IsAdmin {
			writeError(w, http.StatusForbidden, services.ErrPlatformAdminRequired.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
