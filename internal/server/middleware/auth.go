package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/shelfsync/internal/server/handlers"
	"github.com/iudanet/shelfsync/internal/server/jwt"
	"github.com/iudanet/shelfsync/pkg/api"
)

// AuthMiddleware создает middleware для проверки JWT токена.
// Subject токена становится владельцем зон запроса.
func AuthMiddleware(logger *slog.Logger, tokens *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				handlers.SendError(logger, w, http.StatusUnauthorized, api.CodeUnauthorized, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("Invalid Authorization header format")
				handlers.SendError(logger, w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid token format")
				return
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				logger.Warn("Invalid access token", "error", err)
				handlers.SendError(logger, w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid token")
				return
			}

			logger.Debug("Request authenticated", "owner", claims.Subject)

			// Передаем запрос дальше с владельцем в контексте
			next.ServeHTTP(w, r.WithContext(handlers.WithOwner(r.Context(), claims.Subject)))
		})
	}
}
