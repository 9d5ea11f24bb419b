// Package middlewarectx содержит HTTP middleware для проверки JWT токенов
// и помещения идентичности запроса в контекст.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке
// Authorization и в случае успеха добавляет в контекст идентичность
// пользователя. OptionalJWTMiddleware делает то же самое, но пропускает
// запрос без токена дальше как анонимный: резолвер сам переведёт его
// на страницу входа.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	libjwt "github.com/magabrotheeeer/entitlement-service/internal/lib/jwt"
	"github.com/magabrotheeeer/entitlement-service/internal/http/response"
	"github.com/magabrotheeeer/entitlement-service/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey — ключ идентичности пользователя в контексте.
const IdentityKey Key = "identity"

// TokenParser описывает проверку JWT токена.
type TokenParser interface {
	ParseToken(tokenStr string) (*libjwt.CustomClaims, error)
}

// IdentityFromContext извлекает идентичность из контекста.
// nil означает анонимный запрос.
func IdentityFromContext(ctx context.Context) *models.Identity {
	identity, ok := ctx.Value(IdentityKey).(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}

func identityFromToken(parser TokenParser, authHeader string) (*models.Identity, error) {
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := parser.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	return &models.Identity{
		UID:      claims.UserUID,
		Username: claims.Username,
		Role:     models.Role(claims.Role),
	}, nil
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в
// заголовке Authorization. Если токен валиден, добавляет идентичность
// в контекст запроса, иначе возвращает 401 Unauthorized.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			authHeader := r.Header.Get("Authorization")

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			identity, err := identityFromToken(parser, authHeader)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTMiddleware парсит токен, если он есть, но не отклоняет
// запросы без него. Невалидный токен тоже считается анонимным:
// обработчик вернёт redirect на вход вместо 401.
func OptionalJWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.OptionalJWTMiddleware"
			authHeader := r.Header.Get("Authorization")

			if strings.HasPrefix(authHeader, "Bearer ") {
				identity, err := identityFromToken(parser, authHeader)
				if err == nil {
					ctx := context.WithValue(r.Context(), IdentityKey, identity)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				log.Warn("ignoring invalid token on optional route",
					slog.String("op", op), sl.Err(err))
			}

			next.ServeHTTP(w, r)
		})
	}
}
