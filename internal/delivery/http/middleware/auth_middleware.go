package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"catalog-system/internal/domain/entity"
	"catalog-system/internal/usecase"
	"catalog-system/pkg/response"
)

type contextKey string

const (
	ActorKey   contextKey = "actor"
	TokenIDKey contextKey = "token_id"
)

type AuthMiddleware struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthMiddleware(authUsecase usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		authUsecase: authUsecase,
	}
}

// Authenticate resolves the caller. Requests without an Authorization
// header continue as anonymous; a header that does not carry a valid,
// unrevoked token is rejected with 401.
//
// It runs on public routes too, so a product read that sends a stale token
// gets 401 rather than falling back to anonymous, and a token store outage
// fails any request that carries a token with 500. Callers without a header
// never touch the token store.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			ctx := context.WithValue(r.Context(), ActorKey, entity.AnonymousActor)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		actor, tokenID, err := m.authUsecase.Authenticate(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrTokenRevoked):
				response.Unauthorized(w, "Token has been revoked")
			case errors.Is(err, usecase.ErrInvalidToken):
				response.Unauthorized(w, "Invalid or expired token")
			default:
				response.InternalServerError(w, "Failed to validate token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), ActorKey, actor)
		ctx = context.WithValue(ctx, TokenIDKey, tokenID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthenticated rejects anonymous callers with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetActorFromContext(r.Context()).IsAuthenticated() {
			response.Unauthorized(w, "Authentication credentials were not provided")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetActorFromContext returns the caller, anonymous when none was resolved.
func GetActorFromContext(ctx context.Context) entity.Actor {
	actor, ok := ctx.Value(ActorKey).(entity.Actor)
	if !ok {
		return entity.AnonymousActor
	}
	return actor
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}
