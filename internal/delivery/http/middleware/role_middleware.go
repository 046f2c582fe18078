package middleware

import (
	"net/http"

	"catalog-system/internal/domain/policy"
	"catalog-system/pkg/response"

	"github.com/sirupsen/logrus"
)

// Authorize guards a handler with the access policy for op. It runs
// before the handler, so a rejected request never reaches persistence.
func Authorize(op policy.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := GetActorFromContext(r.Context())
			if !policy.Allow(op, actor.Capability()) {
				logrus.WithFields(logrus.Fields{
					"operation":  op,
					"capability": actor.Capability().String(),
					"user_id":    actor.UserID,
				}).Info("Access denied")
				response.Forbidden(w, "You do not have permission to perform this action.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Guard wraps a handler function with Authorize.
func Guard(op policy.Operation, h http.HandlerFunc) http.Handler {
	return Authorize(op)(h)
}
