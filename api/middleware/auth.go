package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rcabrera/tillpoint-backend/api/responses"
	pkgAuth "github.com/rcabrera/tillpoint-backend/pkg/auth"
	"github.com/rcabrera/tillpoint-backend/pkg/config"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// register claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.RegisterID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing register id"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxRegisterID, claims.RegisterID)
			ctx = context.WithValue(ctx, ctxCashierID, claims.CashierID)
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"register_id": claims.RegisterID,
					"cashier_id":  claims.CashierID,
					"actor_role":  string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
