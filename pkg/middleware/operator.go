package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/pkg/apiErrors"
)

// OperatorFromContext devolve o email do operador autenticado, usado em
// decided_by e executed_by
func OperatorFromContext(ctx context.Context) (string, bool) {
	claims, ok := ctx.Value(ContextKeyUser).(*domain.Claims)
	if !ok || claims == nil || claims.OperatorEmail == "" {
		return "", false
	}
	return claims.OperatorEmail, true
}

// OperatorOnly restringe a rota a requisições com operador identificado
func OperatorOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := OperatorFromContext(r.Context()); !ok {
				logrus.Warning("Tentativa de acesso sem operador autenticado")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Operador não autenticado", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
