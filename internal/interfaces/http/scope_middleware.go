package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tenant-stock-api/internal/application/scope"
)

// LocalScope key del scope resuelto en c.Locals.
const LocalScope = "scope"

// ScopeResolver contrato del resolvedor usado por el middleware.
type ScopeResolver interface {
	Resolve(ctx context.Context, c scope.Caller) (scope.Scope, error)
}

// CallerFrom arma el contexto explícito del llamador: identidad del token,
// ?as_business (solo tiene efecto para super-admin), ?location y el Host.
func CallerFrom(c *fiber.Ctx) scope.Caller {
	return scope.Caller{
		UserID:              GetUserID(c),
		IsSuperAdmin:        IsSuperAdmin(c),
		SessionID:           GetSessionID(c),
		OverrideBusinessID:  c.Query("as_business"),
		RequestedLocationID: c.Query("location"),
		Host:                c.Hostname(),
	}
}

// ScopeMiddleware resuelve el negocio y la ubicación activos antes del handler.
// Sin negocio activo responde 428 y el handler no se ejecuta.
func ScopeMiddleware(resolver ScopeResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, err := resolver.Resolve(c.UserContext(), CallerFrom(c))
		if err != nil {
			return writeError(c, err)
		}
		c.Locals(LocalScope, &sc)
		return c.Next()
	}
}

// GetScope devuelve el scope resuelto o nil si la ruta no pasó por ScopeMiddleware.
func GetScope(c *fiber.Ctx) *scope.Scope {
	sc, _ := c.Locals(LocalScope).(*scope.Scope)
	return sc
}
