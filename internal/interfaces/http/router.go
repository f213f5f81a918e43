package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/tenant-stock-api/internal/application/auth"
	"github.com/jhoicas/tenant-stock-api/internal/application/inventory"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
	"github.com/jhoicas/tenant-stock-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	Scopes    ScopeService
	Engine    *inventory.Engine
	AuditRepo repository.AuditRepository
	Metrics   *metrics.Metrics
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api", MetricsMiddleware(deps.Metrics))

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Selección de negocio: PUT y DELETE no requieren un scope resuelto.
	scopeHandler := NewScopeHandler(deps.Scopes)
	protected.Get("/scope", ScopeMiddleware(deps.Scopes), scopeHandler.Get)
	protected.Put("/scope", scopeHandler.Put)
	protected.Delete("/scope", scopeHandler.Delete)

	// Rutas con negocio activo
	scoped := protected.Group("/", ScopeMiddleware(deps.Scopes))

	invGroup := scoped.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Engine)
	invGroup.Post("/items", inventoryHandler.Receive)
	invGroup.Get("/items/:identifier", inventoryHandler.Lookup)
	invGroup.Post("/sell", inventoryHandler.Sell)

	auditHandler := NewAuditHandler(deps.AuditRepo)
	scoped.Get("/audit", auditHandler.List)
}
