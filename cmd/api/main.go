package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/tenant-stock-api/internal/application/audit"
	"github.com/jhoicas/tenant-stock-api/internal/application/auth"
	"github.com/jhoicas/tenant-stock-api/internal/application/inventory"
	"github.com/jhoicas/tenant-stock-api/internal/application/membership"
	"github.com/jhoicas/tenant-stock-api/internal/application/scope"
	"github.com/jhoicas/tenant-stock-api/internal/application/wallet"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
	"github.com/jhoicas/tenant-stock-api/internal/domain/schema"
	"github.com/jhoicas/tenant-stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/tenant-stock-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/tenant-stock-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/tenant-stock-api/internal/interfaces/http"
	"github.com/jhoicas/tenant-stock-api/pkg/config"
	"github.com/jhoicas/tenant-stock-api/pkg/logger"
	"github.com/jhoicas/tenant-stock-api/pkg/metrics"
)

// storage repositorios del driver elegido.
type storage struct {
	businesses  repository.BusinessRepository
	memberships repository.MembershipRepository
	locations   repository.LocationRepository
	users       repository.UserRepository
	products    repository.ProductRepository
	items       repository.InventoryItemRepository
	sales       repository.SaleRepository
	ledger      repository.WalletLedgerRepository
	audit       repository.AuditRepository
	tx          inventory.TxRunner
	caps        schema.Capabilities
	close       func()
}

func openPostgres(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*storage, error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema aplicado")
	}
	caps, err := postgres.ProbeCapabilities(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().
		Bool("selling_price", caps.Item.SellingPrice).
		Bool("sold_location", caps.Item.SoldLocation).
		Bool("quantity", caps.Item.Quantity).
		Bool("audit_hash_chain", caps.Audit.HashChain).
		Msg("columnas opcionales detectadas")

	return &storage{
		businesses:  postgres.NewBusinessRepository(pool),
		memberships: postgres.NewMembershipRepository(pool),
		locations:   postgres.NewLocationRepository(pool),
		users:       postgres.NewUserRepository(pool),
		products:    postgres.NewProductRepository(pool),
		items:       postgres.NewInventoryItemRepository(pool, caps.Item),
		sales:       postgres.NewSaleRepository(pool),
		ledger:      postgres.NewWalletLedgerRepository(pool),
		audit:       postgres.NewAuditRepository(pool, caps.Audit),
		tx:          postgres.NewTxRunner(pool, caps.Item),
		caps:        caps,
		close:       pool.Close,
	}, nil
}

// openMemory almacén en proceso para desarrollo y pruebas. Arranca vacío salvo que
// BOOTSTRAP_OWNER_EMAIL y BOOTSTRAP_OWNER_PASSWORD carguen un negocio con su dueño.
func openMemory(cfg config.BootstrapConfig, log *logger.Logger) (*storage, error) {
	s := memory.NewStore()
	if cfg.Enabled() {
		seeded, err := memory.Bootstrap(s, memory.Tenant{
			BusinessName:  cfg.BusinessName,
			Subdomain:     cfg.Subdomain,
			LocationName:  cfg.LocationName,
			OwnerEmail:    cfg.OwnerEmail,
			OwnerName:     cfg.OwnerName,
			OwnerPassword: cfg.OwnerPassword,
			ProductModel:  cfg.ProductModel,
		})
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("business_id", seeded.BusinessID).
			Str("location_id", seeded.LocationID).
			Str("product_id", seeded.ProductID).
			Str("owner_email", cfg.OwnerEmail).
			Msg("negocio de arranque cargado")
	} else {
		log.Warn().Msg("almacén en memoria vacío: defina BOOTSTRAP_OWNER_EMAIL y BOOTSTRAP_OWNER_PASSWORD para poder iniciar sesión")
	}
	return &storage{
		businesses:  memory.NewBusinessRepository(s),
		memberships: memory.NewMembershipRepository(s),
		locations:   memory.NewLocationRepository(s),
		users:       memory.NewUserRepository(s),
		products:    memory.NewProductRepository(s),
		items:       memory.NewInventoryItemRepository(s),
		sales:       memory.NewSaleRepository(s),
		ledger:      memory.NewWalletLedgerRepository(s),
		audit:       memory.NewAuditRepository(s),
		tx:          memory.NewTxRunner(s),
		caps:        schema.Full(),
		close:       func() {},
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var store *storage
	switch cfg.App.StorageDriver {
	case "memory":
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		store, err = openMemory(cfg.Bootstrap, log)
		if err != nil {
			log.Fatal().Err(err).Msg("negocio de arranque")
		}
	default:
		store, err = openPostgres(ctx, cfg.DB, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
	}
	defer store.close()

	m := metrics.New(cfg.Metrics.Prefix)

	// Sesiones y eventos: Redis si está configurado; si no, memoria y log.
	var (
		sessions repository.ScopeSessionStore = memory.NewSessionStore()
		notifier inventory.Notifier           = inventory.NewLogNotifier(log.Component("events"))
	)
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		sessions = infraredis.NewSessionStore(client, time.Duration(cfg.Redis.SessionTTLMin)*time.Minute)
		notifier = infraredis.NewEventPublisher(client, cfg.Redis.ChannelPrefix)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("sesiones y eventos en Redis")
	}

	authority := membership.NewAuthority(store.businesses, store.memberships, store.users)
	resolver := scope.NewResolver(
		store.businesses, store.memberships, store.locations, sessions,
		authority, m, log.Component("scope"),
	)
	recorder := audit.NewRecorder(store.audit, store.caps.Audit, m, log.Component("audit"))
	poster := wallet.NewCommissionPoster(store.ledger, wallet.CommissionConfig{
		Pct:        cfg.Commission.Pct,
		FlatAmount: cfg.Commission.FlatAmount,
	})
	engine := inventory.NewEngine(inventory.Deps{
		Tx:            store.tx,
		Items:         store.items,
		Sales:         store.sales,
		Products:      store.products,
		Locations:     store.locations,
		Scopes:        resolver,
		Authority:     authority,
		Audit:         recorder,
		Commission:    poster,
		Notifier:      notifier,
		Caps:          store.caps,
		Metrics:       m,
		Log:           log.Component("inventory"),
		NoWaitDefault: cfg.Sell.NoWaitDefault,
	})
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tenant Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		Scopes:    resolver,
		Engine:    engine,
		AuditRepo: store.audit,
		Metrics:   m,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
