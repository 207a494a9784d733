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
	appanalytics "github.com/jhoicas/almacen-api/internal/application/analytics"
	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/counting"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/purchasing"
	"github.com/jhoicas/almacen-api/internal/application/reservation"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
	}

	repos := postgres.NewRepositories(pool)
	txRunner := postgres.NewTxRunner(pool)
	ledger := inventory.NewLedger(txRunner)

	productUC := usecase.NewProductUseCase(repos.Products, repos.Units)
	replenishmentUC := inventory.NewReplenishmentUseCase(repos.Products)
	registerMovementUC := inventory.NewRegisterMovementUseCase(ledger, repos)
	reservationUC := reservation.NewUseCase(txRunner, ledger, repos, cfg.Movements.ReservationExit)
	countUC := counting.NewUseCase(txRunner, ledger, repos, counting.AdjustmentTypes{
		Positive: cfg.Movements.PositiveAdjust,
		Negative: cfg.Movements.NegativeAdjust,
	})
	purchaseOrderUC := purchasing.NewUseCase(txRunner, ledger, repos, cfg.Movements.PurchaseEntry)

	// PDF: representación imprimible de la orden de compra
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	purchaseOrderPDF := purchasing.NewPDFUseCase(repos, pdfGenerator)

	dashboardUC := appanalytics.NewDashboardUseCase(postgres.NewDashboardRepository(pool))
	authUC := auth.NewAuthUseCase(repos.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	deps := httpRouter.RouterDeps{
		ProductUC:        productUC,
		Replenishment:    replenishmentUC,
		RegisterMovement: registerMovementUC,
		ReservationUC:    reservationUC,
		CountUC:          countUC,
		PurchaseOrderUC:  purchaseOrderUC,
		PurchaseOrderPDF: purchaseOrderPDF,
		DashboardUC:      dashboardUC,
		AuthUC:           authUC,
		JWTSecret:        cfg.JWT.Secret,
	}

	// Idempotency-Key solo si hay Redis configurado
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		store := cache.NewIdempotencyStore(redisClient, time.Duration(cfg.Redis.IdempotencyTTL)*time.Minute)
		if err := store.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no responde; el control de idempotencia se omitirá hasta que responda")
		}
		deps.Idempotency = store
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(httpRouter.RequestLogger())
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.StatusOK
		db := "ok"
		if err := pool.Ping(c.UserContext()); err != nil {
			status, db = fiber.StatusServiceUnavailable, "down"
		}
		return c.Status(status).JSON(fiber.Map{"status": db, "service": cfg.App.Name})
	})

	httpRouter.Router(app, deps)

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
