package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/almacen-api/internal/application/analytics"
	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/counting"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/purchasing"
	"github.com/jhoicas/almacen-api/internal/application/reservation"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC        *usecase.ProductUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	ReservationUC    *reservation.UseCase
	CountUC          *counting.UseCase
	PurchaseOrderUC  *purchasing.UseCase
	PurchaseOrderPDF *purchasing.PDFUseCase
	DashboardUC      *appanalytics.DashboardUseCase
	AuthUC           *auth.AuthUseCase
	// Idempotency es opcional: nil desactiva el control de Idempotency-Key.
	Idempotency IdempotencyStore
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	if deps.Idempotency != nil {
		protected.Use(IdempotencyMiddleware(deps.Idempotency))
	}

	anyRole := RequireRole(entity.RoleAdmin, entity.RoleBodeguero, entity.RoleVendedor)
	warehouse := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)
	seller := RequireRole(entity.RoleAdmin, entity.RoleVendedor)
	admin := RequireRole(entity.RoleAdmin)

	protected.Post("/usuarios", admin, authHandler.CreateUser)

	// Productos
	productHandler := NewProductHandler(deps.ProductUC, deps.Replenishment)
	products := protected.Group("/productos")
	products.Get("/", anyRole, productHandler.List)
	products.Get("/bajo-minimo", anyRole, productHandler.BelowMinimum)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Post("/", warehouse, productHandler.Create)
	products.Put("/:id", warehouse, productHandler.Update)

	// Movimientos (kardex)
	movementHandler := NewMovementHandler(deps.RegisterMovement)
	protected.Get("/tipos-movimiento", anyRole, movementHandler.ListTypes)
	movements := protected.Group("/movimientos", warehouse)
	movements.Post("/entrada", movementHandler.RegisterEntry)
	movements.Post("/salida", movementHandler.RegisterExit)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)

	// Reservas
	reservationHandler := NewReservationHandler(deps.ReservationUC)
	reservations := protected.Group("/reservas")
	reservations.Post("/", seller, reservationHandler.Create)
	reservations.Get("/", anyRole, reservationHandler.List)
	reservations.Get("/:id", anyRole, reservationHandler.GetByID)
	reservations.Post("/:id/aprobar", warehouse, reservationHandler.Approve)
	reservations.Post("/:id/rechazar", warehouse, reservationHandler.Reject)
	reservations.Post("/:id/entregar", warehouse, reservationHandler.Deliver)
	reservations.Post("/:id/cancelar", anyRole, reservationHandler.Cancel)

	// Conteos físicos
	countHandler := NewCountHandler(deps.CountUC)
	counts := protected.Group("/conteos", warehouse)
	counts.Post("/", countHandler.Start)
	counts.Get("/", countHandler.List)
	counts.Get("/:id", countHandler.GetByID)
	counts.Post("/:id/detalles", countHandler.AddDetail)
	counts.Post("/:id/finalizar", countHandler.Finalize)
	counts.Post("/:id/aplicar-ajustes", countHandler.ApplyAdjustments)
	counts.Post("/:id/cancelar", countHandler.Cancel)

	// Órdenes de compra
	poHandler := NewPurchaseOrderHandler(deps.PurchaseOrderUC, deps.PurchaseOrderPDF)
	orders := protected.Group("/ordenes-compra", warehouse)
	orders.Post("/", poHandler.Create)
	orders.Get("/", poHandler.List)
	orders.Get("/:id", poHandler.GetByID)
	orders.Get("/:id/pdf", poHandler.DownloadPDF)
	orders.Patch("/:id/estado", poHandler.SetStatus)
	orders.Post("/:id/recibir", poHandler.Receive)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/resumen", anyRole, dashboardHandler.GetSummary)
}
