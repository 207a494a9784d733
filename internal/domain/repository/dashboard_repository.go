package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DashboardRepository consultas de solo lectura para el resumen del tablero.
type DashboardRepository interface {
	CountProducts(ctx context.Context) (int, error)
	CountProductsBelowMinimum(ctx context.Context) (int, error)
	CountReservationsByStatus(ctx context.Context, status entity.ReservationStatus) (int, error)
	CountCountsByStatus(ctx context.Context, statuses ...entity.CountStatus) (int, error)
	CountPurchaseOrdersByStatus(ctx context.Context, statuses ...entity.PurchaseOrderStatus) (int, error)
	CountMovementsSince(ctx context.Context, since time.Time) (int, error)
	// LowStockProducts productos bajo mínimo ordenados por mayor déficit.
	LowStockProducts(ctx context.Context, limit int) ([]*entity.Product, error)
}
