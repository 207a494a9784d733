package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas de solo lectura para el resumen del tablero.
type DashboardRepo struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository construye el adaptador del tablero.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepo {
	return &DashboardRepo{pool: pool}
}

func (r *DashboardRepo) count(ctx context.Context, op, query string, args ...any) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("dashboard.%s: %w", op, wrapErr(op, err))
	}
	return n, nil
}

func (r *DashboardRepo) CountProducts(ctx context.Context) (int, error) {
	return r.count(ctx, "CountProducts", `SELECT COUNT(*) FROM productos WHERE activo`)
}

func (r *DashboardRepo) CountProductsBelowMinimum(ctx context.Context) (int, error) {
	return r.count(ctx, "CountProductsBelowMinimum",
		`SELECT COUNT(*) FROM productos WHERE activo AND stock_actual < stock_minimo`)
}

func (r *DashboardRepo) CountReservationsByStatus(ctx context.Context, status entity.ReservationStatus) (int, error) {
	return r.count(ctx, "CountReservationsByStatus", `SELECT COUNT(*) FROM reservas WHERE estado = $1`, string(status))
}

func (r *DashboardRepo) CountCountsByStatus(ctx context.Context, statuses ...entity.CountStatus) (int, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}
	return r.count(ctx, "CountCountsByStatus", `SELECT COUNT(*) FROM conteos WHERE estado = ANY($1)`, names)
}

func (r *DashboardRepo) CountPurchaseOrdersByStatus(ctx context.Context, statuses ...entity.PurchaseOrderStatus) (int, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}
	return r.count(ctx, "CountPurchaseOrdersByStatus", `SELECT COUNT(*) FROM orden_compras WHERE estado = ANY($1)`, names)
}

func (r *DashboardRepo) CountMovementsSince(ctx context.Context, since time.Time) (int, error) {
	return r.count(ctx, "CountMovementsSince", `SELECT COUNT(*) FROM movimientos WHERE created_at >= $1`, since)
}

// LowStockProducts productos activos bajo mínimo ordenados por mayor déficit.
func (r *DashboardRepo) LowStockProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM productos
		WHERE activo AND stock_actual < stock_minimo
		ORDER BY (stock_minimo - stock_actual) DESC, id
		LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("dashboard.LowStockProducts: %w", wrapErr("low stock", err))
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr("scan producto", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
