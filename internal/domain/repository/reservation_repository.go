package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ReservationRepository solicitudes de reserva y sus líneas.
type ReservationRepository interface {
	// Create inserta cabecera y detalles; asigna los IDs generados.
	Create(ctx context.Context, reservation *entity.Reservation) error
	// GetWithDetails carga la cabecera con sus líneas (nil si no existe).
	GetWithDetails(ctx context.Context, id int64) (*entity.Reservation, error)
	// GetForUpdate igual que GetWithDetails pero bloquea la cabecera.
	GetForUpdate(ctx context.Context, id int64) (*entity.Reservation, error)
	// UpdateHeader persiste estado, procesador, fechas y notas.
	UpdateHeader(ctx context.Context, reservation *entity.Reservation) error
	// UpdateDetail persiste cantidades aprobada y entregada.
	UpdateDetail(ctx context.Context, detail *entity.ReservationDetail) error
	List(ctx context.Context, filter entity.ReservationFilter) ([]*entity.Reservation, error)
}
