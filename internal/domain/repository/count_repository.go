package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// PhysicalCountRepository conteos físicos y sus líneas.
type PhysicalCountRepository interface {
	Create(ctx context.Context, count *entity.PhysicalCount) error
	GetWithDetails(ctx context.Context, id int64) (*entity.PhysicalCount, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.PhysicalCount, error)
	UpdateHeader(ctx context.Context, count *entity.PhysicalCount) error
	// UpsertDetail inserta o sobrescribe la línea única (conteo, producto); asigna ID si es nueva.
	UpsertDetail(ctx context.Context, detail *entity.CountDetail) error
	// MarkDetailAdjusted marca la línea como ajustada y la enlaza con el movimiento.
	MarkDetailAdjusted(ctx context.Context, detailID, movementID int64) error
	List(ctx context.Context, filter entity.CountFilter) ([]*entity.PhysicalCount, error)
}
