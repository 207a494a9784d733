package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovementRepository libro de movimientos: solo inserción y lectura.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error)
}

// MovementTypeRepository tipos de movimiento (datos de referencia).
type MovementTypeRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.MovementType, error)
	GetByName(ctx context.Context, name string) (*entity.MovementType, error)
	List(ctx context.Context) ([]*entity.MovementType, error)
}
