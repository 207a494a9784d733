package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// UnitRepository unidades de medida (solo lectura para el núcleo).
type UnitRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.UnitOfMeasure, error)
	List(ctx context.Context) ([]*entity.UnitOfMeasure, error)
}

// SupplierRepository proveedores (solo lectura para el núcleo).
type SupplierRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Supplier, error)
}
