package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos devuelven (nil, nil) cuando el registro no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	// Update modifica solo campos descriptivos; nunca el stock.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock es de uso exclusivo del motor de movimientos.
	UpdateStock(ctx context.Context, productID int64, stock decimal.Decimal) error
	List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)
}
