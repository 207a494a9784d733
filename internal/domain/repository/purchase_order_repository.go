package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PurchaseOrderRepository órdenes de compra y sus líneas.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetWithDetails(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id int64, status entity.PurchaseOrderStatus) error
	UpdateReceived(ctx context.Context, detailID int64, received decimal.Decimal) error
	List(ctx context.Context, filter entity.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error)
}
