package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Ledger es el único escritor de stock_actual. Cada asiento inserta un movimiento inmutable
// y actualiza el stock del producto en la misma transacción, con la fila del producto
// bloqueada (SELECT FOR UPDATE) para serializar operaciones concurrentes.
type Ledger struct {
	txRunner TxRunner
	log      zerolog.Logger
	now      func() time.Time
}

// NewLedger construye el motor de movimientos.
func NewLedger(txRunner TxRunner) *Ledger {
	return &Ledger{
		txRunner: txRunner,
		log:      logger.Component("ledger"),
		now:      time.Now,
	}
}

// PostInput datos de un asiento. UnitID = 0 significa unidad primaria del producto.
type PostInput struct {
	ProductID           int64
	MovementTypeID      int64
	Direction           entity.Direction
	Quantity            decimal.Decimal
	UnitID              int64
	UserID              int64
	Reason              string
	Reference           string
	Notes               string
	ReservationDetailID *int64
	CountDetailID       *int64
}

// PostResult movimiento creado y producto con el stock ya actualizado.
type PostResult struct {
	Movement *entity.Movement
	Product  *entity.Product
}

// Post registra un asiento en su propia transacción.
func (l *Ledger) Post(ctx context.Context, in PostInput) (*PostResult, error) {
	var res *PostResult
	err := l.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		res, err = l.PostInTx(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// PostInTx registra un asiento usando los repositorios de una transacción abierta por el caller
// (entrega de reservas, ajustes de conteo, recepción de compras). Cualquier error debe abortar
// la transacción completa.
func (l *Ledger) PostInTx(ctx context.Context, repos repository.Repositories, in PostInput) (*PostResult, error) {
	mt, err := repos.MovementTypes.GetByID(ctx, in.MovementTypeID)
	if err != nil {
		return nil, err
	}
	if mt == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "tipo de movimiento %d no encontrado", in.MovementTypeID)
	}
	if !mt.Matches(in.Direction) {
		return nil, domain.Errorf(domain.ErrInvalidMovementType,
			"el tipo %q no corresponde a una %s", mt.Name, in.Direction)
	}

	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "producto %d no encontrado", in.ProductID)
	}

	unitID := in.UnitID
	if unitID == 0 {
		unitID = product.PrimaryUnitID
	}
	qty, err := inventory.ToPrimary(product, unitID, in.Quantity)
	if err != nil {
		return nil, err
	}

	before := product.CurrentStock
	after := before.Add(qty.Mul(decimal.NewFromInt(int64(mt.StockEffect))))
	if after.IsNegative() {
		return nil, domain.Errorf(domain.ErrInsufficientStock,
			"stock insuficiente para %s (%s): disponible %s, solicitado %s",
			product.Name, product.SKU, before.String(), qty.String())
	}

	mov := &entity.Movement{
		ProductID:           product.ID,
		MovementTypeID:      mt.ID,
		Quantity:            in.Quantity,
		UnitID:              unitID,
		QuantityPrimary:     qty,
		StockBefore:         before,
		StockAfter:          after,
		UserID:              in.UserID,
		Reason:              in.Reason,
		Reference:           in.Reference,
		Notes:               in.Notes,
		ReservationDetailID: in.ReservationDetailID,
		CountDetailID:       in.CountDetailID,
		CreatedAt:           l.now(),
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := repos.Products.UpdateStock(ctx, product.ID, after); err != nil {
		return nil, err
	}
	product.CurrentStock = after

	l.log.Debug().
		Int64("producto_id", product.ID).
		Str("tipo", mt.Name).
		Str("cantidad", qty.String()).
		Str("stock_anterior", before.String()).
		Str("stock_nuevo", after.String()).
		Int64("movimiento_id", mov.ID).
		Msg("movimiento registrado")

	return &PostResult{Movement: mov, Product: product}, nil
}

// TypeByName resuelve un tipo de movimiento configurado por nombre y verifica su sentido.
// Un tipo ausente es un error de configuración del servidor, no del cliente.
func TypeByName(ctx context.Context, repos repository.Repositories, name string, dir entity.Direction) (*entity.MovementType, error) {
	mt, err := repos.MovementTypes.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if mt == nil {
		return nil, fmt.Errorf("tipo de movimiento %q no configurado", name)
	}
	if !mt.Matches(dir) {
		return nil, fmt.Errorf("tipo de movimiento %q configurado con efecto %d, se esperaba %s", name, mt.StockEffect, dir)
	}
	return mt, nil
}
