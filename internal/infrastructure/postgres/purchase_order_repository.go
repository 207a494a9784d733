package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const (
	purchaseOrderColumns = `id, proveedor_id, creado_por, estado, fecha_emision, fecha_esperada,
	subtotal, impuesto, total, notas, created_at, updated_at`
	purchaseOrderDetailColumns = `id, orden_id, producto_id, cantidad_solicitada, costo_unitario, cantidad_recibida`
)

// PurchaseOrderRepo órdenes de compra sobre PostgreSQL (usable con pool o tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func scanPurchaseOrder(row scanner) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	if err := row.Scan(&o.ID, &o.SupplierID, &o.CreatedBy, &o.Status, &o.IssuedAt, &o.ExpectedAt,
		&o.Subtotal, &o.Tax, &o.Total, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserta cabecera y líneas; asigna los IDs generados.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO orden_compras (proveedor_id, creado_por, estado, fecha_emision, fecha_esperada,
			subtotal, impuesto, total, notas, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		o.SupplierID, o.CreatedBy, o.Status, o.IssuedAt, o.ExpectedAt,
		o.Subtotal, o.Tax, o.Total, o.Notes, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return wrapErr("insert orden compra", err)
	}
	for i := range o.Details {
		d := &o.Details[i]
		d.OrderID = o.ID
		err := r.q.QueryRow(ctx, `
			INSERT INTO orden_compra_detalles (orden_id, producto_id, cantidad_solicitada, costo_unitario, cantidad_recibida)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			d.OrderID, d.ProductID, d.RequestedQty, d.UnitCost, d.ReceivedQty,
		).Scan(&d.ID)
		if err != nil {
			return wrapErr("insert detalle orden compra", err)
		}
	}
	return nil
}

func (r *PurchaseOrderRepo) get(ctx context.Context, id int64, lock bool) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM orden_compras WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	o, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get orden compra", err)
	}
	details, err := r.details(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	o.Details = details[id]
	return o, nil
}

func (r *PurchaseOrderRepo) details(ctx context.Context, ids []int64) (map[int64][]entity.PurchaseOrderDetail, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+purchaseOrderDetailColumns+` FROM orden_compra_detalles WHERE orden_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, wrapErr("list detalles orden compra", err)
	}
	defer rows.Close()
	out := make(map[int64][]entity.PurchaseOrderDetail, len(ids))
	for rows.Next() {
		var d entity.PurchaseOrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.RequestedQty, &d.UnitCost, &d.ReceivedQty); err != nil {
			return nil, wrapErr("scan detalle orden compra", err)
		}
		out[d.OrderID] = append(out[d.OrderID], d)
	}
	return out, rows.Err()
}

func (r *PurchaseOrderRepo) GetWithDetails(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera de la orden (SELECT FOR UPDATE).
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, true)
}

func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id int64, status entity.PurchaseOrderStatus) error {
	cmd, err := r.q.Exec(ctx, `UPDATE orden_compras SET estado = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return wrapErr("update estado orden compra", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateReceived fija la cantidad recibida acumulada de una línea.
func (r *PurchaseOrderRepo) UpdateReceived(ctx context.Context, detailID int64, received decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orden_compra_detalles SET cantidad_recibida = $2 WHERE id = $1`, detailID, received)
	if err != nil {
		return wrapErr("update recibido orden compra", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List órdenes filtradas por estado y proveedor, más recientes primero, con sus líneas.
func (r *PurchaseOrderRepo) List(ctx context.Context, f entity.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	var w filter
	if f.Status != nil {
		w.add("estado = $%[1]d", *f.Status)
	}
	if f.SupplierID != nil {
		w.add("proveedor_id = $%[1]d", *f.SupplierID)
	}
	query := `SELECT ` + purchaseOrderColumns + ` FROM orden_compras` + w.where() + ` ORDER BY id DESC` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, wrapErr("list ordenes compra", err)
	}
	var list []*entity.PurchaseOrder
	var ids []int64
	for rows.Next() {
		o, err := scanPurchaseOrder(rows)
		if err != nil {
			rows.Close()
			return nil, wrapErr("scan orden compra", err)
		}
		list = append(list, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list ordenes compra", err)
	}
	if len(ids) == 0 {
		return list, nil
	}
	details, err := r.details(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Details = details[o.ID]
	}
	return list, nil
}
