package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, producto_id, tipo_movimiento_id, cantidad, unidad_id, cantidad_convertida,
	stock_anterior, stock_nuevo, usuario_id, motivo, referencia, notas,
	reserva_detalle_id, conteo_detalle_id, created_at`

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx). Solo inserta y lee.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func scanMovement(row scanner) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(&m.ID, &m.ProductID, &m.MovementTypeID, &m.Quantity, &m.UnitID, &m.QuantityPrimary,
		&m.StockBefore, &m.StockAfter, &m.UserID, &m.Reason, &m.Reference, &m.Notes,
		&m.ReservationDetailID, &m.CountDetailID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste un movimiento y asigna su ID.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movimientos (producto_id, tipo_movimiento_id, cantidad, unidad_id, cantidad_convertida,
			stock_anterior, stock_nuevo, usuario_id, motivo, referencia, notas,
			reserva_detalle_id, conteo_detalle_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.ProductID, m.MovementTypeID, m.Quantity, m.UnitID, m.QuantityPrimary,
		m.StockBefore, m.StockAfter, m.UserID, m.Reason, m.Reference, m.Notes,
		m.ReservationDetailID, m.CountDetailID, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return wrapErr("insert movimiento", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movimientos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get movimiento", err)
	}
	return m, nil
}

// List kardex filtrado por producto, tipo, usuario y rango de fechas; más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.Movement, error) {
	var w filter
	if f.ProductID != nil {
		w.add("producto_id = $%[1]d", *f.ProductID)
	}
	if f.MovementTypeID != nil {
		w.add("tipo_movimiento_id = $%[1]d", *f.MovementTypeID)
	}
	if f.UserID != nil {
		w.add("usuario_id = $%[1]d", *f.UserID)
	}
	if f.From != nil {
		w.add("created_at >= $%[1]d", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= $%[1]d", *f.To)
	}
	query := `SELECT ` + movementColumns + ` FROM movimientos` + w.where() +
		` ORDER BY created_at DESC, id DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, wrapErr("list movimientos", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, wrapErr("scan movimiento", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
