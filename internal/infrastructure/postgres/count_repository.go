package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.PhysicalCountRepository = (*CountRepo)(nil)

const (
	countColumns       = `id, responsable_id, estado, fecha_inicio, fecha_fin, motivo, filtros, notas`
	countDetailColumns = `id, conteo_id, producto_id, stock_teorico, stock_contado, diferencia,
	ajuste_aplicado, movimiento_id, updated_at`
)

// CountRepo conteos físicos sobre PostgreSQL (usable con pool o tx).
type CountRepo struct {
	q Querier
}

// NewCountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCountRepository(q Querier) *CountRepo {
	return &CountRepo{q: q}
}

func scanCount(row scanner) (*entity.PhysicalCount, error) {
	var c entity.PhysicalCount
	if err := row.Scan(&c.ID, &c.ResponsibleID, &c.Status, &c.StartedAt, &c.FinishedAt,
		&c.Motive, &c.Filters, &c.Notes); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CountRepo) Create(ctx context.Context, c *entity.PhysicalCount) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO conteos (responsable_id, estado, fecha_inicio, fecha_fin, motivo, filtros, notas)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		c.ResponsibleID, c.Status, c.StartedAt, c.FinishedAt, c.Motive, c.Filters, c.Notes,
	).Scan(&c.ID)
	if err != nil {
		return wrapErr("insert conteo", err)
	}
	return nil
}

func (r *CountRepo) get(ctx context.Context, id int64, lock bool) (*entity.PhysicalCount, error) {
	query := `SELECT ` + countColumns + ` FROM conteos WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	c, err := scanCount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get conteo", err)
	}
	details, err := r.details(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	c.Details = details[id]
	return c, nil
}

func (r *CountRepo) details(ctx context.Context, ids []int64) (map[int64][]entity.CountDetail, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+countDetailColumns+` FROM conteo_detalles WHERE conteo_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, wrapErr("list detalles conteo", err)
	}
	defer rows.Close()
	out := make(map[int64][]entity.CountDetail, len(ids))
	for rows.Next() {
		var d entity.CountDetail
		if err := rows.Scan(&d.ID, &d.CountID, &d.ProductID, &d.TheoreticalStock, &d.CountedStock, &d.Variance,
			&d.AdjustmentApplied, &d.MovementID, &d.UpdatedAt); err != nil {
			return nil, wrapErr("scan detalle conteo", err)
		}
		out[d.CountID] = append(out[d.CountID], d)
	}
	return out, rows.Err()
}

func (r *CountRepo) GetWithDetails(ctx context.Context, id int64) (*entity.PhysicalCount, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera del conteo (SELECT FOR UPDATE).
func (r *CountRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PhysicalCount, error) {
	return r.get(ctx, id, true)
}

func (r *CountRepo) UpdateHeader(ctx context.Context, c *entity.PhysicalCount) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE conteos SET estado = $2, fecha_fin = $3, motivo = $4, filtros = $5, notas = $6 WHERE id = $1`,
		c.ID, c.Status, c.FinishedAt, c.Motive, c.Filters, c.Notes,
	)
	if err != nil {
		return wrapErr("update conteo", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpsertDetail una línea por (conteo, producto). Si ya existe sobrescribe cantidades y conserva el ajuste.
func (r *CountRepo) UpsertDetail(ctx context.Context, d *entity.CountDetail) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO conteo_detalles (conteo_id, producto_id, stock_teorico, stock_contado, diferencia, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (conteo_id, producto_id) DO UPDATE SET
			stock_teorico = EXCLUDED.stock_teorico,
			stock_contado = EXCLUDED.stock_contado,
			diferencia    = EXCLUDED.diferencia,
			updated_at    = EXCLUDED.updated_at
		RETURNING id, ajuste_aplicado, movimiento_id`,
		d.CountID, d.ProductID, d.TheoreticalStock, d.CountedStock, d.Variance, d.UpdatedAt,
	).Scan(&d.ID, &d.AdjustmentApplied, &d.MovementID)
	if err != nil {
		return wrapErr("upsert detalle conteo", err)
	}
	return nil
}

func (r *CountRepo) MarkDetailAdjusted(ctx context.Context, detailID, movementID int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE conteo_detalles SET ajuste_aplicado = TRUE, movimiento_id = $2, updated_at = now() WHERE id = $1`,
		detailID, movementID,
	)
	if err != nil {
		return wrapErr("marcar ajuste conteo", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List conteos filtrados por estado, más recientes primero, con sus líneas.
func (r *CountRepo) List(ctx context.Context, f entity.CountFilter) ([]*entity.PhysicalCount, error) {
	var w filter
	if f.Status != nil {
		w.add("estado = $%[1]d", *f.Status)
	}
	query := `SELECT ` + countColumns + ` FROM conteos` + w.where() + ` ORDER BY id DESC` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, wrapErr("list conteos", err)
	}
	var list []*entity.PhysicalCount
	var ids []int64
	for rows.Next() {
		c, err := scanCount(rows)
		if err != nil {
			rows.Close()
			return nil, wrapErr("scan conteo", err)
		}
		list = append(list, c)
		ids = append(ids, c.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list conteos", err)
	}
	if len(ids) == 0 {
		return list, nil
	}
	details, err := r.details(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		c.Details = details[c.ID]
	}
	return list, nil
}
