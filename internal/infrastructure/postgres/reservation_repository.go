package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

const (
	reservationColumns = `id, vendedor_id, procesador_id, proposito, estado, fecha_solicitud,
	fecha_procesamiento, fecha_entrega, motivo_rechazo, notas`
	reservationDetailColumns = `id, reserva_id, producto_id, cantidad_solicitada, unidad_id, cantidad_convertida,
	cantidad_aprobada, cantidad_entregada, stock_al_solicitar`
)

// ReservationRepo solicitudes de reserva sobre PostgreSQL (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

func scanReservation(row scanner) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(&res.ID, &res.SellerID, &res.ProcessorID, &res.Purpose, &res.Status, &res.RequestedAt,
		&res.ProcessedAt, &res.DeliveredAt, &res.RejectionReason, &res.Notes)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Create inserta cabecera y detalles; asigna los IDs generados.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO reservas (vendedor_id, procesador_id, proposito, estado, fecha_solicitud, notas)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		res.SellerID, res.ProcessorID, res.Purpose, res.Status, res.RequestedAt, res.Notes,
	).Scan(&res.ID)
	if err != nil {
		return wrapErr("insert reserva", err)
	}
	for i := range res.Details {
		d := &res.Details[i]
		d.ReservationID = res.ID
		err := r.q.QueryRow(ctx, `
			INSERT INTO reserva_detalles (reserva_id, producto_id, cantidad_solicitada, unidad_id,
				cantidad_convertida, cantidad_aprobada, cantidad_entregada, stock_al_solicitar)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			d.ReservationID, d.ProductID, d.RequestedQty, d.UnitID,
			d.RequestedPrimary, d.ApprovedPrimary, d.DeliveredPrimary, d.StockAtRequest,
		).Scan(&d.ID)
		if err != nil {
			return wrapErr("insert detalle reserva", err)
		}
	}
	return nil
}

func (r *ReservationRepo) get(ctx context.Context, id int64, lock bool) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservas WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	res, err := scanReservation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get reserva", err)
	}
	details, err := r.details(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	res.Details = details[id]
	return res, nil
}

// details carga las líneas de las reservas indicadas, agrupadas por reserva.
func (r *ReservationRepo) details(ctx context.Context, ids []int64) (map[int64][]entity.ReservationDetail, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+reservationDetailColumns+` FROM reserva_detalles WHERE reserva_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, wrapErr("list detalles reserva", err)
	}
	defer rows.Close()
	out := make(map[int64][]entity.ReservationDetail, len(ids))
	for rows.Next() {
		var d entity.ReservationDetail
		if err := rows.Scan(&d.ID, &d.ReservationID, &d.ProductID, &d.RequestedQty, &d.UnitID, &d.RequestedPrimary,
			&d.ApprovedPrimary, &d.DeliveredPrimary, &d.StockAtRequest); err != nil {
			return nil, wrapErr("scan detalle reserva", err)
		}
		out[d.ReservationID] = append(out[d.ReservationID], d)
	}
	return out, rows.Err()
}

func (r *ReservationRepo) GetWithDetails(ctx context.Context, id int64) (*entity.Reservation, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) y carga las líneas.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Reservation, error) {
	return r.get(ctx, id, true)
}

func (r *ReservationRepo) UpdateHeader(ctx context.Context, res *entity.Reservation) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE reservas SET procesador_id = $2, estado = $3, fecha_procesamiento = $4,
			fecha_entrega = $5, motivo_rechazo = $6, notas = $7
		WHERE id = $1`,
		res.ID, res.ProcessorID, res.Status, res.ProcessedAt, res.DeliveredAt, res.RejectionReason, res.Notes,
	)
	if err != nil {
		return wrapErr("update reserva", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReservationRepo) UpdateDetail(ctx context.Context, d *entity.ReservationDetail) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE reserva_detalles SET cantidad_aprobada = $2, cantidad_entregada = $3 WHERE id = $1`,
		d.ID, d.ApprovedPrimary, d.DeliveredPrimary,
	)
	if err != nil {
		return wrapErr("update detalle reserva", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List reservas filtradas por estado y vendedor, más recientes primero, con sus líneas.
func (r *ReservationRepo) List(ctx context.Context, f entity.ReservationFilter) ([]*entity.Reservation, error) {
	var w filter
	if f.Status != nil {
		w.add("estado = $%[1]d", *f.Status)
	}
	if f.SellerID != nil {
		w.add("vendedor_id = $%[1]d", *f.SellerID)
	}
	query := `SELECT ` + reservationColumns + ` FROM reservas` + w.where() + ` ORDER BY id DESC` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, wrapErr("list reservas", err)
	}
	var list []*entity.Reservation
	var ids []int64
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			rows.Close()
			return nil, wrapErr("scan reserva", err)
		}
		list = append(list, res)
		ids = append(ids, res.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list reservas", err)
	}
	if len(ids) == 0 {
		return list, nil
	}
	details, err := r.details(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, res := range list {
		res.Details = details[res.ID]
	}
	return list, nil
}
