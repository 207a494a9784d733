package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.UnitRepository         = (*UnitRepo)(nil)
	_ repository.SupplierRepository     = (*SupplierRepo)(nil)
	_ repository.MovementTypeRepository = (*MovementTypeRepo)(nil)
)

// UnitRepo unidades de medida.
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador de unidades.
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

func (r *UnitRepo) GetByID(ctx context.Context, id int64) (*entity.UnitOfMeasure, error) {
	var u entity.UnitOfMeasure
	err := r.q.QueryRow(ctx, `SELECT id, nombre, abreviatura FROM unidades_medida WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Abbreviation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get unidad", err)
	}
	return &u, nil
}

func (r *UnitRepo) List(ctx context.Context) ([]*entity.UnitOfMeasure, error) {
	rows, err := r.q.Query(ctx, `SELECT id, nombre, abreviatura FROM unidades_medida ORDER BY id`)
	if err != nil {
		return nil, wrapErr("list unidades", err)
	}
	defer rows.Close()
	var list []*entity.UnitOfMeasure
	for rows.Next() {
		var u entity.UnitOfMeasure
		if err := rows.Scan(&u.ID, &u.Name, &u.Abbreviation); err != nil {
			return nil, wrapErr("scan unidad", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// SupplierRepo proveedores (solo lectura).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador de proveedores.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func (r *SupplierRepo) GetByID(ctx context.Context, id int64) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx,
		`SELECT id, nombre, nit, email, telefono, activo FROM proveedores WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.TaxID, &s.Email, &s.Phone, &s.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get proveedor", err)
	}
	return &s, nil
}

// MovementTypeRepo tipos de movimiento.
type MovementTypeRepo struct {
	q Querier
}

// NewMovementTypeRepository construye el adaptador de tipos de movimiento.
func NewMovementTypeRepository(q Querier) *MovementTypeRepo {
	return &MovementTypeRepo{q: q}
}

const movementTypeColumns = `id, nombre, descripcion, efecto_stock`

func (r *MovementTypeRepo) getOne(ctx context.Context, query string, arg any) (*entity.MovementType, error) {
	var t entity.MovementType
	err := r.q.QueryRow(ctx, query, arg).Scan(&t.ID, &t.Name, &t.Description, &t.StockEffect)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get tipo movimiento", err)
	}
	return &t, nil
}

func (r *MovementTypeRepo) GetByID(ctx context.Context, id int64) (*entity.MovementType, error) {
	return r.getOne(ctx, `SELECT `+movementTypeColumns+` FROM tipos_movimiento WHERE id = $1`, id)
}

func (r *MovementTypeRepo) GetByName(ctx context.Context, name string) (*entity.MovementType, error) {
	return r.getOne(ctx, `SELECT `+movementTypeColumns+` FROM tipos_movimiento WHERE nombre = $1`, name)
}

func (r *MovementTypeRepo) List(ctx context.Context) ([]*entity.MovementType, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementTypeColumns+` FROM tipos_movimiento ORDER BY id`)
	if err != nil {
		return nil, wrapErr("list tipos movimiento", err)
	}
	defer rows.Close()
	var list []*entity.MovementType
	for rows.Next() {
		var t entity.MovementType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.StockEffect); err != nil {
			return nil, wrapErr("scan tipo movimiento", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
