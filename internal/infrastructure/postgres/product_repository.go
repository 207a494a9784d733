package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, nombre, descripcion, categoria_id, proveedor_id, ubicacion_id,
	stock_actual, stock_minimo, stock_maximo, unidad_primaria_id, unidad_alternativa_id,
	cantidad_por_unidad_alternativa, activo, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row scanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.CategoryID, &p.SupplierID, &p.LocationID,
		&p.CurrentStock, &p.MinStock, &p.MaxStock, &p.PrimaryUnitID, &p.AltUnitID,
		&p.AltUnitFactor, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto y asigna su ID.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO productos (sku, nombre, descripcion, categoria_id, proveedor_id, ubicacion_id,
			stock_actual, stock_minimo, stock_maximo, unidad_primaria_id, unidad_alternativa_id,
			cantidad_por_unidad_alternativa, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		p.SKU, p.Name, p.Description, p.CategoryID, p.SupplierID, p.LocationID,
		p.CurrentStock, p.MinStock, p.MaxStock, p.PrimaryUnitID, p.AltUnitID,
		p.AltUnitFactor, p.Active, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return wrapErr("insert producto", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "get producto", `SELECT `+productColumns+` FROM productos WHERE id = $1`, id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "get producto por sku", `SELECT `+productColumns+` FROM productos WHERE sku = $1`, sku)
}

// GetForUpdate obtiene el producto y bloquea la fila para update (SELECT FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "get producto for update", `SELECT `+productColumns+` FROM productos WHERE id = $1 FOR UPDATE`, id)
}

// Update actualiza un producto existente. No permite modificar el stock (se maneja vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE productos SET nombre = $2, descripcion = $3, categoria_id = $4, proveedor_id = $5,
			ubicacion_id = $6, stock_minimo = $7, stock_maximo = $8, unidad_primaria_id = $9,
			unidad_alternativa_id = $10, cantidad_por_unidad_alternativa = $11, activo = $12, updated_at = $13
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.CategoryID, p.SupplierID,
		p.LocationID, p.MinStock, p.MaxStock, p.PrimaryUnitID,
		p.AltUnitID, p.AltUnitFactor, p.Active, p.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update producto", err)
	}
	return nil
}

// UpdateStock actualiza solo el stock del producto (usado por el motor de movimientos).
func (r *ProductRepo) UpdateStock(ctx context.Context, productID int64, stock decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE productos SET stock_actual = $2, updated_at = now() WHERE id = $1`,
		productID, stock,
	)
	if err != nil {
		return wrapErr("update stock producto", err)
	}
	return nil
}

// List lista productos con búsqueda por sku/nombre y paginación.
func (r *ProductRepo) List(ctx context.Context, f entity.ProductFilter) ([]*entity.Product, error) {
	var w filter
	if f.Search != "" {
		w.add("(sku ILIKE $%[1]d OR nombre ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	if f.OnlyActive {
		w.raw("activo")
	}
	if f.BelowMinimo {
		w.raw("stock_actual < stock_minimo")
	}
	query := `SELECT ` + productColumns + ` FROM productos` + w.where() + ` ORDER BY id` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, wrapErr("list productos", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr("scan producto", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list productos", err)
	}
	return list, nil
}
