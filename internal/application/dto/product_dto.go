package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock inicia en cero y solo cambia vía movimientos.
type CreateProductRequest struct {
	SKU           string           `json:"sku" validate:"required,min=1,max=50"`
	Name          string           `json:"nombre" validate:"required,min=1,max=200"`
	Description   string           `json:"descripcion"`
	CategoryID    *int64           `json:"categoria_id"`
	SupplierID    *int64           `json:"proveedor_id"`
	LocationID    *int64           `json:"ubicacion_id"`
	MinStock      decimal.Decimal  `json:"stock_minimo" validate:"gte=0"`
	MaxStock      decimal.Decimal  `json:"stock_maximo" validate:"gte=0"`
	PrimaryUnitID int64            `json:"unidad_primaria_id" validate:"required,gt=0"`
	AltUnitID     *int64           `json:"unidad_alternativa_id"`
	AltUnitFactor *decimal.Decimal `json:"cantidad_por_unidad_alternativa"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock).
// Para quitar la unidad alternativa enviar clear_unidad_alternativa=true.
type UpdateProductRequest struct {
	Name          *string          `json:"nombre" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"descripcion"`
	CategoryID    *int64           `json:"categoria_id"`
	SupplierID    *int64           `json:"proveedor_id"`
	LocationID    *int64           `json:"ubicacion_id"`
	MinStock      *decimal.Decimal `json:"stock_minimo"`
	MaxStock      *decimal.Decimal `json:"stock_maximo"`
	PrimaryUnitID *int64           `json:"unidad_primaria_id"`
	AltUnitID     *int64           `json:"unidad_alternativa_id"`
	AltUnitFactor *decimal.Decimal `json:"cantidad_por_unidad_alternativa"`
	ClearAltUnit  bool             `json:"clear_unidad_alternativa"`
	Active        *bool            `json:"activo"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            int64            `json:"id"`
	SKU           string           `json:"sku"`
	Name          string           `json:"nombre"`
	Description   string           `json:"descripcion"`
	CategoryID    *int64           `json:"categoria_id,omitempty"`
	SupplierID    *int64           `json:"proveedor_id,omitempty"`
	LocationID    *int64           `json:"ubicacion_id,omitempty"`
	CurrentStock  decimal.Decimal  `json:"stock_actual"`
	MinStock      decimal.Decimal  `json:"stock_minimo"`
	MaxStock      decimal.Decimal  `json:"stock_maximo"`
	PrimaryUnitID int64            `json:"unidad_primaria_id"`
	AltUnitID     *int64           `json:"unidad_alternativa_id,omitempty"`
	AltUnitFactor *decimal.Decimal `json:"cantidad_por_unidad_alternativa,omitempty"`
	BelowMinimum  bool             `json:"bajo_minimo"`
	Active        bool             `json:"activo"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
