package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// CurrentStock se expresa siempre en la unidad primaria y solo lo modifica el motor de movimientos.
type Product struct {
	ID            int64
	SKU           string // código único
	Name          string
	Description   string
	CategoryID    *int64
	SupplierID    *int64 // proveedor habitual (opcional)
	LocationID    *int64 // ubicación en almacén (opcional)
	CurrentStock  decimal.Decimal
	MinStock      decimal.Decimal
	MaxStock      decimal.Decimal
	PrimaryUnitID int64
	// Unidad alternativa de conteo: ambas o ninguna.
	AltUnitID     *int64
	AltUnitFactor *decimal.Decimal // cantidad de unidades primarias por unidad alternativa
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasAltUnit indica si el producto admite una unidad alternativa con factor configurado.
func (p *Product) HasAltUnit() bool {
	return p.AltUnitID != nil && p.AltUnitFactor != nil
}

// BelowMinimum indica si el stock actual quedó por debajo del mínimo de reorden.
func (p *Product) BelowMinimum() bool {
	return p.CurrentStock.LessThan(p.MinStock)
}

// ProductFilter filtros para listar productos.
type ProductFilter struct {
	Search      string // coincide con sku o nombre
	BelowMinimo bool
	OnlyActive  bool
	Limit       int
	Offset      int
}
