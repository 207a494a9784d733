package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StartCountRequest body para POST /api/conteos.
type StartCountRequest struct {
	Motive  string `json:"motivo" validate:"max=255"`
	Filters string `json:"filtros"`
	Notes   string `json:"notas"`
}

// CountDetailRequest body para POST /api/conteos/:id/detalles.
// Se envía cantidad_contada (unidad primaria) o el par unidad_id + cantidad_alternativa.
type CountDetailRequest struct {
	ProductID   int64            `json:"producto_id" validate:"required,gt=0"`
	CountedQty  *decimal.Decimal `json:"cantidad_contada"`
	UnitID      int64            `json:"unidad_id" validate:"gte=0"`
	AltQuantity *decimal.Decimal `json:"cantidad_alternativa"`
}

// FinalizeCountRequest body para POST /api/conteos/:id/finalizar.
type FinalizeCountRequest struct {
	Notes string `json:"notas"`
}

// CountResponse cabecera y detalles de un conteo.
type CountResponse struct {
	ID            int64                 `json:"id"`
	ResponsibleID int64                 `json:"responsable_id"`
	Status        string                `json:"estado"`
	StartedAt     time.Time             `json:"fecha_inicio"`
	FinishedAt    *time.Time            `json:"fecha_fin,omitempty"`
	Motive        string                `json:"motivo,omitempty"`
	Filters       string                `json:"filtros,omitempty"`
	Notes         string                `json:"notas,omitempty"`
	Details       []CountDetailResponse `json:"detalles"`
}

// CountDetailResponse línea del conteo.
type CountDetailResponse struct {
	ID                int64           `json:"id"`
	ProductID         int64           `json:"producto_id"`
	TheoreticalStock  decimal.Decimal `json:"stock_teorico"`
	CountedStock      decimal.Decimal `json:"stock_contado"`
	Variance          decimal.Decimal `json:"diferencia"`
	AdjustmentApplied bool            `json:"ajuste_aplicado"`
	MovementID        *int64          `json:"movimiento_id,omitempty"`
}

// ApplyAdjustmentsResponse resultado de aplicar ajustes.
type ApplyAdjustmentsResponse struct {
	Count     CountResponse      `json:"conteo"`
	Movements []MovementResponse `json:"movimientos"`
}

// CountListResponse lista paginada de conteos.
type CountListResponse struct {
	Items []CountResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
