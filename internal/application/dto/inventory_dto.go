package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/movimientos/entrada y /salida.
// unidad_id = 0 o ausente significa la unidad primaria del producto.
type RegisterMovementRequest struct {
	ProductID      int64           `json:"producto_id" validate:"required,gt=0"`
	MovementTypeID int64           `json:"tipo_movimiento_id" validate:"required,gt=0"`
	Quantity       decimal.Decimal `json:"cantidad" validate:"gt=0"`
	UnitID         int64           `json:"unidad_id" validate:"gte=0"`
	Reason         string          `json:"motivo" validate:"max=255"`
	Reference      string          `json:"referencia" validate:"max=100"`
	Notes          string          `json:"notas"`
}

// MovementResponse asiento del kardex.
type MovementResponse struct {
	ID                  int64           `json:"id"`
	ProductID           int64           `json:"producto_id"`
	MovementTypeID      int64           `json:"tipo_movimiento_id"`
	Quantity            decimal.Decimal `json:"cantidad"`
	UnitID              int64           `json:"unidad_id"`
	QuantityPrimary     decimal.Decimal `json:"cantidad_convertida_a_primaria"`
	StockBefore         decimal.Decimal `json:"stock_anterior"`
	StockAfter          decimal.Decimal `json:"stock_nuevo"`
	UserID              int64           `json:"usuario_id"`
	Reason              string          `json:"motivo,omitempty"`
	Reference           string          `json:"referencia,omitempty"`
	Notes               string          `json:"notas,omitempty"`
	ReservationDetailID *int64          `json:"detalle_reserva_id,omitempty"`
	CountDetailID       *int64          `json:"detalle_conteo_id,omitempty"`
	CreatedAt           time.Time       `json:"fecha"`
}

// RegisterMovementResponse movimiento creado más el stock resultante del producto.
type RegisterMovementResponse struct {
	Movement     MovementResponse `json:"movimiento"`
	CurrentStock decimal.Decimal  `json:"stock_actual"`
}

// MovementListResponse página del kardex.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementTypeResponse tipo de movimiento.
type MovementTypeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
	StockEffect int    `json:"efecto_stock"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto bajo su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID         int64           `json:"producto_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"nombre"`
	CurrentStock      decimal.Decimal `json:"stock_actual"`
	MinStock          decimal.Decimal `json:"stock_minimo"`
	TargetStock       decimal.Decimal `json:"stock_objetivo"`    // stock_maximo, o mínimo × 1.5 si no hay máximo
	SuggestedOrderQty decimal.Decimal `json:"cantidad_sugerida"` // objetivo - actual
	Priority          int             `json:"prioridad"`         // 1 = más urgente
}
