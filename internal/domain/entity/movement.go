package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Efecto de un tipo de movimiento sobre el stock.
const (
	EffectDecrease = -1
	EffectNone     = 0
	EffectIncrease = 1
)

// Direction sentido que pide quien registra el movimiento (entrada o salida).
type Direction int

const (
	DirectionIn  Direction = EffectIncrease
	DirectionOut Direction = EffectDecrease
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "entrada"
	case DirectionOut:
		return "salida"
	}
	return "desconocida"
}

// MovementType tipo de movimiento (dato de referencia).
type MovementType struct {
	ID          int64
	Name        string
	Description string
	StockEffect int // -1, 0 o 1
}

// Matches indica si el efecto del tipo coincide con la dirección pedida.
func (t *MovementType) Matches(d Direction) bool {
	return t.StockEffect == int(d)
}

// Movement asiento del libro de movimientos. Inmutable una vez creado.
type Movement struct {
	ID                  int64
	ProductID           int64
	MovementTypeID      int64
	Quantity            decimal.Decimal // en la unidad registrada
	UnitID              int64
	QuantityPrimary     decimal.Decimal // cantidad_convertida_a_primaria
	StockBefore         decimal.Decimal
	StockAfter          decimal.Decimal
	UserID              int64
	Reason              string
	Reference           string
	Notes               string
	ReservationDetailID *int64
	CountDetailID       *int64
	CreatedAt           time.Time
}

// MovementFilter filtros del kardex.
type MovementFilter struct {
	ProductID      *int64
	MovementTypeID *int64
	UserID         *int64
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}
