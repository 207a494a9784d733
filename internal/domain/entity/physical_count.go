package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CountStatus estado de un conteo físico.
type CountStatus string

const (
	CountStarted            CountStatus = "Iniciado"
	CountInProgress         CountStatus = "En Progreso"
	CountRecorded           CountStatus = "Registrado"
	CountAdjustmentsApplied CountStatus = "Ajustes Aplicados"
	CountCancelled          CountStatus = "Cancelado"
)

var countTransitions = map[CountStatus][]CountStatus{
	CountStarted:    {CountInProgress, CountRecorded, CountCancelled},
	CountInProgress: {CountRecorded, CountCancelled},
	CountRecorded:   {CountAdjustmentsApplied},
}

// IsValid verifica que el estado pertenezca al dominio.
func (s CountStatus) IsValid() bool {
	switch s {
	case CountStarted, CountInProgress, CountRecorded, CountAdjustmentsApplied, CountCancelled:
		return true
	}
	return false
}

// CanTransitionTo consulta la tabla de transiciones.
func (s CountStatus) CanTransitionTo(target CountStatus) bool {
	for _, t := range countTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AcceptsDetails indica si aún se pueden registrar cantidades contadas.
func (s CountStatus) AcceptsDetails() bool {
	return s == CountStarted || s == CountInProgress
}

// PhysicalCount cabecera de un conteo físico de inventario.
type PhysicalCount struct {
	ID            int64
	ResponsibleID int64
	Status        CountStatus
	StartedAt     time.Time
	FinishedAt    *time.Time
	Motive        string
	Filters       string // criterios de selección de productos (texto libre / JSON del cliente)
	Notes         string
	Details       []CountDetail
}

// CountDetail cantidad contada de un producto. Variance = Counted - Theoretical.
type CountDetail struct {
	ID                int64
	CountID           int64
	ProductID         int64
	TheoreticalStock  decimal.Decimal
	CountedStock      decimal.Decimal
	Variance          decimal.Decimal
	AdjustmentApplied bool
	MovementID        *int64
	UpdatedAt         time.Time
}

// Recalculate vuelve a calcular la diferencia.
func (d *CountDetail) Recalculate() {
	d.Variance = d.CountedStock.Sub(d.TheoreticalStock)
}

// NeedsAdjustment indica si la línea debe generar un movimiento de ajuste.
func (d *CountDetail) NeedsAdjustment() bool {
	return !d.Variance.IsZero() && !d.AdjustmentApplied
}

// CountFilter filtros para listar conteos.
type CountFilter struct {
	Status *CountStatus
	Limit  int
	Offset int
}
