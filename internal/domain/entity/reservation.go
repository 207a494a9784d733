package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus estado de una solicitud de reserva.
type ReservationStatus string

const (
	ReservationPending           ReservationStatus = "Pendiente"
	ReservationApproved          ReservationStatus = "Aprobada"
	ReservationPartiallyApproved ReservationStatus = "Aprobada Parcialmente"
	ReservationRejected          ReservationStatus = "Rechazada"
	ReservationDelivered         ReservationStatus = "Entregada"
	ReservationCancelled         ReservationStatus = "Cancelada"
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:           {ReservationApproved, ReservationPartiallyApproved, ReservationRejected, ReservationCancelled},
	ReservationApproved:          {ReservationDelivered, ReservationCancelled},
	ReservationPartiallyApproved: {ReservationDelivered, ReservationCancelled},
}

// IsValid verifica que el estado pertenezca al dominio.
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationPending, ReservationApproved, ReservationPartiallyApproved,
		ReservationRejected, ReservationDelivered, ReservationCancelled:
		return true
	}
	return false
}

// CanTransitionTo consulta la tabla de transiciones.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, t := range reservationTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Reservation solicitud de reserva de un vendedor, procesada por bodega.
type Reservation struct {
	ID              int64
	SellerID        int64
	ProcessorID     *int64
	Purpose         string
	Status          ReservationStatus
	RequestedAt     time.Time
	ProcessedAt     *time.Time
	DeliveredAt     *time.Time
	RejectionReason string
	Notes           string
	Details         []ReservationDetail
}

// ReservationDetail línea de la reserva. Cantidades aprobada y entregada en unidad primaria.
type ReservationDetail struct {
	ID               int64
	ReservationID    int64
	ProductID        int64
	RequestedQty     decimal.Decimal
	UnitID           int64
	RequestedPrimary decimal.Decimal
	ApprovedPrimary  *decimal.Decimal
	DeliveredPrimary decimal.Decimal
	StockAtRequest   decimal.Decimal
}

// Pending devuelve lo aprobado que falta entregar (cero si no hay aprobación).
func (d *ReservationDetail) Pending() decimal.Decimal {
	if d.ApprovedPrimary == nil {
		return decimal.Zero
	}
	return d.ApprovedPrimary.Sub(d.DeliveredPrimary)
}

// ReservationFilter filtros para listar reservas.
type ReservationFilter struct {
	Status   *ReservationStatus
	SellerID *int64
	Limit    int
	Offset   int
}
