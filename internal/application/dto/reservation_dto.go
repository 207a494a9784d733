package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateReservationRequest body para POST /api/reservas.
type CreateReservationRequest struct {
	Purpose string                   `json:"proposito" validate:"max=255"`
	Notes   string                   `json:"notas"`
	Lines   []ReservationLineRequest `json:"detalles" validate:"required,min=1,dive"`
}

// ReservationLineRequest línea solicitada; unidad_id = 0 usa la unidad primaria.
type ReservationLineRequest struct {
	ProductID int64           `json:"producto_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"cantidad" validate:"gt=0"`
	UnitID    int64           `json:"unidad_id" validate:"gte=0"`
}

// ApproveReservationRequest body para POST /api/reservas/:id/aprobar.
type ApproveReservationRequest struct {
	Approvals []ApprovalLineRequest `json:"aprobaciones" validate:"required,min=1,dive"`
	Notes     string                `json:"notas"`
}

// ApprovalLineRequest cantidad aprobada (unidad primaria) para un detalle.
type ApprovalLineRequest struct {
	DetailID    int64           `json:"detalle_id" validate:"required,gt=0"`
	ApprovedQty decimal.Decimal `json:"cantidad_aprobada"`
}

// RejectReservationRequest body para POST /api/reservas/:id/rechazar.
type RejectReservationRequest struct {
	Reason string `json:"motivo" validate:"required,min=1,max=500"`
}

// DeliverReservationRequest body para POST /api/reservas/:id/entregar.
type DeliverReservationRequest struct {
	Notes string `json:"notas"`
}

// ReservationResponse cabecera y detalles de una reserva.
type ReservationResponse struct {
	ID              int64                       `json:"id"`
	SellerID        int64                       `json:"vendedor_id"`
	ProcessorID     *int64                      `json:"procesado_por,omitempty"`
	Purpose         string                      `json:"proposito"`
	Status          string                      `json:"estado"`
	RequestedAt     time.Time                   `json:"fecha_solicitud"`
	ProcessedAt     *time.Time                  `json:"fecha_procesamiento,omitempty"`
	DeliveredAt     *time.Time                  `json:"fecha_entrega,omitempty"`
	RejectionReason string                      `json:"motivo_rechazo,omitempty"`
	Notes           string                      `json:"notas,omitempty"`
	Details         []ReservationDetailResponse `json:"detalles"`
}

// ReservationDetailResponse línea de la reserva.
type ReservationDetailResponse struct {
	ID               int64            `json:"id"`
	ProductID        int64            `json:"producto_id"`
	RequestedQty     decimal.Decimal  `json:"cantidad_solicitada"`
	UnitID           int64            `json:"unidad_id"`
	RequestedPrimary decimal.Decimal  `json:"cantidad_solicitada_primaria"`
	ApprovedPrimary  *decimal.Decimal `json:"cantidad_aprobada,omitempty"`
	DeliveredPrimary decimal.Decimal  `json:"cantidad_entregada"`
	StockAtRequest   decimal.Decimal  `json:"stock_al_solicitar"`
}

// ReservationListResponse lista paginada de reservas.
type ReservationListResponse struct {
	Items []ReservationResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
