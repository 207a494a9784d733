package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest body para POST /api/ordenes-compra.
type CreatePurchaseOrderRequest struct {
	SupplierID int64                      `json:"proveedor_id" validate:"required,gt=0"`
	ExpectedAt *time.Time                 `json:"fecha_entrega_esperada"`
	Notes      string                     `json:"notas"`
	Lines      []PurchaseOrderLineRequest `json:"detalles" validate:"required,min=1,dive"`
}

// PurchaseOrderLineRequest línea pedida (cantidad en unidad primaria).
type PurchaseOrderLineRequest struct {
	ProductID    int64           `json:"producto_id" validate:"required,gt=0"`
	RequestedQty decimal.Decimal `json:"cantidad" validate:"gt=0"`
	UnitCost     decimal.Decimal `json:"costo_unitario" validate:"gte=0"`
}

// SetPurchaseOrderStatusRequest body para PATCH /api/ordenes-compra/:id/estado.
type SetPurchaseOrderStatusRequest struct {
	Status string `json:"estado" validate:"required"`
}

// ReceivePurchaseOrderRequest body para POST /api/ordenes-compra/:id/recibir.
type ReceivePurchaseOrderRequest struct {
	Receipts []ReceiptLineRequest `json:"recepciones" validate:"required,min=1,dive"`
	Notes    string               `json:"notas"`
}

// ReceiptLineRequest cantidad recibida para un detalle. Cantidades ≤ 0 se ignoran.
type ReceiptLineRequest struct {
	DetailID    int64           `json:"detalle_id" validate:"required,gt=0"`
	ReceivedQty decimal.Decimal `json:"cantidad_recibida"`
}

// PurchaseOrderResponse cabecera, totales y detalles de una orden.
type PurchaseOrderResponse struct {
	ID         int64                         `json:"id"`
	SupplierID int64                         `json:"proveedor_id"`
	CreatedBy  int64                         `json:"creado_por"`
	Status     string                        `json:"estado"`
	IssuedAt   time.Time                     `json:"fecha_emision"`
	ExpectedAt *time.Time                    `json:"fecha_entrega_esperada,omitempty"`
	Subtotal   decimal.Decimal               `json:"subtotal"`
	Tax        decimal.Decimal               `json:"impuesto"`
	Total      decimal.Decimal               `json:"total"`
	Notes      string                        `json:"notas,omitempty"`
	Details    []PurchaseOrderDetailResponse `json:"detalles"`
}

// PurchaseOrderDetailResponse línea de la orden.
type PurchaseOrderDetailResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"producto_id"`
	RequestedQty decimal.Decimal `json:"cantidad"`
	UnitCost     decimal.Decimal `json:"costo_unitario"`
	ReceivedQty  decimal.Decimal `json:"cantidad_recibida"`
	PendingQty   decimal.Decimal `json:"cantidad_pendiente"`
}

// PurchaseOrderListResponse lista paginada de órdenes.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
