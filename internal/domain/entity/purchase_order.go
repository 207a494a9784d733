package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderTaxRate impuesto fijo aplicado al subtotal de la orden (13 %).
var PurchaseOrderTaxRate = decimal.NewFromFloat(0.13)

// PurchaseOrderStatus estado de una orden de compra.
type PurchaseOrderStatus string

const (
	PurchaseOrderDraft             PurchaseOrderStatus = "Borrador"
	PurchaseOrderSent              PurchaseOrderStatus = "Enviada"
	PurchaseOrderPartiallyReceived PurchaseOrderStatus = "Recibida Parcialmente"
	PurchaseOrderFullyReceived     PurchaseOrderStatus = "Recibida Completa"
	PurchaseOrderCancelled         PurchaseOrderStatus = "Cancelada"
)

var allPurchaseOrderStatuses = []PurchaseOrderStatus{
	PurchaseOrderDraft, PurchaseOrderSent, PurchaseOrderPartiallyReceived,
	PurchaseOrderFullyReceived, PurchaseOrderCancelled,
}

// Destinos de un cambio manual. Recibida Completa solo la asigna la recepción.
var manualPurchaseOrderTargets = []PurchaseOrderStatus{
	PurchaseOrderDraft, PurchaseOrderSent, PurchaseOrderPartiallyReceived, PurchaseOrderCancelled,
}

var purchaseOrderTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderDraft:             manualPurchaseOrderTargets,
	PurchaseOrderSent:              manualPurchaseOrderTargets,
	PurchaseOrderPartiallyReceived: manualPurchaseOrderTargets,
}

// IsValid verifica que el estado pertenezca al dominio.
func (s PurchaseOrderStatus) IsValid() bool {
	for _, st := range allPurchaseOrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal indica estados sin salida.
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderFullyReceived || s == PurchaseOrderCancelled
}

// CanTransitionTo consulta la tabla de cambios manuales.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	for _, t := range purchaseOrderTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// CanReceive indica si la orden admite recepciones.
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderSent || s == PurchaseOrderPartiallyReceived
}

// PurchaseOrder orden de compra a proveedor. Totales calculados una sola vez al crearla.
type PurchaseOrder struct {
	ID         int64
	SupplierID int64
	CreatedBy  int64
	Status     PurchaseOrderStatus
	IssuedAt   time.Time
	ExpectedAt *time.Time
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Notes      string
	Details    []PurchaseOrderDetail
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PurchaseOrderDetail línea de la orden; cantidades en unidad primaria del producto.
type PurchaseOrderDetail struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	RequestedQty decimal.Decimal
	UnitCost     decimal.Decimal
	ReceivedQty  decimal.Decimal
}

// PendingQty cantidad que falta por recibir.
func (d *PurchaseOrderDetail) PendingQty() decimal.Decimal {
	return d.RequestedQty.Sub(d.ReceivedQty)
}

// IsComplete indica si la línea ya se recibió completa.
func (d *PurchaseOrderDetail) IsComplete() bool {
	return d.ReceivedQty.GreaterThanOrEqual(d.RequestedQty)
}

// ComputeTotals calcula subtotal, impuesto y total a partir de las líneas.
func (o *PurchaseOrder) ComputeTotals() {
	subtotal := decimal.Zero
	for _, d := range o.Details {
		subtotal = subtotal.Add(d.RequestedQty.Mul(d.UnitCost))
	}
	o.Subtotal = subtotal.Round(2)
	o.Tax = subtotal.Mul(PurchaseOrderTaxRate).Round(2)
	o.Total = o.Subtotal.Add(o.Tax)
}

// AllReceived indica si todas las líneas están completas.
func (o *PurchaseOrder) AllReceived() bool {
	for i := range o.Details {
		if !o.Details[i].IsComplete() {
			return false
		}
	}
	return true
}

// PurchaseOrderFilter filtros para listar órdenes.
type PurchaseOrderFilter struct {
	Status     *PurchaseOrderStatus
	SupplierID *int64
	Limit      int
	Offset     int
}
