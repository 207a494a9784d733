package purchasing

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// PurchaseOrderLineForPDF línea de la orden enriquecida con datos del producto.
type PurchaseOrderLineForPDF struct {
	entity.PurchaseOrderDetail
	SKU         string
	ProductName string
}

// PurchaseOrderDocument datos completos para renderizar la orden.
type PurchaseOrderDocument struct {
	Order    *entity.PurchaseOrder
	Supplier *entity.Supplier
	Lines    []PurchaseOrderLineForPDF
}

// PurchaseOrderPDFGenerator puerto de salida para generar el PDF de una orden.
type PurchaseOrderPDFGenerator interface {
	GeneratePurchaseOrderPDF(ctx context.Context, doc PurchaseOrderDocument) ([]byte, error)
}

// PDFUseCase genera la representación imprimible de una orden de compra.
type PDFUseCase struct {
	repos     repository.Repositories
	generator PurchaseOrderPDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(repos repository.Repositories, generator PurchaseOrderPDFGenerator) *PDFUseCase {
	return &PDFUseCase{repos: repos, generator: generator}
}

// DownloadPDF carga orden, proveedor y productos y genera el PDF.
// Devuelve domain.ErrNotFound si la orden no existe.
func (uc *PDFUseCase) DownloadPDF(ctx context.Context, id int64) (pdfBytes []byte, filename string, err error) {
	order, err := uc.repos.PurchaseOrders.GetWithDetails(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if order == nil {
		return nil, "", domain.Errorf(domain.ErrNotFound, "orden de compra %d no encontrada", id)
	}

	supplier, err := uc.repos.Suppliers.GetByID(ctx, order.SupplierID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener proveedor: %w", err)
	}
	if supplier == nil {
		supplier = &entity.Supplier{ID: order.SupplierID, Name: fmt.Sprintf("Proveedor %d", order.SupplierID)}
	}

	lines := make([]PurchaseOrderLineForPDF, 0, len(order.Details))
	for _, d := range order.Details {
		line := PurchaseOrderLineForPDF{PurchaseOrderDetail: d, ProductName: fmt.Sprintf("Producto %d", d.ProductID)}
		if p, pErr := uc.repos.Products.GetByID(ctx, d.ProductID); pErr == nil && p != nil {
			line.SKU = p.SKU
			line.ProductName = p.Name
		}
		lines = append(lines, line)
	}

	pdfBytes, err = uc.generator.GeneratePurchaseOrderPDF(ctx, PurchaseOrderDocument{
		Order: order, Supplier: supplier, Lines: lines,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("orden_compra_%d.pdf", order.ID), nil
}
