package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/purchasing"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// PurchaseOrderHandler órdenes de compra: creación, cambio de estado, recepción y PDF.
type PurchaseOrderHandler struct {
	uc  *purchasing.UseCase
	pdf *purchasing.PDFUseCase
}

// NewPurchaseOrderHandler construye el handler.
func NewPurchaseOrderHandler(uc *purchasing.UseCase, pdf *purchasing.PDFUseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc, pdf: pdf}
}

// Create godoc
// @Summary      Crear orden de compra
// @Description  Calcula subtotal, impuesto (13 %) y total. La orden queda en Borrador.
// @Tags         ordenes-compra
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "Orden"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ordenes-compra [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SetStatus godoc
// @Summary      Cambiar estado de la orden
// @Tags         ordenes-compra
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la orden"
// @Param        body  body  dto.SetPurchaseOrderStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ordenes-compra/{id}/estado [patch]
func (h *PurchaseOrderHandler) SetStatus(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.SetPurchaseOrderStatusRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.SetStatus(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receive godoc
// @Summary      Recibir mercancía
// @Description  Registra una entrada por cada línea recibida y actualiza el estado de la orden.
// @Tags         ordenes-compra
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la orden"
// @Param        body  body  dto.ReceivePurchaseOrderRequest  true  "Cantidades recibidas"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ordenes-compra/{id}/recibir [post]
func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.ReceivePurchaseOrderRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Receive(c.UserContext(), GetUserID(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden de compra
// @Tags         ordenes-compra
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ordenes-compra/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "orden de compra no encontrada")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         ordenes-compra
// @Security     Bearer
// @Produce      json
// @Param        estado        query  string  false  "Estado"
// @Param        proveedor_id  query  int     false  "Proveedor"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.PurchaseOrderListResponse
// @Router       /api/ordenes-compra [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	var (
		f  entity.PurchaseOrderFilter
		ok bool
	)
	if s := c.Query("estado"); s != "" {
		st := entity.PurchaseOrderStatus(s)
		f.Status = &st
	}
	if f.SupplierID, ok = queryInt64(c, "proveedor_id"); !ok {
		return nil
	}
	if f.Limit, f.Offset, ok = pagination(c); !ok {
		return nil
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar PDF de la orden
// @Tags         ordenes-compra
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la orden"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ordenes-compra/{id}/pdf [get]
func (h *PurchaseOrderHandler) DownloadPDF(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	content, filename, err := h.pdf.DownloadPDF(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(content)
}
