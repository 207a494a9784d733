package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/reservation"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ReservationHandler solicitudes de reserva: el vendedor crea, bodega aprueba, rechaza y entrega.
type ReservationHandler struct {
	uc *reservation.UseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *reservation.UseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

// Create godoc
// @Summary      Crear solicitud de reserva
// @Tags         reservas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "Líneas solicitadas"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reservas [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Approve godoc
// @Summary      Aprobar reserva
// @Description  Se debe indicar la cantidad aprobada de cada línea. Si todas son cero la reserva queda Rechazada.
// @Tags         reservas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la reserva"
// @Param        body  body  dto.ApproveReservationRequest  true  "Cantidades aprobadas"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservas/{id}/aprobar [post]
func (h *ReservationHandler) Approve(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.ApproveReservationRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Approve(c.UserContext(), GetUserID(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar reserva
// @Tags         reservas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la reserva"
// @Param        body  body  dto.RejectReservationRequest  true  "Motivo"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservas/{id}/rechazar [post]
func (h *ReservationHandler) Reject(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.RejectReservationRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Reject(c.UserContext(), GetUserID(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deliver godoc
// @Summary      Entregar reserva
// @Description  Registra una salida por cada línea con saldo aprobado pendiente, en una sola transacción.
// @Tags         reservas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la reserva"
// @Param        body  body  dto.DeliverReservationRequest  false  "Notas"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservas/{id}/entregar [post]
func (h *ReservationHandler) Deliver(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.DeliverReservationRequest
	if len(c.Body()) > 0 && !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Deliver(c.UserContext(), GetUserID(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar reserva
// @Description  Un vendedor solo puede cancelar sus propias reservas; las ajenas responden 404.
// @Tags         reservas
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservas/{id}/cancelar [post]
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	onlyOwner := GetRole(c) == entity.RoleVendedor
	out, err := h.uc.Cancel(c.UserContext(), GetUserID(c), id, onlyOwner)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener reserva
// @Tags         reservas
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservas/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil || !h.visible(c, out.SellerID) {
		return notFound(c, "reserva no encontrada")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar reservas
// @Description  Los vendedores solo ven sus propias reservas.
// @Tags         reservas
// @Security     Bearer
// @Produce      json
// @Param        estado       query  string  false  "Estado"
// @Param        vendedor_id  query  int     false  "Vendedor"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ReservationListResponse
// @Router       /api/reservas [get]
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	var (
		f  entity.ReservationFilter
		ok bool
	)
	if s := c.Query("estado"); s != "" {
		st := entity.ReservationStatus(s)
		f.Status = &st
	}
	if f.SellerID, ok = queryInt64(c, "vendedor_id"); !ok {
		return nil
	}
	if GetRole(c) == entity.RoleVendedor {
		self := GetUserID(c)
		f.SellerID = &self
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

func (h *ReservationHandler) visible(c *fiber.Ctx, sellerID int64) bool {
	return GetRole(c) != entity.RoleVendedor || GetUserID(c) == sellerID
}
