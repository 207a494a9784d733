package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/counting"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// CountHandler conteos físicos de inventario.
type CountHandler struct {
	uc *counting.UseCase
}

// NewCountHandler construye el handler.
func NewCountHandler(uc *counting.UseCase) *CountHandler {
	return &CountHandler{uc: uc}
}

// Start godoc
// @Summary      Iniciar conteo físico
// @Tags         conteos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StartCountRequest  false  "Motivo y filtros"
// @Success      201   {object}  dto.CountResponse
// @Router       /api/conteos [post]
func (h *CountHandler) Start(c *fiber.Ctx) error {
	var in dto.StartCountRequest
	if len(c.Body()) > 0 && !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Start(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AddDetail godoc
// @Summary      Registrar cantidad contada
// @Description  Crea o reemplaza la línea del producto. Acepta cantidad en unidad primaria o alternativa.
// @Tags         conteos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del conteo"
// @Param        body  body  dto.CountDetailRequest  true  "Cantidad contada"
// @Success      200   {object}  dto.CountDetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/conteos/{id}/detalles [post]
func (h *CountHandler) AddDetail(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.CountDetailRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.AddOrUpdateDetail(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Finalize godoc
// @Summary      Finalizar conteo
// @Tags         conteos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del conteo"
// @Param        body  body  dto.FinalizeCountRequest  false  "Notas"
// @Success      200   {object}  dto.CountResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/conteos/{id}/finalizar [post]
func (h *CountHandler) Finalize(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.FinalizeCountRequest
	if len(c.Body()) > 0 && !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Finalize(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ApplyAdjustments godoc
// @Summary      Aplicar ajustes del conteo
// @Description  Genera un movimiento de ajuste por cada diferencia pendiente. Todo o nada.
// @Tags         conteos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del conteo"
// @Success      200  {object}  dto.ApplyAdjustmentsResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/conteos/{id}/aplicar-ajustes [post]
func (h *CountHandler) ApplyAdjustments(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	out, err := h.uc.ApplyAdjustments(c.UserContext(), GetUserID(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar conteo
// @Tags         conteos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del conteo"
// @Success      200  {object}  dto.CountResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/conteos/{id}/cancelar [post]
func (h *CountHandler) Cancel(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Cancel(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener conteo
// @Tags         conteos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del conteo"
// @Success      200  {object}  dto.CountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/conteos/{id} [get]
func (h *CountHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "conteo no encontrado")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar conteos
// @Tags         conteos
// @Security     Bearer
// @Produce      json
// @Param        estado  query  string  false  "Estado"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.CountListResponse
// @Router       /api/conteos [get]
func (h *CountHandler) List(c *fiber.Ctx) error {
	var f entity.CountFilter
	if s := c.Query("estado"); s != "" {
		st := entity.CountStatus(s)
		f.Status = &st
	}
	var ok bool
	if f.Limit, f.Offset, ok = pagination(c); !ok {
		return nil
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
