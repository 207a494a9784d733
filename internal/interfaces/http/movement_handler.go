package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovementHandler entradas/salidas directas, kardex y tipos de movimiento.
type MovementHandler struct {
	uc *inventory.RegisterMovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.RegisterMovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// RegisterEntry godoc
// @Summary      Registrar entrada de inventario
// @Description  El tipo de movimiento debe tener efecto positivo. La cantidad se convierte a la unidad primaria del producto.
// @Tags         movimientos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.RegisterMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movimientos/entrada [post]
func (h *MovementHandler) RegisterEntry(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.RegisterEntry(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RegisterExit godoc
// @Summary      Registrar salida de inventario
// @Tags         movimientos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.RegisterMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "Stock insuficiente"
// @Router       /api/movimientos/salida [post]
func (h *MovementHandler) RegisterExit(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.RegisterExit(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Kardex de movimientos
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Param        producto_id  query  int     false  "Producto"
// @Param        tipo_id      query  int     false  "Tipo de movimiento"
// @Param        desde        query  string  false  "Fecha inicial (AAAA-MM-DD)"
// @Param        hasta        query  string  false  "Fecha final (AAAA-MM-DD)"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movimientos [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var (
		f  entity.MovementFilter
		ok bool
	)
	if f.ProductID, ok = queryInt64(c, "producto_id"); !ok {
		return nil
	}
	if f.MovementTypeID, ok = queryInt64(c, "tipo_id"); !ok {
		return nil
	}
	if f.From, ok = queryTime(c, "desde", false); !ok {
		return nil
	}
	if f.To, ok = queryTime(c, "hasta", true); !ok {
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

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movimientos/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "movimiento no encontrado")
	}
	return c.JSON(out)
}

// ListTypes godoc
// @Summary      Tipos de movimiento
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MovementTypeResponse
// @Router       /api/tipos-movimiento [get]
func (h *MovementHandler) ListTypes(c *fiber.Ctx) error {
	out, err := h.uc.ListTypes(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
