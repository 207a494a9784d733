package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/almacen-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen del almacén.
// GET /api/dashboard/resumen
//
// Respuesta: DashboardSummaryDTO (total_productos, productos_bajo_minimo, reservas_pendientes,
// conteos_abiertos, ordenes_abiertas, movimientos_hoy, bajo_minimo[5], fecha).
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
