package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
)

// pathID lee el parámetro :id como entero positivo. Si no es válido responde 400 y ok=false.
func pathID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
		return 0, false
	}
	return id, true
}

// pagination lee limit/offset de la query (dto.PageRequest). Si no son válidos responde 400 y ok=false.
func pagination(c *fiber.Ctx) (limit, offset int, ok bool) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		_ = badRequest(c, "INVALID_QUERY", "limit y offset deben ser numéricos")
		return 0, 0, false
	}
	page.DefaultPage()
	if err := validate.Struct(&page); err != nil {
		_ = badRequest(c, "VALIDATION", validationMessage(err))
		return 0, 0, false
	}
	return page.Limit, page.Offset, true
}

// queryInt64 lee un filtro numérico opcional. nil si no viene.
func queryInt64(c *fiber.Ctx, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		_ = badRequest(c, "INVALID_QUERY", name+" debe ser numérico")
		return nil, false
	}
	return &v, true
}

// queryTime acepta RFC 3339 o fecha simple (2006-01-02). Con endOfDay la fecha simple cubre el día completo.
func queryTime(c *fiber.Ctx, name string, endOfDay bool) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		_ = badRequest(c, "INVALID_QUERY", name+" debe tener formato AAAA-MM-DD o RFC 3339")
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}
