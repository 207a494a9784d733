package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

type errorMapping struct {
	kind   error
	status int
	code   string
}

// Orden de evaluación: el primer kind que coincida gana.
var errorMappings = []errorMapping{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidUnitForProduct, fiber.StatusBadRequest, "INVALID_UNIT"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrInvalidMovementType, fiber.StatusBadRequest, "INVALID_MOVEMENT_TYPE"},
	{domain.ErrApprovalExceedsRequest, fiber.StatusBadRequest, "APPROVAL_EXCEEDS_REQUEST"},
	{domain.ErrReceivingExceedsPending, fiber.StatusBadRequest, "RECEIVING_EXCEEDS_PENDING"},
	{domain.ErrInvalidStateTransition, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
}

// writeError traduce un error de dominio a status + dto.ErrorResponse.
// Los errores no clasificados (o de persistencia) se registran y se responden con un mensaje genérico.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: domain.Message(err)})
		}
	}
	log := logger.Component("http")
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("request_id", GetRequestID(c)).
		Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: msg})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// ErrorHandler para fiber.Config: errores que escapan de los handlers (404 de ruta, panics recuperados).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return writeError(c, err)
}
