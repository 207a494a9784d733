package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/infrastructure/cache"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// HeaderIdempotencyKey cabecera con la clave de idempotencia enviada por el cliente.
const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyStore puerto del almacén de claves (Redis en producción).
type IdempotencyStore interface {
	CheckAndInsert(ctx context.Context, key, scope string) error
	Delete(ctx context.Context, key, scope string) error
}

// IdempotencyMiddleware rechaza con 409 un POST cuya Idempotency-Key ya fue aceptada.
// Si la petición falla (status >= 400) la clave se libera para permitir el reintento.
// Si Redis no responde se deja pasar la petición.
func IdempotencyMiddleware(store IdempotencyStore) fiber.Handler {
	log := logger.Component("idempotency")
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if c.Method() != fiber.MethodPost || key == "" {
			return c.Next()
		}
		scope := c.Method() + " " + c.Path()
		ctx := c.UserContext()

		if err := store.CheckAndInsert(ctx, key, scope); err != nil {
			if errors.Is(err, cache.ErrIdempotencyConflict) {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
					Code:    "IDEMPOTENCY_CONFLICT",
					Message: "ya se procesó una solicitud con esta Idempotency-Key",
				})
			}
			log.Warn().Err(err).Str("scope", scope).Msg("almacén de idempotencia no disponible")
			return c.Next()
		}

		err := c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if derr := store.Delete(ctx, key, scope); derr != nil {
				log.Warn().Err(derr).Str("scope", scope).Msg("liberar clave de idempotencia")
			}
		}
		return err
	}
}
