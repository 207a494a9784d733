package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrIdempotencyConflict la clave ya fue aceptada antes.
var ErrIdempotencyConflict = errors.New("solicitud idempotente ya procesada")

const keyPrefix = "almacen:idem:"

// IdempotencyStore registra claves Idempotency-Key en Redis con expiración.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store. ttl es la retención de cada clave.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// CheckAndInsert reserva la clave para scope (método + ruta). ErrIdempotencyConflict si ya existe.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, key, scope string) error {
	if key == "" {
		return errors.New("idempotency key requerida")
	}
	ok, err := s.client.SetNX(ctx, redisKey(key, scope), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("idempotency: setnx: %w", err)
	}
	if !ok {
		return ErrIdempotencyConflict
	}
	return nil
}

// Delete libera la clave; se usa cuando el procesamiento falla para permitir reintentos.
func (s *IdempotencyStore) Delete(ctx context.Context, key, scope string) error {
	if key == "" {
		return nil
	}
	if err := s.client.Del(ctx, redisKey(key, scope)).Err(); err != nil {
		return fmt.Errorf("idempotency: del: %w", err)
	}
	return nil
}

// Ping verifica la conexión (health check).
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func redisKey(key, scope string) string {
	return keyPrefix + scope + ":" + key
}
