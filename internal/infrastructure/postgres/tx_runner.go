package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// NewRepositories construye todos los repositorios sobre q (pool o tx).
func NewRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Products:       NewProductRepository(q),
		Units:          NewUnitRepository(q),
		Suppliers:      NewSupplierRepository(q),
		MovementTypes:  NewMovementTypeRepository(q),
		Movements:      NewMovementRepository(q),
		Reservations:   NewReservationRepository(q),
		Counts:         NewCountRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		Users:          NewUserRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Persistence("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Persistence("commit transaction", err)
	}
	return nil
}
