package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/testing/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	store   *memstore.Store
	cat     memstore.Catalog
	ledger  *inventory.Ledger
	product entity.Product
}

func newLedgerFixture(t *testing.T, stock int64) *ledgerFixture {
	t.Helper()
	store := memstore.New()
	cat := store.SeedCatalog()
	alt := cat.Caja.ID
	factor := decimal.NewFromInt(12)
	p := store.AddProduct(entity.Product{
		SKU: "LAP-001", Name: "Lapicero azul",
		CurrentStock:  decimal.NewFromInt(stock),
		PrimaryUnitID: cat.Unidad.ID,
		AltUnitID:     &alt, AltUnitFactor: &factor,
		Active: true,
	})
	return &ledgerFixture{store: store, cat: cat, ledger: inventory.NewLedger(store), product: p}
}

func (f *ledgerFixture) typeID(name string) int64 { return f.cat.Types[name].ID }

// ─── Escenario A: entrada en unidad alternativa ──────────────────────────────

func TestLedger_EntradaEnCajas(t *testing.T) {
	f := newLedgerFixture(t, 0)

	res, err := f.ledger.Post(context.Background(), inventory.PostInput{
		ProductID:      f.product.ID,
		MovementTypeID: f.typeID(memstore.TypeEntradaManual),
		Direction:      entity.DirectionIn,
		Quantity:       decimal.NewFromInt(2),
		UnitID:         f.cat.Caja.ID,
		UserID:         7,
	})
	require.NoError(t, err)

	assert.True(t, res.Movement.QuantityPrimary.Equal(decimal.NewFromInt(24)))
	assert.True(t, res.Movement.Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, f.cat.Caja.ID, res.Movement.UnitID)
	assert.True(t, res.Movement.StockBefore.IsZero())
	assert.True(t, res.Movement.StockAfter.Equal(decimal.NewFromInt(24)))
	assert.True(t, f.store.Product(f.product.ID).CurrentStock.Equal(decimal.NewFromInt(24)))
	assert.True(t, res.Product.CurrentStock.Equal(decimal.NewFromInt(24)))
}

// ─── Escenario B: salida mayor al stock ──────────────────────────────────────

func TestLedger_SalidaSinStock(t *testing.T) {
	f := newLedgerFixture(t, 10)

	_, err := f.ledger.Post(context.Background(), inventory.PostInput{
		ProductID:      f.product.ID,
		MovementTypeID: f.typeID(memstore.TypeSalidaManual),
		Direction:      entity.DirectionOut,
		Quantity:       decimal.NewFromInt(15),
		UserID:         7,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "LAP-001")

	assert.True(t, f.store.Product(f.product.ID).CurrentStock.Equal(decimal.NewFromInt(10)))
	assert.Empty(t, f.store.Movements())
}

func TestLedger_SalidaExactaDejaCero(t *testing.T) {
	f := newLedgerFixture(t, 10)

	res, err := f.ledger.Post(context.Background(), inventory.PostInput{
		ProductID:      f.product.ID,
		MovementTypeID: f.typeID(memstore.TypeSalidaManual),
		Direction:      entity.DirectionOut,
		Quantity:       decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.True(t, res.Movement.StockAfter.IsZero())
	assert.True(t, f.store.Product(f.product.ID).CurrentStock.IsZero())
}

func TestLedger_TipoNoCoincideConDireccion(t *testing.T) {
	f := newLedgerFixture(t, 10)

	cases := []struct {
		name string
		typ  string
		dir  entity.Direction
	}{
		{"entrada con tipo de salida", memstore.TypeSalidaManual, entity.DirectionIn},
		{"salida con tipo de entrada", memstore.TypeEntradaManual, entity.DirectionOut},
		{"tipo informativo", memstore.TypeInformativo, entity.DirectionIn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.Post(context.Background(), inventory.PostInput{
				ProductID:      f.product.ID,
				MovementTypeID: f.typeID(tc.typ),
				Direction:      tc.dir,
				Quantity:       decimal.NewFromInt(1),
			})
			assert.ErrorIs(t, err, domain.ErrInvalidMovementType)
		})
	}
	assert.Empty(t, f.store.Movements())
}

func TestLedger_ProductoOTipoInexistente(t *testing.T) {
	f := newLedgerFixture(t, 10)

	_, err := f.ledger.Post(context.Background(), inventory.PostInput{
		ProductID: 9999, MovementTypeID: f.typeID(memstore.TypeEntradaManual),
		Direction: entity.DirectionIn, Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ledger.Post(context.Background(), inventory.PostInput{
		ProductID: f.product.ID, MovementTypeID: 9999,
		Direction: entity.DirectionIn, Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedger_UnidadInvalidaYCantidadCero(t *testing.T) {
	f := newLedgerFixture(t, 10)
	in := inventory.PostInput{
		ProductID:      f.product.ID,
		MovementTypeID: f.typeID(memstore.TypeEntradaManual),
		Direction:      entity.DirectionIn,
		Quantity:       decimal.NewFromInt(1),
		UnitID:         4242,
	}
	_, err := f.ledger.Post(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidUnitForProduct)

	in.UnitID = 0
	in.Quantity = decimal.Zero
	_, err = f.ledger.Post(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// Si la actualización de stock falla después de insertar el movimiento, no queda nada escrito.
func TestLedger_RollbackSiFallaActualizacionDeStock(t *testing.T) {
	f := newLedgerFixture(t, 10)
	boom := errors.New("conexión perdida")
	f.store.FailOn("products.UpdateStock", boom)

	_, err := f.ledger.Post(context.Background(), inventory.PostInput{
		ProductID:      f.product.ID,
		MovementTypeID: f.typeID(memstore.TypeEntradaManual),
		Direction:      entity.DirectionIn,
		Quantity:       decimal.NewFromInt(5),
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, f.store.Movements())
	assert.True(t, f.store.Product(f.product.ID).CurrentStock.Equal(decimal.NewFromInt(10)))
}

// Salidas concurrentes: nunca se pierde una actualización ni el stock queda negativo.
func TestLedger_SalidasConcurrentes(t *testing.T) {
	f := newLedgerFixture(t, 50)
	const workers = 80

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, insufficient := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Post(context.Background(), inventory.PostInput{
				ProductID:      f.product.ID,
				MovementTypeID: f.typeID(memstore.TypeSalidaManual),
				Direction:      entity.DirectionOut,
				Quantity:       decimal.NewFromInt(1),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				insufficient++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, ok)
	assert.Equal(t, workers-50, insufficient)
	assert.True(t, f.store.Product(f.product.ID).CurrentStock.IsZero())

	// cada asiento encadena con el anterior
	movs := f.store.Movements()
	require.Len(t, movs, 50)
	for i, m := range movs {
		assert.True(t, m.StockAfter.Equal(m.StockBefore.Sub(m.QuantityPrimary)))
		if i > 0 {
			assert.True(t, m.StockBefore.Equal(movs[i-1].StockAfter))
		}
	}
}

// ─── RegisterMovementUseCase ─────────────────────────────────────────────────

func TestRegisterMovement_EntradaYKardex(t *testing.T) {
	f := newLedgerFixture(t, 0)
	uc := inventory.NewRegisterMovementUseCase(f.ledger, f.store.Repos())
	ctx := context.Background()

	resp, err := uc.RegisterEntry(ctx, 3, dto.RegisterMovementRequest{
		ProductID:      f.product.ID,
		MovementTypeID: f.typeID(memstore.TypeEntradaManual),
		Quantity:       decimal.NewFromInt(1),
		UnitID:         f.cat.Caja.ID,
		Reference:      "FAC-100",
	})
	require.NoError(t, err)
	assert.True(t, resp.CurrentStock.Equal(decimal.NewFromInt(12)))

	_, err = uc.RegisterExit(ctx, 3, dto.RegisterMovementRequest{
		ProductID:      f.product.ID,
		MovementTypeID: f.typeID(memstore.TypeSalidaManual),
		Quantity:       decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	pid := f.product.ID
	list, err := uc.List(ctx, entity.MovementFilter{ProductID: &pid, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	// más reciente primero
	assert.True(t, list.Items[0].StockAfter.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "FAC-100", list.Items[1].Reference)

	got, err := uc.GetByID(ctx, list.Items[1].ID)
	require.NoError(t, err)
	assert.True(t, got.QuantityPrimary.Equal(decimal.NewFromInt(12)))

	missing, err := uc.GetByID(ctx, 123456)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRegisterMovement_SalidaConTipoDeEntrada(t *testing.T) {
	f := newLedgerFixture(t, 10)
	uc := inventory.NewRegisterMovementUseCase(f.ledger, f.store.Repos())

	_, err := uc.RegisterExit(context.Background(), 3, dto.RegisterMovementRequest{
		ProductID:      f.product.ID,
		MovementTypeID: f.typeID(memstore.TypeEntradaManual),
		Quantity:       decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMovementType)
}

func TestTypeByName(t *testing.T) {
	f := newLedgerFixture(t, 0)
	repos := f.store.Repos()
	ctx := context.Background()

	mt, err := inventory.TypeByName(ctx, repos, memstore.TypeAjusteNegativo, entity.DirectionOut)
	require.NoError(t, err)
	assert.Equal(t, entity.EffectDecrease, mt.StockEffect)

	_, err = inventory.TypeByName(ctx, repos, "No existe", entity.DirectionIn)
	assert.Error(t, err)

	_, err = inventory.TypeByName(ctx, repos, memstore.TypeAjusteNegativo, entity.DirectionIn)
	assert.Error(t, err)
}

func TestReplenishment_OrdenPorUrgencia(t *testing.T) {
	store := memstore.New()
	cat := store.SeedCatalog()
	mk := func(sku string, stock, min, max int64) entity.Product {
		return store.AddProduct(entity.Product{
			SKU: sku, Name: sku, PrimaryUnitID: cat.Unidad.ID, Active: true,
			CurrentStock: decimal.NewFromInt(stock),
			MinStock:     decimal.NewFromInt(min),
			MaxStock:     decimal.NewFromInt(max),
		})
	}
	mk("OK", 50, 10, 100)
	mk("MEDIO", 5, 10, 40)
	mk("CRITICO", 1, 10, 0)

	uc := inventory.NewReplenishmentUseCase(store.Repos().Products)
	list, err := uc.GenerateReplenishmentList(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "CRITICO", list[0].SKU)
	assert.Equal(t, 1, list[0].Priority)
	// sin máximo: objetivo = mínimo × 1.5
	assert.True(t, list[0].TargetStock.Equal(decimal.NewFromInt(15)))
	assert.True(t, list[0].SuggestedOrderQty.Equal(decimal.NewFromInt(14)))

	assert.Equal(t, "MEDIO", list[1].SKU)
	assert.True(t, list[1].SuggestedOrderQty.Equal(decimal.NewFromInt(35)))
}
