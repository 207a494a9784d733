package counting_test

import (
	"context"
	"testing"

	"github.com/jhoicas/almacen-api/internal/application/counting"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/testing/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const responsableID = int64(50)

type fixture struct {
	store  *memstore.Store
	cat    memstore.Catalog
	ledger *inventory.Ledger
	uc     *counting.UseCase
	a      entity.Product // stock 50, caja = 10
	b      entity.Product // stock 8
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	cat := store.SeedCatalog()
	caja := cat.Caja.ID
	ten := decimal.NewFromInt(10)
	a := store.AddProduct(entity.Product{
		SKU: "A-1", Name: "Resma carta", Active: true,
		CurrentStock:  decimal.NewFromInt(50),
		PrimaryUnitID: cat.Unidad.ID, AltUnitID: &caja, AltUnitFactor: &ten,
	})
	b := store.AddProduct(entity.Product{
		SKU: "B-1", Name: "Grapadora", Active: true,
		CurrentStock:  decimal.NewFromInt(8),
		PrimaryUnitID: cat.Unidad.ID,
	})
	ledger := inventory.NewLedger(store)
	uc := counting.NewUseCase(store, ledger, store.Repos(), counting.AdjustmentTypes{
		Positive: memstore.TypeAjustePositivo,
		Negative: memstore.TypeAjusteNegativo,
	})
	return &fixture{store: store, cat: cat, ledger: ledger, uc: uc, a: a, b: b}
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func (f *fixture) start(t *testing.T) *dto.CountResponse {
	t.Helper()
	c, err := f.uc.Start(context.Background(), responsableID, dto.StartCountRequest{Motive: "Cierre de mes", Notes: "bodega central"})
	require.NoError(t, err)
	return c
}

func (f *fixture) record(t *testing.T, countID, productID int64, counted int64) *dto.CountDetailResponse {
	t.Helper()
	d, err := f.uc.AddOrUpdateDetail(context.Background(), countID, dto.CountDetailRequest{
		ProductID: productID, CountedQty: ptr(qty(counted)),
	})
	require.NoError(t, err)
	return d
}

// ─── Escenario D ─────────────────────────────────────────────────────────────

func TestAjusteNegativo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.start(t)
	assert.Equal(t, string(entity.CountStarted), c.Status)

	d := f.record(t, c.ID, f.a.ID, 47)
	assert.True(t, d.TheoreticalStock.Equal(qty(50)))
	assert.True(t, d.Variance.Equal(qty(-3)))

	_, err := f.uc.Finalize(ctx, c.ID, dto.FinalizeCountRequest{})
	require.NoError(t, err)

	out, err := f.uc.ApplyAdjustments(ctx, responsableID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.CountAdjustmentsApplied), out.Count.Status)
	require.Len(t, out.Movements, 1)

	mov := out.Movements[0]
	assert.Equal(t, f.cat.Types[memstore.TypeAjusteNegativo].ID, mov.MovementTypeID)
	assert.True(t, mov.QuantityPrimary.Equal(qty(3)))
	assert.True(t, mov.StockAfter.Equal(qty(47)))
	require.NotNil(t, mov.CountDetailID)
	assert.Equal(t, d.ID, *mov.CountDetailID)
	assert.True(t, f.store.Product(f.a.ID).CurrentStock.Equal(qty(47)))

	got, err := f.uc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Details, 1)
	assert.True(t, got.Details[0].AdjustmentApplied)
	require.NotNil(t, got.Details[0].MovementID)
	assert.Equal(t, mov.ID, *got.Details[0].MovementID)
}

func TestAjustePositivoYSinDiferencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.start(t)
	f.record(t, c.ID, f.a.ID, 50) // sin diferencia
	f.record(t, c.ID, f.b.ID, 11) // +3
	_, err := f.uc.Finalize(ctx, c.ID, dto.FinalizeCountRequest{})
	require.NoError(t, err)

	out, err := f.uc.ApplyAdjustments(ctx, responsableID, c.ID)
	require.NoError(t, err)
	require.Len(t, out.Movements, 1)
	assert.Equal(t, f.b.ID, out.Movements[0].ProductID)
	assert.Equal(t, f.cat.Types[memstore.TypeAjustePositivo].ID, out.Movements[0].MovementTypeID)
	assert.True(t, f.store.Product(f.b.ID).CurrentStock.Equal(qty(11)))
	assert.True(t, f.store.Product(f.a.ID).CurrentStock.Equal(qty(50)))

	for _, d := range out.Count.Details {
		assert.Equal(t, !d.Variance.IsZero(), d.AdjustmentApplied)
	}
}

// Un segundo llamado falla y no genera movimientos ni cambia stock.
func TestApplyAdjustments_SegundaVezNoAfectaStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.start(t)
	f.record(t, c.ID, f.a.ID, 45)
	_, err := f.uc.Finalize(ctx, c.ID, dto.FinalizeCountRequest{})
	require.NoError(t, err)
	_, err = f.uc.ApplyAdjustments(ctx, responsableID, c.ID)
	require.NoError(t, err)

	before := len(f.store.Movements())
	_, err = f.uc.ApplyAdjustments(ctx, responsableID, c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Len(t, f.store.Movements(), before)
	assert.True(t, f.store.Product(f.a.ID).CurrentStock.Equal(qty(45)))
}

func TestUpsert_UnaLineaPorProductoConTeoricoActual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.start(t)
	first := f.record(t, c.ID, f.a.ID, 40)

	// el stock cambia durante el conteo
	_, err := f.ledger.Post(ctx, inventory.PostInput{
		ProductID:      f.a.ID,
		MovementTypeID: f.cat.Types[memstore.TypeSalidaManual].ID,
		Direction:      entity.DirectionOut,
		Quantity:       qty(5),
	})
	require.NoError(t, err)

	// segundo registro en cajas: 4 cajas = 40
	second, err := f.uc.AddOrUpdateDetail(ctx, c.ID, dto.CountDetailRequest{
		ProductID: f.a.ID, UnitID: f.cat.Caja.ID, AltQuantity: ptr(qty(4)),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.TheoreticalStock.Equal(qty(45)))
	assert.True(t, second.CountedStock.Equal(qty(40)))
	assert.True(t, second.Variance.Equal(qty(-5)))

	got, err := f.uc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got.Details, 1)
	assert.Equal(t, string(entity.CountInProgress), got.Status)
}

func TestAddDetail_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.start(t)

	cases := []struct {
		name string
		in   dto.CountDetailRequest
		want error
	}{
		{"sin cantidad", dto.CountDetailRequest{ProductID: f.a.ID}, domain.ErrInvalidInput},
		{"ambas cantidades", dto.CountDetailRequest{ProductID: f.a.ID, CountedQty: ptr(qty(1)), UnitID: f.cat.Caja.ID, AltQuantity: ptr(qty(1))}, domain.ErrInvalidInput},
		{"alternativa sin unidad", dto.CountDetailRequest{ProductID: f.a.ID, AltQuantity: ptr(qty(1))}, domain.ErrInvalidInput},
		{"negativa", dto.CountDetailRequest{ProductID: f.a.ID, CountedQty: ptr(qty(-1))}, domain.ErrInvalidQuantity},
		{"unidad ajena", dto.CountDetailRequest{ProductID: f.b.ID, UnitID: f.cat.Caja.ID, AltQuantity: ptr(qty(1))}, domain.ErrInvalidUnitForProduct},
		{"producto inexistente", dto.CountDetailRequest{ProductID: 777, CountedQty: ptr(qty(1))}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.AddOrUpdateDetail(ctx, c.ID, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// cero contado es válido
	d := f.record(t, c.ID, f.b.ID, 0)
	assert.True(t, d.Variance.Equal(qty(-8)))
}

func TestTransiciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.start(t)

	// no se aplican ajustes antes de finalizar
	_, err := f.uc.ApplyAdjustments(ctx, responsableID, c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	// finalizar desde Iniciado es válido; las notas se agregan
	out, err := f.uc.Finalize(ctx, c.ID, dto.FinalizeCountRequest{Notes: "sin novedades"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.CountRecorded), out.Status)
	assert.NotNil(t, out.FinishedAt)
	assert.Equal(t, "bodega central\nsin novedades", out.Notes)

	_, err = f.uc.Finalize(ctx, c.ID, dto.FinalizeCountRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.uc.AddOrUpdateDetail(ctx, c.ID, dto.CountDetailRequest{ProductID: f.a.ID, CountedQty: ptr(qty(1))})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.uc.Cancel(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	other := f.start(t)
	cancelled, err := f.uc.Cancel(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.CountCancelled), cancelled.Status)

	_, err = f.uc.Finalize(ctx, 9999, dto.FinalizeCountRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Si un ajuste negativo ya no tiene stock, no se aplica ninguno.
func TestApplyAdjustments_RollbackCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.start(t)
	f.record(t, c.ID, f.a.ID, 55) // +5
	f.record(t, c.ID, f.b.ID, 2)  // -6
	_, err := f.uc.Finalize(ctx, c.ID, dto.FinalizeCountRequest{})
	require.NoError(t, err)

	// B queda en 1 antes de aplicar
	_, err = f.ledger.Post(ctx, inventory.PostInput{
		ProductID:      f.b.ID,
		MovementTypeID: f.cat.Types[memstore.TypeSalidaManual].ID,
		Direction:      entity.DirectionOut,
		Quantity:       qty(7),
	})
	require.NoError(t, err)
	movs := len(f.store.Movements())

	_, err = f.uc.ApplyAdjustments(ctx, responsableID, c.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Len(t, f.store.Movements(), movs)
	assert.True(t, f.store.Product(f.a.ID).CurrentStock.Equal(qty(50)))
	got, err := f.uc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.CountRecorded), got.Status)
	for _, d := range got.Details {
		assert.False(t, d.AdjustmentApplied)
	}
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t)
	c2 := f.start(t)
	_, err := f.uc.Cancel(ctx, c2.ID)
	require.NoError(t, err)

	st := entity.CountStarted
	list, err := f.uc.List(ctx, entity.CountFilter{Status: &st})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	all, err := f.uc.List(ctx, entity.CountFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, c2.ID, all.Items[0].ID)
}
