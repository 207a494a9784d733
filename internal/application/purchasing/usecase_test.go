package purchasing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/purchasing"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/testing/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const compradorID = int64(10)

type fixture struct {
	store    *memstore.Store
	cat      memstore.Catalog
	uc       *purchasing.UseCase
	supplier entity.Supplier
	p1       entity.Product
	p2       entity.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	cat := store.SeedCatalog()
	sup := store.AddSupplier(entity.Supplier{Name: "Distribuidora Central", Active: true})
	p1 := store.AddProduct(entity.Product{SKU: "P-1", Name: "Tóner", Active: true, PrimaryUnitID: cat.Unidad.ID})
	p2 := store.AddProduct(entity.Product{SKU: "P-2", Name: "Papel", Active: true, PrimaryUnitID: cat.Unidad.ID,
		CurrentStock: decimal.NewFromInt(5)})
	uc := purchasing.NewUseCase(store, inventory.NewLedger(store), store.Repos(), memstore.TypeEntradaCompra)
	return &fixture{store: store, cat: cat, uc: uc, supplier: sup, p1: p1, p2: p2}
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func (f *fixture) createSent(t *testing.T, lines ...dto.PurchaseOrderLineRequest) *dto.PurchaseOrderResponse {
	t.Helper()
	ctx := context.Background()
	o, err := f.uc.Create(ctx, compradorID, dto.CreatePurchaseOrderRequest{SupplierID: f.supplier.ID, Lines: lines})
	require.NoError(t, err)
	o, err = f.uc.SetStatus(ctx, o.ID, dto.SetPurchaseOrderStatusRequest{Status: string(entity.PurchaseOrderSent)})
	require.NoError(t, err)
	return o
}

func TestCreate_CalculaTotales(t *testing.T) {
	f := newFixture(t)
	o, err := f.uc.Create(context.Background(), compradorID, dto.CreatePurchaseOrderRequest{
		SupplierID: f.supplier.ID,
		Lines: []dto.PurchaseOrderLineRequest{
			{ProductID: f.p1.ID, RequestedQty: qty(10), UnitCost: decimal.RequireFromString("12.50")},
			{ProductID: f.p2.ID, RequestedQty: qty(3), UnitCost: decimal.RequireFromString("100")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.PurchaseOrderDraft), o.Status)
	assert.Equal(t, compradorID, o.CreatedBy)
	// 125 + 300 = 425; 13 % = 55.25
	assert.Equal(t, "425", o.Subtotal.String())
	assert.Equal(t, "55.25", o.Tax.String())
	assert.Equal(t, "480.25", o.Total.String())
	require.Len(t, o.Details, 2)
	assert.True(t, o.Details[0].PendingQty.Equal(qty(10)))
	assert.Empty(t, f.store.Movements())
}

func TestCreate_Errores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, compradorID, dto.CreatePurchaseOrderRequest{SupplierID: f.supplier.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, compradorID, dto.CreatePurchaseOrderRequest{SupplierID: 999,
		Lines: []dto.PurchaseOrderLineRequest{{ProductID: f.p1.ID, RequestedQty: qty(1)}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Create(ctx, compradorID, dto.CreatePurchaseOrderRequest{SupplierID: f.supplier.ID,
		Lines: []dto.PurchaseOrderLineRequest{{ProductID: f.p1.ID, RequestedQty: qty(0)}}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.uc.Create(ctx, compradorID, dto.CreatePurchaseOrderRequest{SupplierID: f.supplier.ID,
		Lines: []dto.PurchaseOrderLineRequest{{ProductID: 888, RequestedQty: qty(1)}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Create(ctx, compradorID, dto.CreatePurchaseOrderRequest{SupplierID: f.supplier.ID,
		Lines: []dto.PurchaseOrderLineRequest{{ProductID: f.p1.ID, RequestedQty: decimal.RequireFromString("1.00005"), UnitCost: qty(1)}}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// ─── Escenario E ─────────────────────────────────────────────────────────────

func TestRecepcionParcialYCompleta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createSent(t, dto.PurchaseOrderLineRequest{ProductID: f.p1.ID, RequestedQty: qty(100), UnitCost: qty(2)})
	detailID := o.Details[0].ID

	o, err := f.uc.Receive(ctx, compradorID, o.ID, dto.ReceivePurchaseOrderRequest{
		Receipts: []dto.ReceiptLineRequest{{DetailID: detailID, ReceivedQty: qty(40)}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseOrderPartiallyReceived), o.Status)
	assert.True(t, o.Details[0].ReceivedQty.Equal(qty(40)))

	o, err = f.uc.Receive(ctx, compradorID, o.ID, dto.ReceivePurchaseOrderRequest{
		Receipts: []dto.ReceiptLineRequest{{DetailID: detailID, ReceivedQty: qty(60)}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseOrderFullyReceived), o.Status)
	assert.True(t, o.Details[0].ReceivedQty.Equal(qty(100)))

	_, err = f.uc.Receive(ctx, compradorID, o.ID, dto.ReceivePurchaseOrderRequest{
		Receipts: []dto.ReceiptLineRequest{{DetailID: detailID, ReceivedQty: qty(1)}},
	})
	require.ErrorIs(t, err, domain.ErrReceivingExceedsPending)
	assert.Contains(t, err.Error(), "P-1")

	assert.True(t, f.store.Product(f.p1.ID).CurrentStock.Equal(qty(100)))
	movs := f.store.Movements()
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, f.cat.Types[memstore.TypeEntradaCompra].ID, m.MovementTypeID)
		assert.Equal(t, fmt.Sprintf("OC-%d", o.ID), m.Reference)
	}
}

func TestReceive_ExcedeNoEscribeNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createSent(t,
		dto.PurchaseOrderLineRequest{ProductID: f.p1.ID, RequestedQty: qty(10), UnitCost: qty(1)},
		dto.PurchaseOrderLineRequest{ProductID: f.p2.ID, RequestedQty: qty(5), UnitCost: qty(1)},
	)

	_, err := f.uc.Receive(ctx, compradorID, o.ID, dto.ReceivePurchaseOrderRequest{
		Receipts: []dto.ReceiptLineRequest{
			{DetailID: o.Details[0].ID, ReceivedQty: qty(10)},
			{DetailID: o.Details[1].ID, ReceivedQty: qty(6)},
		},
	})
	require.ErrorIs(t, err, domain.ErrReceivingExceedsPending)
	assert.Contains(t, err.Error(), "pendiente 5")
	assert.Empty(t, f.store.Movements())

	got, err := f.uc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseOrderSent), got.Status)
}

func TestReceive_IgnoraCantidadesNoPositivas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createSent(t,
		dto.PurchaseOrderLineRequest{ProductID: f.p1.ID, RequestedQty: qty(10), UnitCost: qty(1)},
		dto.PurchaseOrderLineRequest{ProductID: f.p2.ID, RequestedQty: qty(5), UnitCost: qty(1)},
	)

	// nada positivo: sin cambios
	got, err := f.uc.Receive(ctx, compradorID, o.ID, dto.ReceivePurchaseOrderRequest{
		Receipts: []dto.ReceiptLineRequest{{DetailID: o.Details[0].ID, ReceivedQty: qty(0)}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseOrderSent), got.Status)

	got, err = f.uc.Receive(ctx, compradorID, o.ID, dto.ReceivePurchaseOrderRequest{
		Receipts: []dto.ReceiptLineRequest{
			{DetailID: o.Details[0].ID, ReceivedQty: qty(-3)},
			{DetailID: o.Details[1].ID, ReceivedQty: qty(5)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseOrderPartiallyReceived), got.Status)
	assert.True(t, got.Details[0].ReceivedQty.IsZero())
	assert.True(t, got.Details[1].ReceivedQty.Equal(qty(5)))
	assert.True(t, f.store.Product(f.p2.ID).CurrentStock.Equal(qty(10)))
	assert.Len(t, f.store.Movements(), 1)
}

func TestReceive_EstadosNoPermitidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, err := f.uc.Create(ctx, compradorID, dto.CreatePurchaseOrderRequest{SupplierID: f.supplier.ID,
		Lines: []dto.PurchaseOrderLineRequest{{ProductID: f.p1.ID, RequestedQty: qty(10), UnitCost: qty(1)}}})
	require.NoError(t, err)

	// Borrador
	_, err = f.uc.Receive(ctx, compradorID, o.ID, dto.ReceivePurchaseOrderRequest{
		Receipts: []dto.ReceiptLineRequest{{DetailID: o.Details[0].ID, ReceivedQty: qty(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.uc.SetStatus(ctx, o.ID, dto.SetPurchaseOrderStatusRequest{Status: string(entity.PurchaseOrderCancelled)})
	require.NoError(t, err)
	_, err = f.uc.Receive(ctx, compradorID, o.ID, dto.ReceivePurchaseOrderRequest{
		Receipts: []dto.ReceiptLineRequest{{DetailID: o.Details[0].ID, ReceivedQty: qty(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.uc.Receive(ctx, compradorID, o.ID, dto.ReceivePurchaseOrderRequest{
		Receipts: []dto.ReceiptLineRequest{{DetailID: 5555, ReceivedQty: qty(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.store.Movements())
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createSent(t, dto.PurchaseOrderLineRequest{ProductID: f.p1.ID, RequestedQty: qty(1), UnitCost: qty(1)})

	// sin reglas entre estados no terminales
	got, err := f.uc.SetStatus(ctx, o.ID, dto.SetPurchaseOrderStatusRequest{Status: string(entity.PurchaseOrderDraft)})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseOrderDraft), got.Status)

	_, err = f.uc.SetStatus(ctx, o.ID, dto.SetPurchaseOrderStatusRequest{Status: "Extraviada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.SetStatus(ctx, o.ID, dto.SetPurchaseOrderStatusRequest{Status: string(entity.PurchaseOrderCancelled)})
	require.NoError(t, err)
	_, err = f.uc.SetStatus(ctx, o.ID, dto.SetPurchaseOrderStatusRequest{Status: string(entity.PurchaseOrderSent)})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.uc.SetStatus(ctx, 31337, dto.SetPurchaseOrderStatusRequest{Status: string(entity.PurchaseOrderSent)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetStatus_RecibidaCompletaSoloPorRecepcion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createSent(t, dto.PurchaseOrderLineRequest{ProductID: f.p1.ID, RequestedQty: qty(100), UnitCost: qty(1)})

	_, err := f.uc.SetStatus(ctx, o.ID, dto.SetPurchaseOrderStatusRequest{Status: string(entity.PurchaseOrderFullyReceived)})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	got, err := f.uc.Receive(ctx, compradorID, o.ID, dto.ReceivePurchaseOrderRequest{
		Receipts: []dto.ReceiptLineRequest{{DetailID: o.Details[0].ID, ReceivedQty: qty(100)}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseOrderFullyReceived), got.Status)
	assert.Len(t, f.store.Movements(), 1)
}

func TestReceive_FalloEnSegundaLineaRevierteTodo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createSent(t,
		dto.PurchaseOrderLineRequest{ProductID: f.p1.ID, RequestedQty: qty(10), UnitCost: qty(1)},
		dto.PurchaseOrderLineRequest{ProductID: f.p2.ID, RequestedQty: qty(5), UnitCost: qty(1)},
	)
	boom := errors.New("conexión perdida")
	f.store.FailAfter("products.UpdateStock", 1, boom)

	_, err := f.uc.Receive(ctx, compradorID, o.ID, dto.ReceivePurchaseOrderRequest{
		Receipts: []dto.ReceiptLineRequest{
			{DetailID: o.Details[0].ID, ReceivedQty: qty(10)},
			{DetailID: o.Details[1].ID, ReceivedQty: qty(5)},
		},
	})
	require.ErrorIs(t, err, boom)

	assert.Empty(t, f.store.Movements())
	assert.True(t, f.store.Product(f.p1.ID).CurrentStock.IsZero())
	assert.True(t, f.store.Product(f.p2.ID).CurrentStock.Equal(qty(5)))
	got, err := f.uc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseOrderSent), got.Status)
	for _, d := range got.Details {
		assert.True(t, d.ReceivedQty.IsZero())
	}
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createSent(t, dto.PurchaseOrderLineRequest{ProductID: f.p1.ID, RequestedQty: qty(1), UnitCost: qty(1)})
	_, err := f.uc.Create(ctx, compradorID, dto.CreatePurchaseOrderRequest{SupplierID: f.supplier.ID,
		Lines: []dto.PurchaseOrderLineRequest{{ProductID: f.p1.ID, RequestedQty: qty(1), UnitCost: qty(1)}}})
	require.NoError(t, err)

	sent := entity.PurchaseOrderSent
	list, err := f.uc.List(ctx, entity.PurchaseOrderFilter{Status: &sent})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	sup := f.supplier.ID
	list, err = f.uc.List(ctx, entity.PurchaseOrderFilter{SupplierID: &sup, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page.Limit)
}
