package reservation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/reservation"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/testing/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vendedorID  = int64(100)
	bodegueroID = int64(200)
)

type fixture struct {
	store *memstore.Store
	cat   memstore.Catalog
	uc    *reservation.UseCase
	x     entity.Product // stock 20, caja = 6
	y     entity.Product // stock 4
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	cat := store.SeedCatalog()
	caja := cat.Caja.ID
	six := decimal.NewFromInt(6)
	x := store.AddProduct(entity.Product{
		SKU: "X-1", Name: "Cuaderno", Active: true,
		CurrentStock:  decimal.NewFromInt(20),
		PrimaryUnitID: cat.Unidad.ID, AltUnitID: &caja, AltUnitFactor: &six,
	})
	y := store.AddProduct(entity.Product{
		SKU: "Y-1", Name: "Borrador", Active: true,
		CurrentStock:  decimal.NewFromInt(4),
		PrimaryUnitID: cat.Unidad.ID,
	})
	ledger := inventory.NewLedger(store)
	uc := reservation.NewUseCase(store, ledger, store.Repos(), memstore.TypeSalidaReserva)
	return &fixture{store: store, cat: cat, uc: uc, x: x, y: y}
}

func (f *fixture) create(t *testing.T, lines ...dto.ReservationLineRequest) *dto.ReservationResponse {
	t.Helper()
	res, err := f.uc.Create(context.Background(), vendedorID, dto.CreateReservationRequest{
		Purpose: "Feria escolar",
		Lines:   lines,
	})
	require.NoError(t, err)
	return res
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ─── Create ──────────────────────────────────────────────────────────────────

func TestCreate_ConvierteYGuardaSnapshot(t *testing.T) {
	f := newFixture(t)
	res := f.create(t,
		dto.ReservationLineRequest{ProductID: f.x.ID, Quantity: qty(2), UnitID: f.cat.Caja.ID},
		dto.ReservationLineRequest{ProductID: f.y.ID, Quantity: qty(1)},
	)

	assert.Equal(t, string(entity.ReservationPending), res.Status)
	assert.Equal(t, vendedorID, res.SellerID)
	require.Len(t, res.Details, 2)
	assert.True(t, res.Details[0].RequestedPrimary.Equal(qty(12)))
	assert.True(t, res.Details[0].StockAtRequest.Equal(qty(20)))
	assert.Equal(t, f.cat.Unidad.ID, res.Details[1].UnitID)
	assert.Nil(t, res.Details[0].ApprovedPrimary)

	// sin efecto en el stock
	assert.Empty(t, f.store.Movements())
	assert.True(t, f.store.Product(f.x.ID).CurrentStock.Equal(qty(20)))
}

func TestCreate_Errores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, vendedorID, dto.CreateReservationRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, vendedorID, dto.CreateReservationRequest{Lines: []dto.ReservationLineRequest{
		{ProductID: 999, Quantity: qty(1)},
	}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Create(ctx, vendedorID, dto.CreateReservationRequest{Lines: []dto.ReservationLineRequest{
		{ProductID: f.y.ID, Quantity: qty(1), UnitID: f.cat.Caja.ID},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidUnitForProduct)

	// la segunda línea falla: no se guarda la primera
	_, err = f.uc.Create(ctx, vendedorID, dto.CreateReservationRequest{Lines: []dto.ReservationLineRequest{
		{ProductID: f.x.ID, Quantity: qty(1)},
		{ProductID: f.y.ID, Quantity: qty(0)},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	list, err := f.uc.List(ctx, entity.ReservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

// ─── Escenario C: aprobación parcial y entrega ───────────────────────────────

func TestAprobacionParcialYEntrega(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.create(t, dto.ReservationLineRequest{ProductID: f.x.ID, Quantity: qty(5)})
	detailID := res.Details[0].ID

	approved, err := f.uc.Approve(ctx, bodegueroID, res.ID, dto.ApproveReservationRequest{
		Approvals: []dto.ApprovalLineRequest{{DetailID: detailID, ApprovedQty: qty(3)}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationPartiallyApproved), approved.Status)
	require.NotNil(t, approved.ProcessorID)
	assert.Equal(t, bodegueroID, *approved.ProcessorID)
	assert.NotNil(t, approved.ProcessedAt)

	delivered, err := f.uc.Deliver(ctx, bodegueroID, res.ID, dto.DeliverReservationRequest{Notes: "retira Ana"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationDelivered), delivered.Status)
	assert.NotNil(t, delivered.DeliveredAt)
	assert.True(t, delivered.Details[0].DeliveredPrimary.Equal(qty(3)))

	movs := f.store.Movements()
	require.Len(t, movs, 1)
	assert.True(t, movs[0].QuantityPrimary.Equal(qty(3)))
	require.NotNil(t, movs[0].ReservationDetailID)
	assert.Equal(t, detailID, *movs[0].ReservationDetailID)
	assert.Equal(t, f.cat.Types[memstore.TypeSalidaReserva].ID, movs[0].MovementTypeID)
	assert.Contains(t, movs[0].Reference, "Reserva #")
	assert.True(t, f.store.Product(f.x.ID).CurrentStock.Equal(qty(17)))
}

func TestApprove_TodoCompletoQuedaAprobada(t *testing.T) {
	f := newFixture(t)
	res := f.create(t,
		dto.ReservationLineRequest{ProductID: f.x.ID, Quantity: qty(5)},
		dto.ReservationLineRequest{ProductID: f.y.ID, Quantity: qty(2)},
	)
	out, err := f.uc.Approve(context.Background(), bodegueroID, res.ID, dto.ApproveReservationRequest{
		Approvals: []dto.ApprovalLineRequest{
			{DetailID: res.Details[0].ID, ApprovedQty: qty(5)},
			{DetailID: res.Details[1].ID, ApprovedQty: qty(2)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationApproved), out.Status)
}

func TestApprove_TodoCeroEsRechazo(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, dto.ReservationLineRequest{ProductID: f.x.ID, Quantity: qty(5)})

	out, err := f.uc.Approve(context.Background(), bodegueroID, res.ID, dto.ApproveReservationRequest{
		Approvals: []dto.ApprovalLineRequest{{DetailID: res.Details[0].ID, ApprovedQty: qty(0)}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationRejected), out.Status)
	assert.NotEmpty(t, out.RejectionReason)

	_, err = f.uc.Deliver(context.Background(), bodegueroID, res.ID, dto.DeliverReservationRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestApprove_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.create(t,
		dto.ReservationLineRequest{ProductID: f.x.ID, Quantity: qty(5)},
		dto.ReservationLineRequest{ProductID: f.y.ID, Quantity: qty(2)},
	)
	d0, d1 := res.Details[0].ID, res.Details[1].ID

	cases := []struct {
		name      string
		approvals []dto.ApprovalLineRequest
		want      error
	}{
		{"excede lo solicitado", []dto.ApprovalLineRequest{{DetailID: d0, ApprovedQty: qty(6)}, {DetailID: d1, ApprovedQty: qty(1)}}, domain.ErrApprovalExceedsRequest},
		{"negativa", []dto.ApprovalLineRequest{{DetailID: d0, ApprovedQty: qty(-1)}, {DetailID: d1, ApprovedQty: qty(1)}}, domain.ErrInvalidInput},
		{"falta un detalle", []dto.ApprovalLineRequest{{DetailID: d0, ApprovedQty: qty(1)}}, domain.ErrInvalidInput},
		{"detalle ajeno", []dto.ApprovalLineRequest{{DetailID: d0, ApprovedQty: qty(1)}, {DetailID: d1, ApprovedQty: qty(1)}, {DetailID: 9999, ApprovedQty: qty(1)}}, domain.ErrNotFound},
		{"repetido", []dto.ApprovalLineRequest{{DetailID: d0, ApprovedQty: qty(1)}, {DetailID: d0, ApprovedQty: qty(1)}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Approve(ctx, bodegueroID, res.ID, dto.ApproveReservationRequest{Approvals: tc.approvals})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// nada quedó aprobado
	got, err := f.uc.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationPending), got.Status)
	for _, d := range got.Details {
		assert.Nil(t, d.ApprovedPrimary)
	}
}

func TestApprove_SinStockSuficiente(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, dto.ReservationLineRequest{ProductID: f.y.ID, Quantity: qty(10)})

	_, err := f.uc.Approve(context.Background(), bodegueroID, res.ID, dto.ApproveReservationRequest{
		Approvals: []dto.ApprovalLineRequest{{DetailID: res.Details[0].ID, ApprovedQty: qty(8)}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// Dos líneas del mismo producto se comparan contra el stock sumadas.
func TestApprove_LineasDelMismoProductoSeSuman(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.create(t,
		dto.ReservationLineRequest{ProductID: f.y.ID, Quantity: qty(4)},
		dto.ReservationLineRequest{ProductID: f.y.ID, Quantity: qty(4)},
	)

	_, err := f.uc.Approve(ctx, bodegueroID, res.ID, dto.ApproveReservationRequest{
		Approvals: []dto.ApprovalLineRequest{
			{DetailID: res.Details[0].ID, ApprovedQty: qty(4)},
			{DetailID: res.Details[1].ID, ApprovedQty: qty(4)},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "aprobado 8")

	got, err := f.uc.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationPending), got.Status)

	out, err := f.uc.Approve(ctx, bodegueroID, res.ID, dto.ApproveReservationRequest{
		Approvals: []dto.ApprovalLineRequest{
			{DetailID: res.Details[0].ID, ApprovedQty: qty(2)},
			{DetailID: res.Details[1].ID, ApprovedQty: qty(2)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationPartiallyApproved), out.Status)

	out, err = f.uc.Deliver(ctx, bodegueroID, res.ID, dto.DeliverReservationRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationDelivered), out.Status)
	assert.True(t, f.store.Product(f.y.ID).CurrentStock.IsZero())
	assert.Len(t, f.store.Movements(), 2)
}

func TestTransicionesInvalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.create(t, dto.ReservationLineRequest{ProductID: f.x.ID, Quantity: qty(1)})

	// entregar una Pendiente
	_, err := f.uc.Deliver(ctx, bodegueroID, res.ID, dto.DeliverReservationRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Contains(t, err.Error(), string(entity.ReservationPending))

	_, err = f.uc.Reject(ctx, bodegueroID, res.ID, dto.RejectReservationRequest{Reason: "sin presupuesto"})
	require.NoError(t, err)

	_, err = f.uc.Approve(ctx, bodegueroID, res.ID, dto.ApproveReservationRequest{
		Approvals: []dto.ApprovalLineRequest{{DetailID: res.Details[0].ID, ApprovedQty: qty(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.uc.Reject(ctx, bodegueroID, res.ID, dto.RejectReservationRequest{Reason: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.uc.Reject(ctx, bodegueroID, 4242, dto.RejectReservationRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReject_RequiereMotivo(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, dto.ReservationLineRequest{ProductID: f.x.ID, Quantity: qty(1)})
	_, err := f.uc.Reject(context.Background(), bodegueroID, res.ID, dto.RejectReservationRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// El stock puede bajar entre la aprobación y la entrega: la entrega falla completa.
func TestDeliver_SegundaVerificacionDeStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.create(t,
		dto.ReservationLineRequest{ProductID: f.x.ID, Quantity: qty(5)},
		dto.ReservationLineRequest{ProductID: f.y.ID, Quantity: qty(4)},
	)
	_, err := f.uc.Approve(ctx, bodegueroID, res.ID, dto.ApproveReservationRequest{
		Approvals: []dto.ApprovalLineRequest{
			{DetailID: res.Details[0].ID, ApprovedQty: qty(5)},
			{DetailID: res.Details[1].ID, ApprovedQty: qty(4)},
		},
	})
	require.NoError(t, err)

	// otra salida consume stock de Y
	ledger := inventory.NewLedger(f.store)
	_, err = ledger.Post(ctx, inventory.PostInput{
		ProductID:      f.y.ID,
		MovementTypeID: f.cat.Types[memstore.TypeSalidaManual].ID,
		Direction:      entity.DirectionOut,
		Quantity:       qty(2),
	})
	require.NoError(t, err)

	_, err = f.uc.Deliver(ctx, bodegueroID, res.ID, dto.DeliverReservationRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "Y-1")

	// X no se movió aunque se procesó antes que Y
	assert.True(t, f.store.Product(f.x.ID).CurrentStock.Equal(qty(20)))
	assert.Len(t, f.store.Movements(), 1)

	got, err := f.uc.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationApproved), got.Status)
	for _, d := range got.Details {
		assert.True(t, d.DeliveredPrimary.IsZero())
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.create(t, dto.ReservationLineRequest{ProductID: f.x.ID, Quantity: qty(1)})

	// la reserva de otro vendedor no se revela
	_, err := f.uc.Cancel(ctx, 999, res.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err := f.uc.Cancel(ctx, vendedorID, res.ID, true)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReservationCancelled), out.Status)

	_, err = f.uc.Cancel(ctx, vendedorID, res.ID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestList_FiltraPorEstadoYVendedor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, dto.ReservationLineRequest{ProductID: f.x.ID, Quantity: qty(1)})
	f.create(t, dto.ReservationLineRequest{ProductID: f.x.ID, Quantity: qty(2)})
	_, err := f.uc.Reject(ctx, bodegueroID, a.ID, dto.RejectReservationRequest{Reason: "no"})
	require.NoError(t, err)

	pending := entity.ReservationPending
	list, err := f.uc.List(ctx, entity.ReservationFilter{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	seller := vendedorID
	list, err = f.uc.List(ctx, entity.ReservationFilter{SellerID: &seller})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)

	bad := entity.ReservationStatus("Perdida")
	_, err = f.uc.List(ctx, entity.ReservationFilter{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
