package purchasing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// UseCase órdenes de compra: creación, cambios de estado manuales y recepción de mercadería.
type UseCase struct {
	txRunner  inventory.TxRunner
	ledger    *inventory.Ledger
	repos     repository.Repositories
	entryType string
	log       zerolog.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso. entryType es el tipo de movimiento de las recepciones
// (MOV_TIPO_ENTRADA_COMPRA).
func NewUseCase(txRunner inventory.TxRunner, ledger *inventory.Ledger, repos repository.Repositories, entryType string) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		repos:     repos,
		entryType: entryType,
		log:       logger.Component("compras"),
		now:       time.Now,
	}
}

// Create registra una orden en Borrador y calcula subtotal, impuesto y total una sola vez.
func (uc *UseCase) Create(ctx context.Context, buyerID int64, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.Errorf(domain.ErrInvalidInput, "la orden debe tener al menos un detalle")
	}
	now := uc.now()
	order := &entity.PurchaseOrder{
		SupplierID: in.SupplierID,
		CreatedBy:  buyerID,
		Status:     entity.PurchaseOrderDraft,
		IssuedAt:   now,
		ExpectedAt: in.ExpectedAt,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		sup, err := repos.Suppliers.GetByID(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if sup == nil {
			return domain.Errorf(domain.ErrNotFound, "proveedor %d no encontrado", in.SupplierID)
		}
		for _, line := range in.Lines {
			if !line.RequestedQty.IsPositive() {
				return domain.Errorf(domain.ErrInvalidQuantity, "la cantidad del producto %d debe ser mayor que cero", line.ProductID)
			}
			if line.UnitCost.IsNegative() {
				return domain.Errorf(domain.ErrInvalidInput, "el costo unitario del producto %d no puede ser negativo", line.ProductID)
			}
			if !domaininv.FitsScale(line.RequestedQty) || !domaininv.FitsScale(line.UnitCost) {
				return domain.Errorf(domain.ErrInvalidQuantity,
					"cantidad y costo del producto %d admiten como máximo %d decimales", line.ProductID, domaininv.QuantityScale)
			}
			p, err := repos.Products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.Errorf(domain.ErrNotFound, "producto %d no encontrado", line.ProductID)
			}
			order.Details = append(order.Details, entity.PurchaseOrderDetail{
				ProductID:    p.ID,
				RequestedQty: line.RequestedQty,
				UnitCost:     line.UnitCost,
				ReceivedQty:  decimal.Zero,
			})
		}
		order.ComputeTotals()
		return repos.PurchaseOrders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("orden_id", order.ID).Str("total", order.Total.String()).Msg("orden de compra creada")
	return ToResponse(order), nil
}

// SetStatus asigna un estado manualmente. Se bloquea si la orden ya es terminal
// (Recibida Completa o Cancelada) y cuando el destino es Recibida Completa, que deriva de las recepciones.
func (uc *UseCase) SetStatus(ctx context.Context, id int64, in dto.SetPurchaseOrderStatusRequest) (*dto.PurchaseOrderResponse, error) {
	target := entity.PurchaseOrderStatus(in.Status)
	if !target.IsValid() {
		return nil, domain.Errorf(domain.ErrInvalidInput, "estado de orden desconocido: %q", in.Status)
	}
	var order *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		order, err = lockOrder(ctx, repos, id)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(target) {
			return invalidTransition(order, "cambiar el estado de")
		}
		order.Status = target
		return repos.PurchaseOrders.UpdateStatus(ctx, order.ID, target)
	})
	if err != nil {
		return nil, err
	}
	return ToResponse(order), nil
}

// Receive registra cantidades recibidas. Las cantidades ≤ 0 se ignoran; si alguna excede lo
// pendiente de su línea no se recibe nada. Cada recepción es una entrada en el Ledger.
// La orden queda Recibida Completa si todas las líneas están completas, si no Recibida Parcialmente.
func (uc *UseCase) Receive(ctx context.Context, actorID, id int64, in dto.ReceivePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	var order *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		order, err = lockOrder(ctx, repos, id)
		if err != nil {
			return err
		}

		byID := make(map[int64]*entity.PurchaseOrderDetail, len(order.Details))
		for i := range order.Details {
			byID[order.Details[i].ID] = &order.Details[i]
		}

		// Validación completa antes de escribir; se acumula por línea por si viene repetida.
		incoming := make(map[int64]decimal.Decimal)
		for _, r := range in.Receipts {
			if !r.ReceivedQty.IsPositive() {
				continue
			}
			if !domaininv.FitsScale(r.ReceivedQty) {
				return domain.Errorf(domain.ErrInvalidQuantity,
					"la cantidad recibida del detalle %d admite como máximo %d decimales", r.DetailID, domaininv.QuantityScale)
			}
			d, ok := byID[r.DetailID]
			if !ok {
				return domain.Errorf(domain.ErrNotFound, "el detalle %d no pertenece a la orden %d", r.DetailID, id)
			}
			total := incoming[d.ID].Add(r.ReceivedQty)
			if pending := d.PendingQty(); total.GreaterThan(pending) {
				return domain.Errorf(domain.ErrReceivingExceedsPending,
					"la recepción de %s excede lo pendiente (pendiente %s, recibido %s)",
					productLabel(ctx, repos, d.ProductID), pending.String(), total.String())
			}
			incoming[d.ID] = total
		}
		if !order.Status.CanReceive() {
			return invalidTransition(order, "recibir")
		}
		if len(incoming) == 0 {
			return nil
		}

		mt, err := inventory.TypeByName(ctx, repos, uc.entryType, entity.DirectionIn)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(incoming))
		for detailID := range incoming {
			ids = append(ids, detailID)
		}
		sort.Slice(ids, func(i, j int) bool { return byID[ids[i]].ProductID < byID[ids[j]].ProductID })

		for _, detailID := range ids {
			d := byID[detailID]
			q := incoming[detailID]
			if _, err := uc.ledger.PostInTx(ctx, repos, inventory.PostInput{
				ProductID:      d.ProductID,
				MovementTypeID: mt.ID,
				Direction:      entity.DirectionIn,
				Quantity:       q,
				UserID:         actorID,
				Reason:         "Recepción de orden de compra",
				Reference:      fmt.Sprintf("OC-%d", order.ID),
				Notes:          in.Notes,
			}); err != nil {
				return err
			}
			d.ReceivedQty = d.ReceivedQty.Add(q)
			if err := repos.PurchaseOrders.UpdateReceived(ctx, d.ID, d.ReceivedQty); err != nil {
				return err
			}
		}

		order.Status = entity.PurchaseOrderPartiallyReceived
		if order.AllReceived() {
			order.Status = entity.PurchaseOrderFullyReceived
		}
		return repos.PurchaseOrders.UpdateStatus(ctx, order.ID, order.Status)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("orden_id", id).Str("estado", string(order.Status)).Msg("recepción registrada")
	return ToResponse(order), nil
}

// Get devuelve la entidad completa; (nil, nil) si no existe. Lo usa el generador de PDF.
func (uc *UseCase) Get(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return uc.repos.PurchaseOrders.GetWithDetails(ctx, id)
}

// GetByID obtiene una orden con sus detalles; (nil, nil) si no existe.
func (uc *UseCase) GetByID(ctx context.Context, id int64) (*dto.PurchaseOrderResponse, error) {
	o, err := uc.Get(ctx, id)
	if err != nil || o == nil {
		return nil, err
	}
	return ToResponse(o), nil
}

// List lista órdenes filtradas por estado y proveedor.
func (uc *UseCase) List(ctx context.Context, filter entity.PurchaseOrderFilter) (*dto.PurchaseOrderListResponse, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, domain.Errorf(domain.ErrInvalidInput, "estado de orden desconocido: %q", *filter.Status)
	}
	list, err := uc.repos.PurchaseOrders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *ToResponse(o))
	}
	return &dto.PurchaseOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// productLabel nombre legible del producto para mensajes de error.
func productLabel(ctx context.Context, repos repository.Repositories, id int64) string {
	p, err := repos.Products.GetByID(ctx, id)
	if err != nil || p == nil {
		return fmt.Sprintf("producto %d", id)
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.SKU)
}

func lockOrder(ctx context.Context, repos repository.Repositories, id int64) (*entity.PurchaseOrder, error) {
	o, err := repos.PurchaseOrders.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "orden de compra %d no encontrada", id)
	}
	return o, nil
}

func invalidTransition(o *entity.PurchaseOrder, action string) error {
	return domain.Errorf(domain.ErrInvalidStateTransition,
		"no se puede %s la orden %d en estado %q", action, o.ID, o.Status)
}

// ToResponse mapea una orden a su DTO.
func ToResponse(o *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	out := &dto.PurchaseOrderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		CreatedBy:  o.CreatedBy,
		Status:     string(o.Status),
		IssuedAt:   o.IssuedAt,
		ExpectedAt: o.ExpectedAt,
		Subtotal:   o.Subtotal,
		Tax:        o.Tax,
		Total:      o.Total,
		Notes:      o.Notes,
		Details:    make([]dto.PurchaseOrderDetailResponse, 0, len(o.Details)),
	}
	for _, d := range o.Details {
		out.Details = append(out.Details, dto.PurchaseOrderDetailResponse{
			ID:           d.ID,
			ProductID:    d.ProductID,
			RequestedQty: d.RequestedQty,
			UnitCost:     d.UnitCost,
			ReceivedQty:  d.ReceivedQty,
			PendingQty:   d.PendingQty(),
		})
	}
	return out
}
