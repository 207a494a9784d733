package reservation

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

// autoRejectionReason motivo que se guarda cuando todas las cantidades aprobadas son cero.
const autoRejectionReason = "Rechazada automáticamente: ninguna cantidad aprobada"

// UseCase flujo de reservas: solicitud, aprobación o rechazo y entrega.
// Solo la entrega mueve stock, a través del Ledger.
type UseCase struct {
	txRunner inventory.TxRunner
	ledger   *inventory.Ledger
	repos    repository.Repositories
	exitType string
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso. exitType es el nombre del tipo de movimiento de salida
// usado al entregar (MOV_TIPO_SALIDA_RESERVA).
func NewUseCase(txRunner inventory.TxRunner, ledger *inventory.Ledger, repos repository.Repositories, exitType string) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		ledger:   ledger,
		repos:    repos,
		exitType: exitType,
		log:      logger.Component("reservas"),
		now:      time.Now,
	}
}

// Create registra una solicitud Pendiente. Cada línea se convierte a unidad primaria
// y guarda el stock disponible al momento de solicitar. No mueve stock.
func (uc *UseCase) Create(ctx context.Context, sellerID int64, in dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.Errorf(domain.ErrInvalidInput, "la reserva debe tener al menos un detalle")
	}
	res := &entity.Reservation{
		SellerID:    sellerID,
		Purpose:     in.Purpose,
		Notes:       in.Notes,
		Status:      entity.ReservationPending,
		RequestedAt: uc.now(),
	}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		for _, line := range in.Lines {
			p, err := repos.Products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.Errorf(domain.ErrNotFound, "producto %d no encontrado", line.ProductID)
			}
			if !p.Active {
				return domain.Errorf(domain.ErrInvalidInput, "el producto %s está inactivo", p.SKU)
			}
			unitID := line.UnitID
			if unitID == 0 {
				unitID = p.PrimaryUnitID
			}
			qty, err := domaininv.ToPrimary(p, unitID, line.Quantity)
			if err != nil {
				return err
			}
			res.Details = append(res.Details, entity.ReservationDetail{
				ProductID:        p.ID,
				RequestedQty:     line.Quantity,
				UnitID:           unitID,
				RequestedPrimary: qty,
				DeliveredPrimary: decimal.Zero,
				StockAtRequest:   p.CurrentStock,
			})
		}
		return repos.Reservations.Create(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("reserva_id", res.ID).Int64("vendedor_id", sellerID).Int("detalles", len(res.Details)).Msg("reserva creada")
	return toResponse(res), nil
}

// Approve fija la cantidad aprobada de cada detalle (unidad primaria). Todas las líneas deben
// venir en la solicitud. Si todo es cero la reserva queda Rechazada; si todo coincide con lo
// pedido, Aprobada; en otro caso Aprobada Parcialmente.
func (uc *UseCase) Approve(ctx context.Context, clerkID, id int64, in dto.ApproveReservationRequest) (*dto.ReservationResponse, error) {
	approvals := make(map[int64]decimal.Decimal, len(in.Approvals))
	for _, a := range in.Approvals {
		if _, dup := approvals[a.DetailID]; dup {
			return nil, domain.Errorf(domain.ErrInvalidInput, "el detalle %d está repetido", a.DetailID)
		}
		if a.ApprovedQty.IsNegative() {
			return nil, domain.Errorf(domain.ErrInvalidInput, "la cantidad aprobada del detalle %d no puede ser negativa", a.DetailID)
		}
		if !domaininv.FitsScale(a.ApprovedQty) {
			return nil, domain.Errorf(domain.ErrInvalidQuantity,
				"la cantidad aprobada del detalle %d admite como máximo %d decimales", a.DetailID, domaininv.QuantityScale)
		}
		approvals[a.DetailID] = a.ApprovedQty
	}

	var res *entity.Reservation
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		res, err = lockReservation(ctx, repos, id)
		if err != nil {
			return err
		}
		if res.Status != entity.ReservationPending {
			return invalidTransition(res, "aprobar")
		}

		known := make(map[int64]bool, len(res.Details))
		for _, d := range res.Details {
			known[d.ID] = true
		}
		for detailID := range approvals {
			if !known[detailID] {
				return domain.Errorf(domain.ErrNotFound, "el detalle %d no pertenece a la reserva %d", detailID, id)
			}
		}

		// Varias líneas del mismo producto compiten por el mismo stock.
		approvedByProduct := make(map[int64]decimal.Decimal, len(res.Details))
		allZero, allFull := true, true
		for i := range res.Details {
			d := &res.Details[i]
			approved, ok := approvals[d.ID]
			if !ok {
				return domain.Errorf(domain.ErrInvalidInput, "falta la cantidad aprobada del detalle %d", d.ID)
			}
			if approved.GreaterThan(d.RequestedPrimary) {
				return domain.Errorf(domain.ErrApprovalExceedsRequest,
					"detalle %d: aprobado %s excede lo solicitado %s", d.ID, approved.String(), d.RequestedPrimary.String())
			}
			if approved.IsPositive() {
				p, err := repos.Products.GetByID(ctx, d.ProductID)
				if err != nil {
					return err
				}
				if p == nil {
					return domain.Errorf(domain.ErrNotFound, "producto %d no encontrado", d.ProductID)
				}
				total := approvedByProduct[d.ProductID].Add(approved)
				if p.CurrentStock.LessThan(total) {
					return domain.Errorf(domain.ErrInsufficientStock,
						"stock insuficiente para %s (%s): disponible %s, aprobado %s",
						p.Name, p.SKU, p.CurrentStock.String(), total.String())
				}
				approvedByProduct[d.ProductID] = total
			}
			allZero = allZero && approved.IsZero()
			allFull = allFull && approved.Equal(d.RequestedPrimary)
			a := approved
			d.ApprovedPrimary = &a
			if err := repos.Reservations.UpdateDetail(ctx, d); err != nil {
				return err
			}
		}

		switch {
		case allZero:
			res.Status = entity.ReservationRejected
			res.RejectionReason = autoRejectionReason
		case allFull:
			res.Status = entity.ReservationApproved
		default:
			res.Status = entity.ReservationPartiallyApproved
		}
		uc.stampProcessed(res, clerkID)
		res.Notes = entity.AppendNote(res.Notes, in.Notes)
		return repos.Reservations.UpdateHeader(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("reserva_id", id).Str("estado", string(res.Status)).Msg("reserva procesada")
	return toResponse(res), nil
}

// Reject rechaza una reserva Pendiente con un motivo.
func (uc *UseCase) Reject(ctx context.Context, clerkID, id int64, in dto.RejectReservationRequest) (*dto.ReservationResponse, error) {
	if in.Reason == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "el motivo de rechazo es obligatorio")
	}
	var res *entity.Reservation
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		res, err = lockReservation(ctx, repos, id)
		if err != nil {
			return err
		}
		if res.Status != entity.ReservationPending {
			return invalidTransition(res, "rechazar")
		}
		res.Status = entity.ReservationRejected
		res.RejectionReason = in.Reason
		uc.stampProcessed(res, clerkID)
		return repos.Reservations.UpdateHeader(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(res), nil
}

// Deliver entrega lo aprobado pendiente de cada línea. Vuelve a verificar el stock de cada
// producto (pudo moverse desde la aprobación) y registra una salida por línea en el Ledger.
// Los productos se bloquean en orden de ID para evitar interbloqueos entre entregas.
func (uc *UseCase) Deliver(ctx context.Context, clerkID, id int64, in dto.DeliverReservationRequest) (*dto.ReservationResponse, error) {
	var res *entity.Reservation
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		res, err = lockReservation(ctx, repos, id)
		if err != nil {
			return err
		}
		if !res.Status.CanTransitionTo(entity.ReservationDelivered) {
			return invalidTransition(res, "entregar")
		}
		mt, err := inventory.TypeByName(ctx, repos, uc.exitType, entity.DirectionOut)
		if err != nil {
			return err
		}

		order := make([]int, len(res.Details))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return res.Details[order[a]].ProductID < res.Details[order[b]].ProductID
		})

		for _, i := range order {
			d := &res.Details[i]
			pending := d.Pending()
			if !pending.IsPositive() {
				continue
			}
			p, err := repos.Products.GetForUpdate(ctx, d.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.Errorf(domain.ErrNotFound, "producto %d no encontrado", d.ProductID)
			}
			if p.CurrentStock.LessThan(pending) {
				return domain.Errorf(domain.ErrInsufficientStock,
					"stock insuficiente para entregar %s (%s): disponible %s, pendiente %s",
					p.Name, p.SKU, p.CurrentStock.String(), pending.String())
			}
			detailID := d.ID
			if _, err := uc.ledger.PostInTx(ctx, repos, inventory.PostInput{
				ProductID:           d.ProductID,
				MovementTypeID:      mt.ID,
				Direction:           entity.DirectionOut,
				Quantity:            pending,
				UnitID:              p.PrimaryUnitID,
				UserID:              clerkID,
				Reason:              "Entrega de reserva",
				Reference:           fmt.Sprintf("Reserva #%d", res.ID),
				Notes:               in.Notes,
				ReservationDetailID: &detailID,
			}); err != nil {
				return err
			}
			d.DeliveredPrimary = d.DeliveredPrimary.Add(pending)
			if err := repos.Reservations.UpdateDetail(ctx, d); err != nil {
				return err
			}
		}

		now := uc.now()
		res.Status = entity.ReservationDelivered
		res.DeliveredAt = &now
		res.Notes = entity.AppendNote(res.Notes, in.Notes)
		return repos.Reservations.UpdateHeader(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("reserva_id", id).Int64("usuario_id", clerkID).Msg("reserva entregada")
	return toResponse(res), nil
}

// Cancel anula una reserva que aún no se entregó. Un vendedor solo puede cancelar las suyas;
// las ajenas se reportan como inexistentes. onlyOwner lo indica la capa HTTP según el rol.
func (uc *UseCase) Cancel(ctx context.Context, userID, id int64, onlyOwner bool) (*dto.ReservationResponse, error) {
	var res *entity.Reservation
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		res, err = lockReservation(ctx, repos, id)
		if err != nil {
			return err
		}
		if onlyOwner && res.SellerID != userID {
			return domain.Errorf(domain.ErrNotFound, "reserva %d no encontrada", id)
		}
		if !res.Status.CanTransitionTo(entity.ReservationCancelled) {
			return invalidTransition(res, "cancelar")
		}
		res.Status = entity.ReservationCancelled
		return repos.Reservations.UpdateHeader(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(res), nil
}

// GetByID obtiene una reserva con sus detalles; (nil, nil) si no existe.
func (uc *UseCase) GetByID(ctx context.Context, id int64) (*dto.ReservationResponse, error) {
	res, err := uc.repos.Reservations.GetWithDetails(ctx, id)
	if err != nil || res == nil {
		return nil, err
	}
	return toResponse(res), nil
}

// List lista reservas filtradas por estado y vendedor.
func (uc *UseCase) List(ctx context.Context, filter entity.ReservationFilter) (*dto.ReservationListResponse, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, domain.Errorf(domain.ErrInvalidInput, "estado de reserva desconocido: %q", *filter.Status)
	}
	list, err := uc.repos.Reservations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReservationResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toResponse(r))
	}
	return &dto.ReservationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

func (uc *UseCase) stampProcessed(res *entity.Reservation, clerkID int64) {
	now := uc.now()
	res.ProcessorID = &clerkID
	res.ProcessedAt = &now
}

func lockReservation(ctx context.Context, repos repository.Repositories, id int64) (*entity.Reservation, error) {
	res, err := repos.Reservations.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "reserva %d no encontrada", id)
	}
	return res, nil
}

func invalidTransition(res *entity.Reservation, action string) error {
	return domain.Errorf(domain.ErrInvalidStateTransition,
		"no se puede %s la reserva %d en estado %q", action, res.ID, res.Status)
}

func toResponse(r *entity.Reservation) *dto.ReservationResponse {
	out := &dto.ReservationResponse{
		ID:              r.ID,
		SellerID:        r.SellerID,
		ProcessorID:     r.ProcessorID,
		Purpose:         r.Purpose,
		Status:          string(r.Status),
		RequestedAt:     r.RequestedAt,
		ProcessedAt:     r.ProcessedAt,
		DeliveredAt:     r.DeliveredAt,
		RejectionReason: r.RejectionReason,
		Notes:           r.Notes,
		Details:         make([]dto.ReservationDetailResponse, 0, len(r.Details)),
	}
	for _, d := range r.Details {
		out.Details = append(out.Details, dto.ReservationDetailResponse{
			ID:               d.ID,
			ProductID:        d.ProductID,
			RequestedQty:     d.RequestedQty,
			UnitID:           d.UnitID,
			RequestedPrimary: d.RequestedPrimary,
			ApprovedPrimary:  d.ApprovedPrimary,
			DeliveredPrimary: d.DeliveredPrimary,
			StockAtRequest:   d.StockAtRequest,
		})
	}
	return out
}
