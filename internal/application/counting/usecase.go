package counting

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
)

// AdjustmentTypes nombres de los tipos de movimiento usados para ajustar diferencias.
type AdjustmentTypes struct {
	Positive string // MOV_TIPO_AJUSTE_POSITIVO
	Negative string // MOV_TIPO_AJUSTE_NEGATIVO
}

// UseCase conteo físico: inicio, registro de cantidades, cierre y aplicación de ajustes.
type UseCase struct {
	txRunner inventory.TxRunner
	ledger   *inventory.Ledger
	repos    repository.Repositories
	types    AdjustmentTypes
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner inventory.TxRunner, ledger *inventory.Ledger, repos repository.Repositories, types AdjustmentTypes) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		ledger:   ledger,
		repos:    repos,
		types:    types,
		log:      logger.Component("conteos"),
		now:      time.Now,
	}
}

// Start crea un conteo en estado Iniciado.
func (uc *UseCase) Start(ctx context.Context, userID int64, in dto.StartCountRequest) (*dto.CountResponse, error) {
	c := &entity.PhysicalCount{
		ResponsibleID: userID,
		Status:        entity.CountStarted,
		StartedAt:     uc.now(),
		Motive:        in.Motive,
		Filters:       in.Filters,
		Notes:         in.Notes,
	}
	if err := uc.repos.Counts.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("conteo_id", c.ID).Int64("responsable_id", userID).Msg("conteo iniciado")
	return toResponse(c), nil
}

// AddOrUpdateDetail registra la cantidad contada de un producto. Una sola línea por producto:
// si ya existe se sobrescribe. El stock teórico se toma del producto en este momento.
// El primer registro pasa el conteo de Iniciado a En Progreso.
func (uc *UseCase) AddOrUpdateDetail(ctx context.Context, countID int64, in dto.CountDetailRequest) (*dto.CountDetailResponse, error) {
	if (in.CountedQty == nil) == (in.AltQuantity == nil) {
		return nil, domain.Errorf(domain.ErrInvalidInput,
			"indique cantidad_contada o el par unidad_id + cantidad_alternativa")
	}
	if in.AltQuantity != nil && in.UnitID <= 0 {
		return nil, domain.Errorf(domain.ErrInvalidInput, "unidad_id es obligatorio con cantidad_alternativa")
	}

	var detail *entity.CountDetail
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		c, err := lockCount(ctx, repos, countID)
		if err != nil {
			return err
		}
		if !c.Status.AcceptsDetails() {
			return invalidTransition(c, "registrar cantidades en")
		}
		p, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.Errorf(domain.ErrNotFound, "producto %d no encontrado", in.ProductID)
		}

		unitID, qty := p.PrimaryUnitID, in.CountedQty
		if in.AltQuantity != nil {
			unitID, qty = in.UnitID, in.AltQuantity
		}
		counted, err := domaininv.CountedToPrimary(p, unitID, *qty)
		if err != nil {
			return err
		}
		if p.CurrentStock.IsNegative() {
			return domain.Errorf(domain.ErrInvalidInput, "stock teórico negativo para %s", p.SKU)
		}

		detail = &entity.CountDetail{
			CountID:          c.ID,
			ProductID:        p.ID,
			TheoreticalStock: p.CurrentStock,
			CountedStock:     counted,
			UpdatedAt:        uc.now(),
		}
		detail.Recalculate()
		if err := repos.Counts.UpsertDetail(ctx, detail); err != nil {
			return err
		}

		if c.Status == entity.CountStarted {
			c.Status = entity.CountInProgress
			return repos.Counts.UpdateHeader(ctx, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := toDetailResponse(*detail)
	return &out, nil
}

// Finalize congela el conteo (Registrado). Las notas se agregan a las existentes.
func (uc *UseCase) Finalize(ctx context.Context, countID int64, in dto.FinalizeCountRequest) (*dto.CountResponse, error) {
	var c *entity.PhysicalCount
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		c, err = lockCount(ctx, repos, countID)
		if err != nil {
			return err
		}
		if !c.Status.CanTransitionTo(entity.CountRecorded) {
			return invalidTransition(c, "finalizar")
		}
		now := uc.now()
		c.Status = entity.CountRecorded
		c.FinishedAt = &now
		c.Notes = entity.AppendNote(c.Notes, in.Notes)
		return repos.Counts.UpdateHeader(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("conteo_id", countID).Int("detalles", len(c.Details)).Msg("conteo finalizado")
	return toResponse(c), nil
}

// ApplyAdjustments registra un movimiento de ajuste por cada línea con diferencia distinta de cero
// que aún no se ajustó, y deja el conteo en Ajustes Aplicados. Todo ocurre en una transacción:
// si un ajuste negativo no tiene stock suficiente no se aplica ninguno.
func (uc *UseCase) ApplyAdjustments(ctx context.Context, actorID, countID int64) (*dto.ApplyAdjustmentsResponse, error) {
	var (
		c         *entity.PhysicalCount
		movements []dto.MovementResponse
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		c, err = lockCount(ctx, repos, countID)
		if err != nil {
			return err
		}
		if !c.Status.CanTransitionTo(entity.CountAdjustmentsApplied) {
			return invalidTransition(c, "aplicar ajustes en")
		}
		positive, err := inventory.TypeByName(ctx, repos, uc.types.Positive, entity.DirectionIn)
		if err != nil {
			return err
		}
		negative, err := inventory.TypeByName(ctx, repos, uc.types.Negative, entity.DirectionOut)
		if err != nil {
			return err
		}

		sort.SliceStable(c.Details, func(i, j int) bool { return c.Details[i].ProductID < c.Details[j].ProductID })
		movements = make([]dto.MovementResponse, 0, len(c.Details))
		for i := range c.Details {
			d := &c.Details[i]
			if !d.NeedsAdjustment() {
				continue
			}
			mt, dir := positive, entity.DirectionIn
			if d.Variance.IsNegative() {
				mt, dir = negative, entity.DirectionOut
			}
			detailID := d.ID
			res, err := uc.ledger.PostInTx(ctx, repos, inventory.PostInput{
				ProductID:      d.ProductID,
				MovementTypeID: mt.ID,
				Direction:      dir,
				Quantity:       d.Variance.Abs(),
				UserID:         actorID,
				Reason:         "Ajuste por conteo físico",
				Reference:      fmt.Sprintf("Conteo #%d", c.ID),
				CountDetailID:  &detailID,
			})
			if err != nil {
				return err
			}
			if err := repos.Counts.MarkDetailAdjusted(ctx, d.ID, res.Movement.ID); err != nil {
				return err
			}
			movID := res.Movement.ID
			d.AdjustmentApplied = true
			d.MovementID = &movID
			movements = append(movements, *inventory.ToMovementResponse(res.Movement))
		}

		c.Status = entity.CountAdjustmentsApplied
		return repos.Counts.UpdateHeader(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("conteo_id", countID).Int("ajustes", len(movements)).Msg("ajustes aplicados")
	return &dto.ApplyAdjustmentsResponse{Count: *toResponse(c), Movements: movements}, nil
}

// Cancel anula un conteo que todavía no se finalizó.
func (uc *UseCase) Cancel(ctx context.Context, countID int64) (*dto.CountResponse, error) {
	var c *entity.PhysicalCount
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		c, err = lockCount(ctx, repos, countID)
		if err != nil {
			return err
		}
		if !c.Status.CanTransitionTo(entity.CountCancelled) {
			return invalidTransition(c, "cancelar")
		}
		now := uc.now()
		c.Status = entity.CountCancelled
		c.FinishedAt = &now
		return repos.Counts.UpdateHeader(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// GetByID obtiene un conteo con sus detalles; (nil, nil) si no existe.
func (uc *UseCase) GetByID(ctx context.Context, id int64) (*dto.CountResponse, error) {
	c, err := uc.repos.Counts.GetWithDetails(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	return toResponse(c), nil
}

// List lista conteos, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, filter entity.CountFilter) (*dto.CountListResponse, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, domain.Errorf(domain.ErrInvalidInput, "estado de conteo desconocido: %q", *filter.Status)
	}
	list, err := uc.repos.Counts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CountResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toResponse(c))
	}
	return &dto.CountListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

func lockCount(ctx context.Context, repos repository.Repositories, id int64) (*entity.PhysicalCount, error) {
	c, err := repos.Counts.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "conteo %d no encontrado", id)
	}
	return c, nil
}

func invalidTransition(c *entity.PhysicalCount, action string) error {
	return domain.Errorf(domain.ErrInvalidStateTransition,
		"no se puede %s el conteo %d en estado %q", action, c.ID, c.Status)
}

func toResponse(c *entity.PhysicalCount) *dto.CountResponse {
	out := &dto.CountResponse{
		ID:            c.ID,
		ResponsibleID: c.ResponsibleID,
		Status:        string(c.Status),
		StartedAt:     c.StartedAt,
		FinishedAt:    c.FinishedAt,
		Motive:        c.Motive,
		Filters:       c.Filters,
		Notes:         c.Notes,
		Details:       make([]dto.CountDetailResponse, 0, len(c.Details)),
	}
	for _, d := range c.Details {
		out.Details = append(out.Details, toDetailResponse(d))
	}
	return out
}

func toDetailResponse(d entity.CountDetail) dto.CountDetailResponse {
	return dto.CountDetailResponse{
		ID:                d.ID,
		ProductID:         d.ProductID,
		TheoreticalStock:  d.TheoreticalStock,
		CountedStock:      d.CountedStock,
		Variance:          d.Variance,
		AdjustmentApplied: d.AdjustmentApplied,
		MovementID:        d.MovementID,
	}
}
