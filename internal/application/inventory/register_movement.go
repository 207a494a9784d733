package inventory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// RegisterMovementUseCase entradas y salidas directas, más la consulta del kardex.
type RegisterMovementUseCase struct {
	ledger *Ledger
	repos  repository.Repositories
}

// NewRegisterMovementUseCase construye el caso de uso. repos son los repositorios sobre el pool
// (solo lectura aquí; toda escritura pasa por el Ledger).
func NewRegisterMovementUseCase(ledger *Ledger, repos repository.Repositories) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{ledger: ledger, repos: repos}
}

// RegisterEntry registra una entrada; el tipo debe tener efecto +1.
func (uc *RegisterMovementUseCase) RegisterEntry(ctx context.Context, userID int64, in dto.RegisterMovementRequest) (*dto.RegisterMovementResponse, error) {
	return uc.register(ctx, userID, entity.DirectionIn, in)
}

// RegisterExit registra una salida; el tipo debe tener efecto -1.
func (uc *RegisterMovementUseCase) RegisterExit(ctx context.Context, userID int64, in dto.RegisterMovementRequest) (*dto.RegisterMovementResponse, error) {
	return uc.register(ctx, userID, entity.DirectionOut, in)
}

func (uc *RegisterMovementUseCase) register(ctx context.Context, userID int64, dir entity.Direction, in dto.RegisterMovementRequest) (*dto.RegisterMovementResponse, error) {
	if in.ProductID <= 0 || in.MovementTypeID <= 0 {
		return nil, domain.Errorf(domain.ErrInvalidInput, "producto_id y tipo_movimiento_id son obligatorios")
	}
	res, err := uc.ledger.Post(ctx, PostInput{
		ProductID:      in.ProductID,
		MovementTypeID: in.MovementTypeID,
		Direction:      dir,
		Quantity:       in.Quantity,
		UnitID:         in.UnitID,
		UserID:         userID,
		Reason:         in.Reason,
		Reference:      in.Reference,
		Notes:          in.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &dto.RegisterMovementResponse{
		Movement:     *ToMovementResponse(res.Movement),
		CurrentStock: res.Product.CurrentStock,
	}, nil
}

// GetByID obtiene un movimiento; (nil, nil) si no existe.
func (uc *RegisterMovementUseCase) GetByID(ctx context.Context, id int64) (*dto.MovementResponse, error) {
	m, err := uc.repos.Movements.GetByID(ctx, id)
	if err != nil || m == nil {
		return nil, err
	}
	return ToMovementResponse(m), nil
}

// List kardex filtrado, más reciente primero.
func (uc *RegisterMovementUseCase) List(ctx context.Context, filter entity.MovementFilter) (*dto.MovementListResponse, error) {
	list, err := uc.repos.Movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// ListTypes devuelve los tipos de movimiento.
func (uc *RegisterMovementUseCase) ListTypes(ctx context.Context) ([]dto.MovementTypeResponse, error) {
	list, err := uc.repos.MovementTypes.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementTypeResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.MovementTypeResponse{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			StockEffect: t.StockEffect,
		})
	}
	return out, nil
}

// ToMovementResponse mapea un movimiento a su DTO; lo usan también los flujos de conteo.
func ToMovementResponse(m *entity.Movement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	return &dto.MovementResponse{
		ID:                  m.ID,
		ProductID:           m.ProductID,
		MovementTypeID:      m.MovementTypeID,
		Quantity:            m.Quantity,
		UnitID:              m.UnitID,
		QuantityPrimary:     m.QuantityPrimary,
		StockBefore:         m.StockBefore,
		StockAfter:          m.StockAfter,
		UserID:              m.UserID,
		Reason:              m.Reason,
		Reference:           m.Reference,
		Notes:               m.Notes,
		ReservationDetailID: m.ReservationDetailID,
		CountDetailID:       m.CountDetailID,
		CreatedAt:           m.CreatedAt,
	}
}
