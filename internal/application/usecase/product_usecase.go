package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. El stock se maneja solo vía movimientos.
type ProductUseCase struct {
	repo     repository.ProductRepository
	unitRepo repository.UnitRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, unitRepo repository.UnitRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, unitRepo: unitRepo}
}

// Create crea un nuevo producto. El stock inicia en 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Errorf(domain.ErrDuplicate, "el sku %s ya existe", in.SKU)
	}
	now := time.Now()
	product := &entity.Product{
		SKU:           in.SKU,
		Name:          in.Name,
		Description:   in.Description,
		CategoryID:    in.CategoryID,
		SupplierID:    in.SupplierID,
		LocationID:    in.LocationID,
		CurrentStock:  decimal.Zero,
		MinStock:      in.MinStock,
		MaxStock:      in.MaxStock,
		PrimaryUnitID: in.PrimaryUnitID,
		AltUnitID:     in.AltUnitID,
		AltUnitFactor: in.AltUnitFactor,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.validate(ctx, product); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return ToProductResponse(product), nil
}

// Update actualiza campos descriptivos y unidades. No permite modificar el stock.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.CategoryID != nil {
		product.CategoryID = in.CategoryID
	}
	if in.SupplierID != nil {
		product.SupplierID = in.SupplierID
	}
	if in.LocationID != nil {
		product.LocationID = in.LocationID
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if in.MaxStock != nil {
		product.MaxStock = *in.MaxStock
	}
	if in.PrimaryUnitID != nil {
		product.PrimaryUnitID = *in.PrimaryUnitID
	}
	if in.ClearAltUnit {
		product.AltUnitID = nil
		product.AltUnitFactor = nil
	} else {
		if in.AltUnitID != nil {
			product.AltUnitID = in.AltUnitID
		}
		if in.AltUnitFactor != nil {
			product.AltUnitFactor = in.AltUnitFactor
		}
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if err := uc.validate(ctx, product); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// List lista productos con búsqueda y paginación.
func (uc *ProductUseCase) List(ctx context.Context, filter entity.ProductFilter) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// validate reglas de unidades, umbrales y existencia de las unidades referenciadas.
func (uc *ProductUseCase) validate(ctx context.Context, p *entity.Product) error {
	if err := inventory.ValidateUnits(p); err != nil {
		return err
	}
	if p.MinStock.IsNegative() || p.MaxStock.IsNegative() {
		return domain.Errorf(domain.ErrInvalidInput, "stock_minimo y stock_maximo deben ser >= 0")
	}
	if !inventory.FitsScale(p.MinStock) || !inventory.FitsScale(p.MaxStock) {
		return domain.Errorf(domain.ErrInvalidInput, "stock_minimo y stock_maximo admiten como máximo %d decimales", inventory.QuantityScale)
	}
	if p.MaxStock.IsPositive() && p.MaxStock.LessThan(p.MinStock) {
		return domain.Errorf(domain.ErrInvalidInput, "stock_maximo no puede ser menor que stock_minimo")
	}
	ids := []int64{p.PrimaryUnitID}
	if p.AltUnitID != nil {
		ids = append(ids, *p.AltUnitID)
	}
	for _, id := range ids {
		u, err := uc.unitRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.Errorf(domain.ErrInvalidInput, "unidad de medida %d inexistente", id)
		}
	}
	return nil
}

// ToProductResponse mapea un producto a su DTO.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		SupplierID:    p.SupplierID,
		LocationID:    p.LocationID,
		CurrentStock:  p.CurrentStock,
		MinStock:      p.MinStock,
		MaxStock:      p.MaxStock,
		PrimaryUnitID: p.PrimaryUnitID,
		AltUnitID:     p.AltUnitID,
		AltUnitFactor: p.AltUnitFactor,
		BelowMinimum:  p.BelowMinimum(),
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
