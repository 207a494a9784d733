package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReplenishmentUseCase genera la lista de reposición: productos bajo su stock mínimo
// con la cantidad sugerida para volver al stock objetivo.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo}
}

// GenerateReplenishmentList devuelve los productos activos bajo mínimo ordenados por urgencia.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	// 1. Productos por debajo del mínimo
	products, err := uc.productRepo.List(ctx, entity.ProductFilter{BelowMinimo: true, OnlyActive: true})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// 2. Stock objetivo: máximo configurado, o mínimo × 1.5
	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for _, p := range products {
		target := p.MaxStock
		if !target.GreaterThan(p.MinStock) {
			target = p.MinStock.Mul(factor)
		}
		suggested := target.Sub(p.CurrentStock)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:         p.ID,
			SKU:               p.SKU,
			ProductName:       p.Name,
			CurrentStock:      p.CurrentStock,
			MinStock:          p.MinStock,
			TargetStock:       target,
			SuggestedOrderQty: suggested,
		})
	}

	// 3. Ordenar: mayor déficit relativo (actual / mínimo) primero; empate por déficit absoluto.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ra := a.CurrentStock.Div(a.MinStock)
		rb := b.CurrentStock.Div(b.MinStock)
		if !ra.Equal(rb) {
			return ra.LessThan(rb)
		}
		return a.MinStock.Sub(a.CurrentStock).GreaterThan(b.MinStock.Sub(b.CurrentStock))
	})

	// 4. Prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
