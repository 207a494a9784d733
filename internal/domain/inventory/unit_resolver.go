package inventory

import (
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// QuantityScale decimales que admiten las columnas de cantidad (NUMERIC(18,4)).
const QuantityScale = 4

// FitsScale indica si q se puede guardar sin redondeo.
func FitsScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}

// ToPrimary convierte quantity expresada en unitID a la unidad primaria del producto.
// El resultado debe ser > 0; se usa al registrar movimientos, reservas y recepciones.
func ToPrimary(p *entity.Product, unitID int64, quantity decimal.Decimal) (decimal.Decimal, error) {
	q, err := convert(p, unitID, quantity)
	if err != nil {
		return decimal.Zero, err
	}
	if !q.IsPositive() {
		return decimal.Zero, domain.Errorf(domain.ErrInvalidQuantity,
			"la cantidad para %s debe ser mayor que cero (recibido %s)", p.SKU, q.String())
	}
	return q, nil
}

// CountedToPrimary igual que ToPrimary pero admite cero (conteo físico de un producto agotado).
func CountedToPrimary(p *entity.Product, unitID int64, quantity decimal.Decimal) (decimal.Decimal, error) {
	q, err := convert(p, unitID, quantity)
	if err != nil {
		return decimal.Zero, err
	}
	if q.IsNegative() {
		return decimal.Zero, domain.Errorf(domain.ErrInvalidQuantity,
			"la cantidad contada para %s no puede ser negativa (recibido %s)", p.SKU, q.String())
	}
	return q, nil
}

func convert(p *entity.Product, unitID int64, quantity decimal.Decimal) (decimal.Decimal, error) {
	var q decimal.Decimal
	switch {
	case unitID == p.PrimaryUnitID:
		q = quantity
	case p.HasAltUnit() && unitID == *p.AltUnitID:
		q = quantity.Mul(*p.AltUnitFactor)
	default:
		return decimal.Zero, domain.Errorf(domain.ErrInvalidUnitForProduct,
			"la unidad %d no es válida para el producto %s", unitID, p.SKU)
	}
	if !FitsScale(q) {
		return decimal.Zero, domain.Errorf(domain.ErrInvalidQuantity,
			"la cantidad para %s admite como máximo %d decimales en unidad primaria (resultado %s)",
			p.SKU, QuantityScale, q.String())
	}
	return q, nil
}

// ValidateUnits verifica las reglas de unidades de un producto:
// unidad primaria obligatoria; unidad alternativa y factor ambos o ninguno;
// factor positivo; alternativa distinta de la primaria.
func ValidateUnits(p *entity.Product) error {
	if p.PrimaryUnitID <= 0 {
		return domain.Errorf(domain.ErrInvalidInput, "la unidad primaria es obligatoria")
	}
	if (p.AltUnitID == nil) != (p.AltUnitFactor == nil) {
		return domain.Errorf(domain.ErrInvalidInput,
			"la unidad alternativa y su factor de conversión deben indicarse juntos")
	}
	if p.AltUnitID == nil {
		return nil
	}
	if *p.AltUnitID == p.PrimaryUnitID {
		return domain.Errorf(domain.ErrInvalidInput, "la unidad alternativa debe ser distinta de la primaria")
	}
	if !p.AltUnitFactor.IsPositive() {
		return domain.Errorf(domain.ErrInvalidInput, "el factor de conversión debe ser mayor que cero")
	}
	if !FitsScale(*p.AltUnitFactor) {
		return domain.Errorf(domain.ErrInvalidInput, "el factor de conversión admite como máximo %d decimales", QuantityScale)
	}
	return nil
}
