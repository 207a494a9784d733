package inventory_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	unidadID = int64(1)
	cajaID   = int64(2)
	otraID   = int64(9)
)

func productoConCaja() *entity.Product {
	alt := cajaID
	factor := decimal.NewFromInt(12)
	return &entity.Product{
		ID: 1, SKU: "LAP-001", PrimaryUnitID: unidadID,
		AltUnitID: &alt, AltUnitFactor: &factor,
	}
}

func TestToPrimary_UnidadPrimaria(t *testing.T) {
	q, err := inventory.ToPrimary(productoConCaja(), unidadID, decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(5)))
}

func TestToPrimary_UnidadAlternativa(t *testing.T) {
	// 2 cajas de 12 = 24 unidades
	q, err := inventory.ToPrimary(productoConCaja(), cajaID, decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(24)), "got %s", q)
}

func TestToPrimary_FraccionDeCaja(t *testing.T) {
	q, err := inventory.ToPrimary(productoConCaja(), cajaID, decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(6)))
}

func TestToPrimary_UnidadDesconocida(t *testing.T) {
	_, err := inventory.ToPrimary(productoConCaja(), otraID, decimal.NewFromInt(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidUnitForProduct))
	assert.Contains(t, err.Error(), "LAP-001")
}

func TestToPrimary_SinUnidadAlternativa(t *testing.T) {
	p := &entity.Product{ID: 2, SKU: "X", PrimaryUnitID: unidadID}
	_, err := inventory.ToPrimary(p, cajaID, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidUnitForProduct)
}

func TestToPrimary_CeroONegativo(t *testing.T) {
	for _, q := range []int64{0, -3} {
		_, err := inventory.ToPrimary(productoConCaja(), unidadID, decimal.NewFromInt(q))
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "cantidad %d", q)
	}
}

func TestToPrimary_MasDeCuatroDecimales(t *testing.T) {
	alt := cajaID
	factor := decimal.RequireFromString("0.3333")
	p := &entity.Product{ID: 3, SKU: "TIN-01", PrimaryUnitID: unidadID, AltUnitID: &alt, AltUnitFactor: &factor}

	// 0.5 × 0.3333 = 0.16665 no cabe en NUMERIC(18,4)
	_, err := inventory.ToPrimary(p, cajaID, decimal.RequireFromString("0.5"))
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Contains(t, err.Error(), "TIN-01")

	_, err = inventory.ToPrimary(p, unidadID, decimal.RequireFromString("1.00001"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	q, err := inventory.ToPrimary(p, cajaID, decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.RequireFromString("0.9999")))

	// ceros a la derecha no cuentan
	assert.True(t, inventory.FitsScale(decimal.RequireFromString("2.500000")))
}

func TestCountedToPrimary_AdmiteCero(t *testing.T) {
	q, err := inventory.CountedToPrimary(productoConCaja(), cajaID, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, q.IsZero())

	_, err = inventory.CountedToPrimary(productoConCaja(), unidadID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// ─── ValidateUnits ───────────────────────────────────────────────────────────

func TestValidateUnits(t *testing.T) {
	alt := cajaID
	same := unidadID
	factor := decimal.NewFromInt(12)
	zero := decimal.Zero
	fino := decimal.RequireFromString("0.33333")

	cases := []struct {
		name string
		p    entity.Product
		ok   bool
	}{
		{"solo primaria", entity.Product{PrimaryUnitID: unidadID}, true},
		{"con alternativa", entity.Product{PrimaryUnitID: unidadID, AltUnitID: &alt, AltUnitFactor: &factor}, true},
		{"sin primaria", entity.Product{}, false},
		{"alternativa sin factor", entity.Product{PrimaryUnitID: unidadID, AltUnitID: &alt}, false},
		{"factor sin alternativa", entity.Product{PrimaryUnitID: unidadID, AltUnitFactor: &factor}, false},
		{"alternativa igual a primaria", entity.Product{PrimaryUnitID: unidadID, AltUnitID: &same, AltUnitFactor: &factor}, false},
		{"factor cero", entity.Product{PrimaryUnitID: unidadID, AltUnitID: &alt, AltUnitFactor: &zero}, false},
		{"factor con cinco decimales", entity.Product{PrimaryUnitID: unidadID, AltUnitID: &alt, AltUnitFactor: &fino}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := inventory.ValidateUnits(&tc.p)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
