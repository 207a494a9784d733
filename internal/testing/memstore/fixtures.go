package memstore

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// Nombres de los tipos de movimiento que carga la migración inicial.
const (
	TypeEntradaCompra  = "Entrada por Compra"
	TypeSalidaReserva  = "Salida por Reserva"
	TypeAjustePositivo = "Ajuste Positivo"
	TypeAjusteNegativo = "Ajuste Negativo"
	TypeEntradaManual  = "Entrada Manual"
	TypeSalidaManual   = "Salida Manual"
	TypeInformativo    = "Informativo"
)

// Catalog datos de referencia mínimos para probar los flujos.
type Catalog struct {
	Unidad entity.UnitOfMeasure
	Caja   entity.UnitOfMeasure
	Types  map[string]entity.MovementType
}

// SeedCatalog carga unidades "unidad" y "caja" y los tipos de movimiento estándar.
func (s *Store) SeedCatalog() Catalog {
	c := Catalog{
		Unidad: s.AddUnit(entity.UnitOfMeasure{Name: "unidad", Abbreviation: "und"}),
		Caja:   s.AddUnit(entity.UnitOfMeasure{Name: "caja", Abbreviation: "cj"}),
		Types:  map[string]entity.MovementType{},
	}
	for _, t := range []entity.MovementType{
		{Name: TypeEntradaCompra, StockEffect: entity.EffectIncrease},
		{Name: TypeSalidaReserva, StockEffect: entity.EffectDecrease},
		{Name: TypeAjustePositivo, StockEffect: entity.EffectIncrease},
		{Name: TypeAjusteNegativo, StockEffect: entity.EffectDecrease},
		{Name: TypeEntradaManual, StockEffect: entity.EffectIncrease},
		{Name: TypeSalidaManual, StockEffect: entity.EffectDecrease},
		{Name: TypeInformativo, StockEffect: entity.EffectNone},
	} {
		c.Types[t.Name] = s.AddMovementType(t)
	}
	return c
}
