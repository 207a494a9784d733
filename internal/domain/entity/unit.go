package entity

// UnitOfMeasure unidad de medida (dato de referencia).
type UnitOfMeasure struct {
	ID           int64
	Name         string // ej: "unidad", "caja"
	Abbreviation string
}

// Supplier proveedor (dato de referencia, solo lectura para el núcleo).
type Supplier struct {
	ID     int64
	Name   string
	TaxID  string
	Email  string
	Phone  string
	Active bool
}
