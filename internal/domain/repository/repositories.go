package repository

// Repositories agrupa los puertos atados a una misma unidad de trabajo (pool o transacción).
type Repositories struct {
	Products       ProductRepository
	Units          UnitRepository
	Suppliers      SupplierRepository
	MovementTypes  MovementTypeRepository
	Movements      MovementRepository
	Reservations   ReservationRepository
	Counts         PhysicalCountRepository
	PurchaseOrders PurchaseOrderRepository
	Users          UserRepository
}
