package memstore

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// Helpers de carga directa para pruebas. Asignan ID y devuelven la entidad guardada.

func (s *Store) AddUnit(u entity.UnitOfMeasure) entity.UnitOfMeasure {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.data.nextID()
	s.data.units[u.ID] = u
	return u
}

func (s *Store) AddSupplier(sup entity.Supplier) entity.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()
	sup.ID = s.data.nextID()
	s.data.suppliers[sup.ID] = sup
	return sup
}

func (s *Store) AddMovementType(t entity.MovementType) entity.MovementType {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.data.nextID()
	s.data.types[t.ID] = t
	return t
}

// AddProduct guarda el producto tal cual, incluido CurrentStock (estado inicial de la prueba).
func (s *Store) AddProduct(p entity.Product) entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.data.nextID()
	s.data.products[p.ID] = p
	return p
}

func (s *Store) AddUser(u entity.User) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.data.nextID()
	s.data.users[u.ID] = u
	return u
}

// Product lee el estado publicado del producto (cero si no existe).
func (s *Store) Product(id int64) entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.products[id]
}

// Movements devuelve todos los movimientos publicados en orden de creación.
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.data.movements)
}
