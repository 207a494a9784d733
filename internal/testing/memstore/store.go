// Package memstore implementa en memoria todos los puertos de repositorio, con transacciones
// copy-on-write: Run trabaja sobre una copia del estado y solo la publica si fn no devuelve error.
// Las transacciones se serializan con un único mutex, equivalente a bloquear todas las filas.
// Pensado para pruebas de casos de uso; no usar en producción.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Store estado compartido más fallos inyectados por operación.
type Store struct {
	mu    sync.Mutex
	data  *state
	fails map[string]*injected
}

type injected struct {
	skip int
	err  error
}

type state struct {
	seq          int64
	products     map[int64]entity.Product
	units        map[int64]entity.UnitOfMeasure
	suppliers    map[int64]entity.Supplier
	types        map[int64]entity.MovementType
	movements    map[int64]entity.Movement
	reservations map[int64]entity.Reservation
	resDetails   map[int64]entity.ReservationDetail
	counts       map[int64]entity.PhysicalCount
	countDetails map[int64]entity.CountDetail
	orders       map[int64]entity.PurchaseOrder
	orderDetails map[int64]entity.PurchaseOrderDetail
	users        map[int64]entity.User
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		data: &state{
			products:     map[int64]entity.Product{},
			units:        map[int64]entity.UnitOfMeasure{},
			suppliers:    map[int64]entity.Supplier{},
			types:        map[int64]entity.MovementType{},
			movements:    map[int64]entity.Movement{},
			reservations: map[int64]entity.Reservation{},
			resDetails:   map[int64]entity.ReservationDetail{},
			counts:       map[int64]entity.PhysicalCount{},
			countDetails: map[int64]entity.CountDetail{},
			orders:       map[int64]entity.PurchaseOrder{},
			orderDetails: map[int64]entity.PurchaseOrderDetail{},
			users:        map[int64]entity.User{},
		},
		fails: map[string]*injected{},
	}
}

func (st *state) clone() *state {
	return &state{
		seq:          st.seq,
		products:     cloneMap(st.products),
		units:        cloneMap(st.units),
		suppliers:    cloneMap(st.suppliers),
		types:        cloneMap(st.types),
		movements:    cloneMap(st.movements),
		reservations: cloneMap(st.reservations),
		resDetails:   cloneMap(st.resDetails),
		counts:       cloneMap(st.counts),
		countDetails: cloneMap(st.countDetails),
		orders:       cloneMap(st.orders),
		orderDetails: cloneMap(st.orderDetails),
		users:        cloneMap(st.users),
	}
}

func (st *state) nextID() int64 {
	st.seq++
	return st.seq
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// sortedValues devuelve los valores ordenados por ID ascendente.
func sortedValues[V any](m map[int64]V) []V {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// FailOn hace que la próxima llamada a op ("products.UpdateStock", "movements.Create", ...)
// devuelva err. Útil para probar el rollback.
func (s *Store) FailOn(op string, err error) {
	s.FailAfter(op, 0, err)
}

// FailAfter deja pasar skip llamadas a op y hace fallar la siguiente.
func (s *Store) FailAfter(op string, skip int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails[op] = &injected{skip: skip, err: err}
}

// failure consume el fallo inyectado para op. Requiere s.mu tomado.
func (s *Store) failure(op string) error {
	f, ok := s.fails[op]
	if !ok {
		return nil
	}
	if f.skip > 0 {
		f.skip--
		return nil
	}
	delete(s.fails, op)
	return f.err
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(ctx, (&view{s: s, tx: work}).repositories()); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Repos devuelve repositorios fuera de transacción (cada llamada es atómica por sí sola).
func (s *Store) Repos() repository.Repositories {
	return (&view{s: s}).repositories()
}

// Dashboard devuelve el repositorio de consultas del tablero.
func (s *Store) Dashboard() repository.DashboardRepository {
	return &dashboardRepo{v: &view{s: s}}
}

// view liga los repositorios a una transacción (tx != nil) o al estado publicado.
type view struct {
	s  *Store
	tx *state
}

// do ejecuta f sobre el estado correspondiente, comprobando antes el fallo inyectado para op.
func (v *view) do(op string, f func(st *state) error) error {
	if v.tx != nil {
		if err := v.s.failure(op); err != nil {
			return err
		}
		return f(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.failure(op); err != nil {
		return err
	}
	return f(v.s.data)
}

func (v *view) repositories() repository.Repositories {
	return repository.Repositories{
		Products:       &productRepo{v: v},
		Units:          &unitRepo{v: v},
		Suppliers:      &supplierRepo{v: v},
		MovementTypes:  &movementTypeRepo{v: v},
		Movements:      &movementRepo{v: v},
		Reservations:   &reservationRepo{v: v},
		Counts:         &countRepo{v: v},
		PurchaseOrders: &purchaseOrderRepo{v: v},
		Users:          &userRepo{v: v},
	}
}
