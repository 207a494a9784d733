package memstore

import (
	"context"
	"sort"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

type movementTypeRepo struct{ v *view }

func (r *movementTypeRepo) GetByID(_ context.Context, id int64) (*entity.MovementType, error) {
	var out *entity.MovementType
	err := r.v.do("movementTypes.GetByID", func(st *state) error {
		if t, ok := st.types[id]; ok {
			out = &t
		}
		return nil
	})
	return out, err
}

func (r *movementTypeRepo) GetByName(_ context.Context, name string) (*entity.MovementType, error) {
	var out *entity.MovementType
	err := r.v.do("movementTypes.GetByName", func(st *state) error {
		for _, t := range st.types {
			if t.Name == name {
				out = &t
			}
		}
		return nil
	})
	return out, err
}

func (r *movementTypeRepo) List(_ context.Context) ([]*entity.MovementType, error) {
	var out []*entity.MovementType
	err := r.v.do("movementTypes.List", func(st *state) error {
		for _, t := range sortedValues(st.types) {
			out = append(out, &t)
		}
		return nil
	})
	return out, err
}

type movementRepo struct{ v *view }

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.v.do("movements.Create", func(st *state) error {
		if _, ok := st.products[m.ProductID]; !ok {
			return domain.Errorf(domain.ErrInvalidInput, "producto %d inexistente", m.ProductID)
		}
		m.ID = st.nextID()
		st.movements[m.ID] = *m
		return nil
	})
}

func (r *movementRepo) GetByID(_ context.Context, id int64) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.v.do("movements.GetByID", func(st *state) error {
		if m, ok := st.movements[id]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.v.do("movements.List", func(st *state) error {
		all := sortedValues(st.movements)
		sort.SliceStable(all, func(i, j int) bool { return all[i].ID > all[j].ID })
		var matched []*entity.Movement
		for _, m := range all {
			switch {
			case f.ProductID != nil && m.ProductID != *f.ProductID,
				f.MovementTypeID != nil && m.MovementTypeID != *f.MovementTypeID,
				f.UserID != nil && m.UserID != *f.UserID,
				f.From != nil && m.CreatedAt.Before(*f.From),
				f.To != nil && m.CreatedAt.After(*f.To):
				continue
			}
			matched = append(matched, &m)
		}
		out = page(matched, f.Limit, f.Offset)
		return nil
	})
	return out, err
}
