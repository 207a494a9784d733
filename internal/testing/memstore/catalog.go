package memstore

import (
	"context"
	"strings"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type productRepo struct{ v *view }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.do("products.Create", func(st *state) error {
		for _, existing := range st.products {
			if existing.SKU == p.SKU {
				return domain.Errorf(domain.ErrDuplicate, "el sku %s ya existe", p.SKU)
			}
		}
		p.ID = st.nextID()
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) get(op string, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(op, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *productRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	return r.get("products.GetByID", id)
}

func (r *productRepo) GetForUpdate(_ context.Context, id int64) (*entity.Product, error) {
	return r.get("products.GetForUpdate", id)
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do("products.GetBySKU", func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				out = &p
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.do("products.Update", func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		upd := *p
		upd.CurrentStock = cur.CurrentStock
		st.products[p.ID] = upd
		return nil
	})
}

func (r *productRepo) UpdateStock(_ context.Context, productID int64, stock decimal.Decimal) error {
	return r.v.do("products.UpdateStock", func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		if stock.IsNegative() {
			return domain.Errorf(domain.ErrInvalidInput, "stock_actual no puede ser negativo")
		}
		p.CurrentStock = stock
		st.products[productID] = p
		return nil
	})
}

func (r *productRepo) List(_ context.Context, f entity.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.do("products.List", func(st *state) error {
		search := strings.ToLower(f.Search)
		var all []*entity.Product
		for _, p := range sortedValues(st.products) {
			if f.OnlyActive && !p.Active {
				continue
			}
			if f.BelowMinimo && !p.BelowMinimum() {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.SKU), search) &&
				!strings.Contains(strings.ToLower(p.Name), search) {
				continue
			}
			all = append(all, &p)
		}
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

type unitRepo struct{ v *view }

func (r *unitRepo) GetByID(_ context.Context, id int64) (*entity.UnitOfMeasure, error) {
	var out *entity.UnitOfMeasure
	err := r.v.do("units.GetByID", func(st *state) error {
		if u, ok := st.units[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *unitRepo) List(_ context.Context) ([]*entity.UnitOfMeasure, error) {
	var out []*entity.UnitOfMeasure
	err := r.v.do("units.List", func(st *state) error {
		for _, u := range sortedValues(st.units) {
			out = append(out, &u)
		}
		return nil
	})
	return out, err
}

type supplierRepo struct{ v *view }

func (r *supplierRepo) GetByID(_ context.Context, id int64) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.v.do("suppliers.GetByID", func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

type userRepo struct{ v *view }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.v.do("users.Create", func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return domain.Errorf(domain.ErrDuplicate, "el email %s ya está registrado", u.Email)
			}
		}
		u.ID = st.nextID()
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	err := r.v.do("users.GetByID", func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.v.do("users.GetByEmail", func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				out = &u
			}
		}
		return nil
	})
	return out, err
}
