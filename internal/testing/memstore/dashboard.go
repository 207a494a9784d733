package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

type dashboardRepo struct{ v *view }

func (r *dashboardRepo) CountProducts(_ context.Context) (int, error) {
	n := 0
	err := r.v.do("dashboard.CountProducts", func(st *state) error {
		for _, p := range st.products {
			if p.Active {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *dashboardRepo) CountProductsBelowMinimum(_ context.Context) (int, error) {
	n := 0
	err := r.v.do("dashboard.CountProductsBelowMinimum", func(st *state) error {
		for _, p := range st.products {
			if p.Active && p.BelowMinimum() {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *dashboardRepo) CountReservationsByStatus(_ context.Context, status entity.ReservationStatus) (int, error) {
	n := 0
	err := r.v.do("dashboard.CountReservationsByStatus", func(st *state) error {
		for _, h := range st.reservations {
			if h.Status == status {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *dashboardRepo) CountCountsByStatus(_ context.Context, statuses ...entity.CountStatus) (int, error) {
	n := 0
	err := r.v.do("dashboard.CountCountsByStatus", func(st *state) error {
		for _, h := range st.counts {
			for _, s := range statuses {
				if h.Status == s {
					n++
				}
			}
		}
		return nil
	})
	return n, err
}

func (r *dashboardRepo) CountPurchaseOrdersByStatus(_ context.Context, statuses ...entity.PurchaseOrderStatus) (int, error) {
	n := 0
	err := r.v.do("dashboard.CountPurchaseOrdersByStatus", func(st *state) error {
		for _, h := range st.orders {
			for _, s := range statuses {
				if h.Status == s {
					n++
				}
			}
		}
		return nil
	})
	return n, err
}

func (r *dashboardRepo) CountMovementsSince(_ context.Context, since time.Time) (int, error) {
	n := 0
	err := r.v.do("dashboard.CountMovementsSince", func(st *state) error {
		for _, m := range st.movements {
			if !m.CreatedAt.Before(since) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *dashboardRepo) LowStockProducts(_ context.Context, limit int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.do("dashboard.LowStockProducts", func(st *state) error {
		var low []*entity.Product
		for _, p := range sortedValues(st.products) {
			if p.Active && p.BelowMinimum() {
				low = append(low, &p)
			}
		}
		sort.SliceStable(low, func(i, j int) bool {
			return low[i].MinStock.Sub(low[i].CurrentStock).GreaterThan(low[j].MinStock.Sub(low[j].CurrentStock))
		})
		out = page(low, limit, 0)
		return nil
	})
	return out, err
}
