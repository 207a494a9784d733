package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func copyInt(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

// ─── Reservas ────────────────────────────────────────────────────────────────

type reservationRepo struct{ v *view }

func (r *reservationRepo) Create(_ context.Context, res *entity.Reservation) error {
	return r.v.do("reservations.Create", func(st *state) error {
		res.ID = st.nextID()
		header := *res
		header.Details = nil
		st.reservations[res.ID] = header
		for i := range res.Details {
			d := &res.Details[i]
			d.ID = st.nextID()
			d.ReservationID = res.ID
			stored := *d
			stored.ApprovedPrimary = copyDecimal(d.ApprovedPrimary)
			st.resDetails[d.ID] = stored
		}
		return nil
	})
}

func loadReservation(st *state, id int64) *entity.Reservation {
	h, ok := st.reservations[id]
	if !ok {
		return nil
	}
	for _, d := range sortedValues(st.resDetails) {
		if d.ReservationID == id {
			d.ApprovedPrimary = copyDecimal(d.ApprovedPrimary)
			h.Details = append(h.Details, d)
		}
	}
	h.ProcessorID = copyInt(h.ProcessorID)
	return &h
}

func (r *reservationRepo) GetWithDetails(_ context.Context, id int64) (*entity.Reservation, error) {
	var out *entity.Reservation
	err := r.v.do("reservations.GetWithDetails", func(st *state) error {
		out = loadReservation(st, id)
		return nil
	})
	return out, err
}

func (r *reservationRepo) GetForUpdate(_ context.Context, id int64) (*entity.Reservation, error) {
	var out *entity.Reservation
	err := r.v.do("reservations.GetForUpdate", func(st *state) error {
		out = loadReservation(st, id)
		return nil
	})
	return out, err
}

func (r *reservationRepo) UpdateHeader(_ context.Context, res *entity.Reservation) error {
	return r.v.do("reservations.UpdateHeader", func(st *state) error {
		if _, ok := st.reservations[res.ID]; !ok {
			return domain.ErrNotFound
		}
		header := *res
		header.Details = nil
		header.ProcessorID = copyInt(res.ProcessorID)
		st.reservations[res.ID] = header
		return nil
	})
}

func (r *reservationRepo) UpdateDetail(_ context.Context, d *entity.ReservationDetail) error {
	return r.v.do("reservations.UpdateDetail", func(st *state) error {
		cur, ok := st.resDetails[d.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.ApprovedPrimary = copyDecimal(d.ApprovedPrimary)
		cur.DeliveredPrimary = d.DeliveredPrimary
		st.resDetails[d.ID] = cur
		return nil
	})
}

func (r *reservationRepo) List(_ context.Context, f entity.ReservationFilter) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	err := r.v.do("reservations.List", func(st *state) error {
		var all []*entity.Reservation
		for _, h := range sortedValues(st.reservations) {
			if f.Status != nil && h.Status != *f.Status {
				continue
			}
			if f.SellerID != nil && h.SellerID != *f.SellerID {
				continue
			}
			all = append(all, loadReservation(st, h.ID))
		}
		sort.SliceStable(all, func(i, j int) bool { return all[i].ID > all[j].ID })
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

// ─── Conteos físicos ─────────────────────────────────────────────────────────

type countRepo struct{ v *view }

func (r *countRepo) Create(_ context.Context, c *entity.PhysicalCount) error {
	return r.v.do("counts.Create", func(st *state) error {
		c.ID = st.nextID()
		header := *c
		header.Details = nil
		st.counts[c.ID] = header
		return nil
	})
}

func loadCount(st *state, id int64) *entity.PhysicalCount {
	h, ok := st.counts[id]
	if !ok {
		return nil
	}
	for _, d := range sortedValues(st.countDetails) {
		if d.CountID == id {
			d.MovementID = copyInt(d.MovementID)
			h.Details = append(h.Details, d)
		}
	}
	return &h
}

func (r *countRepo) GetWithDetails(_ context.Context, id int64) (*entity.PhysicalCount, error) {
	var out *entity.PhysicalCount
	err := r.v.do("counts.GetWithDetails", func(st *state) error {
		out = loadCount(st, id)
		return nil
	})
	return out, err
}

func (r *countRepo) GetForUpdate(_ context.Context, id int64) (*entity.PhysicalCount, error) {
	var out *entity.PhysicalCount
	err := r.v.do("counts.GetForUpdate", func(st *state) error {
		out = loadCount(st, id)
		return nil
	})
	return out, err
}

func (r *countRepo) UpdateHeader(_ context.Context, c *entity.PhysicalCount) error {
	return r.v.do("counts.UpdateHeader", func(st *state) error {
		if _, ok := st.counts[c.ID]; !ok {
			return domain.ErrNotFound
		}
		header := *c
		header.Details = nil
		st.counts[c.ID] = header
		return nil
	})
}

func (r *countRepo) UpsertDetail(_ context.Context, d *entity.CountDetail) error {
	return r.v.do("counts.UpsertDetail", func(st *state) error {
		if d.CountedStock.IsNegative() || d.TheoreticalStock.IsNegative() {
			return domain.Errorf(domain.ErrInvalidInput, "stock contado y teórico deben ser >= 0")
		}
		for id, cur := range st.countDetails {
			if cur.CountID == d.CountID && cur.ProductID == d.ProductID {
				cur.TheoreticalStock = d.TheoreticalStock
				cur.CountedStock = d.CountedStock
				cur.Variance = d.Variance
				cur.UpdatedAt = d.UpdatedAt
				st.countDetails[id] = cur
				d.ID = id
				d.AdjustmentApplied = cur.AdjustmentApplied
				d.MovementID = copyInt(cur.MovementID)
				return nil
			}
		}
		d.ID = st.nextID()
		st.countDetails[d.ID] = *d
		return nil
	})
}

func (r *countRepo) MarkDetailAdjusted(_ context.Context, detailID, movementID int64) error {
	return r.v.do("counts.MarkDetailAdjusted", func(st *state) error {
		cur, ok := st.countDetails[detailID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.AdjustmentApplied = true
		cur.MovementID = &movementID
		cur.UpdatedAt = time.Now()
		st.countDetails[detailID] = cur
		return nil
	})
}

func (r *countRepo) List(_ context.Context, f entity.CountFilter) ([]*entity.PhysicalCount, error) {
	var out []*entity.PhysicalCount
	err := r.v.do("counts.List", func(st *state) error {
		var all []*entity.PhysicalCount
		for _, h := range sortedValues(st.counts) {
			if f.Status != nil && h.Status != *f.Status {
				continue
			}
			all = append(all, loadCount(st, h.ID))
		}
		sort.SliceStable(all, func(i, j int) bool { return all[i].ID > all[j].ID })
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

// ─── Órdenes de compra ───────────────────────────────────────────────────────

type purchaseOrderRepo struct{ v *view }

func (r *purchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	return r.v.do("purchaseOrders.Create", func(st *state) error {
		if _, ok := st.suppliers[o.SupplierID]; !ok {
			return domain.Errorf(domain.ErrInvalidInput, "proveedor %d inexistente", o.SupplierID)
		}
		o.ID = st.nextID()
		header := *o
		header.Details = nil
		st.orders[o.ID] = header
		for i := range o.Details {
			d := &o.Details[i]
			d.ID = st.nextID()
			d.OrderID = o.ID
			st.orderDetails[d.ID] = *d
		}
		return nil
	})
}

func loadOrder(st *state, id int64) *entity.PurchaseOrder {
	h, ok := st.orders[id]
	if !ok {
		return nil
	}
	for _, d := range sortedValues(st.orderDetails) {
		if d.OrderID == id {
			h.Details = append(h.Details, d)
		}
	}
	return &h
}

func (r *purchaseOrderRepo) GetWithDetails(_ context.Context, id int64) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.v.do("purchaseOrders.GetWithDetails", func(st *state) error {
		out = loadOrder(st, id)
		return nil
	})
	return out, err
}

func (r *purchaseOrderRepo) GetForUpdate(_ context.Context, id int64) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.v.do("purchaseOrders.GetForUpdate", func(st *state) error {
		out = loadOrder(st, id)
		return nil
	})
	return out, err
}

func (r *purchaseOrderRepo) UpdateStatus(_ context.Context, id int64, status entity.PurchaseOrderStatus) error {
	return r.v.do("purchaseOrders.UpdateStatus", func(st *state) error {
		h, ok := st.orders[id]
		if !ok {
			return domain.ErrNotFound
		}
		h.Status = status
		h.UpdatedAt = time.Now()
		st.orders[id] = h
		return nil
	})
}

func (r *purchaseOrderRepo) UpdateReceived(_ context.Context, detailID int64, received decimal.Decimal) error {
	return r.v.do("purchaseOrders.UpdateReceived", func(st *state) error {
		d, ok := st.orderDetails[detailID]
		if !ok {
			return domain.ErrNotFound
		}
		if received.GreaterThan(d.RequestedQty) {
			return domain.Errorf(domain.ErrInvalidInput, "cantidad_recibida no puede superar la pedida")
		}
		d.ReceivedQty = received
		st.orderDetails[detailID] = d
		return nil
	})
}

func (r *purchaseOrderRepo) List(_ context.Context, f entity.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	err := r.v.do("purchaseOrders.List", func(st *state) error {
		var all []*entity.PurchaseOrder
		for _, h := range sortedValues(st.orders) {
			if f.Status != nil && h.Status != *f.Status {
				continue
			}
			if f.SupplierID != nil && h.SupplierID != *f.SupplierID {
				continue
			}
			all = append(all, loadOrder(st, h.ID))
		}
		sort.SliceStable(all, func(i, j int) bool { return all[i].ID > all[j].ID })
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, err
}
