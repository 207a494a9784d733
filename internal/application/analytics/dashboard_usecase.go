// Package analytics contiene el resumen del tablero de inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"golang.org/x/sync/errgroup"
)

const dashboardLowStockTop = 5 // productos bajo mínimo en el widget del dashboard

// DashboardUseCase genera el resumen del día.
//
// Fuente de datos: DashboardRepository (consultas read-only).
type DashboardUseCase struct {
	repo repository.DashboardRepository
	now  func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(repo repository.DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo, now: time.Now}
}

// GetSummary ejecuta las consultas en paralelo; la primera que falle cancela el resto.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var (
		out      dto.DashboardSummaryDTO
		lowStock []*entity.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalProducts, err = uc.repo.CountProducts(gctx)
		return wrap("total productos", err)
	})
	g.Go(func() (err error) {
		out.BelowMinimum, err = uc.repo.CountProductsBelowMinimum(gctx)
		return wrap("bajo mínimo", err)
	})
	g.Go(func() (err error) {
		out.PendingReservations, err = uc.repo.CountReservationsByStatus(gctx, entity.ReservationPending)
		return wrap("reservas pendientes", err)
	})
	g.Go(func() (err error) {
		out.OpenCounts, err = uc.repo.CountCountsByStatus(gctx, entity.CountStarted, entity.CountInProgress)
		return wrap("conteos abiertos", err)
	})
	g.Go(func() (err error) {
		out.OpenPurchaseOrders, err = uc.repo.CountPurchaseOrdersByStatus(gctx,
			entity.PurchaseOrderSent, entity.PurchaseOrderPartiallyReceived)
		return wrap("órdenes abiertas", err)
	})
	g.Go(func() (err error) {
		out.MovementsToday, err = uc.repo.CountMovementsSince(gctx, todayStart)
		return wrap("movimientos de hoy", err)
	})
	g.Go(func() (err error) {
		lowStock, err = uc.repo.LowStockProducts(gctx, dashboardLowStockTop)
		return wrap("top bajo mínimo", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.LowStock = make([]dto.ProductResponse, 0, len(lowStock))
	for _, p := range lowStock {
		out.LowStock = append(out.LowStock, dto.ProductResponse{
			ID:            p.ID,
			SKU:           p.SKU,
			Name:          p.Name,
			CurrentStock:  p.CurrentStock,
			MinStock:      p.MinStock,
			MaxStock:      p.MaxStock,
			PrimaryUnitID: p.PrimaryUnitID,
			BelowMinimum:  true,
			Active:        p.Active,
		})
	}
	out.DateLabel = dayLabel(now)
	return &out, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard: %s: %w", what, err)
	}
	return nil
}

// dayLabel devuelve una etiqueta legible del día, ej: "19 de octubre de 2026".
func dayLabel(t time.Time) string {
	months := [...]string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}
