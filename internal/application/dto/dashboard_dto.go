package dto

// DashboardSummaryDTO respuesta de GET /api/dashboard/resumen.
type DashboardSummaryDTO struct {
	TotalProducts       int `json:"total_productos"`
	BelowMinimum        int `json:"productos_bajo_minimo"`
	PendingReservations int `json:"reservas_pendientes"`
	OpenCounts          int `json:"conteos_abiertos"`
	OpenPurchaseOrders  int `json:"ordenes_abiertas"`
	MovementsToday      int `json:"movimientos_hoy"`

	// Top 5 productos con mayor déficit bajo el mínimo
	LowStock []ProductResponse `json:"bajo_minimo"`

	DateLabel string `json:"fecha"` // ej: "19 de octubre de 2026"
}
