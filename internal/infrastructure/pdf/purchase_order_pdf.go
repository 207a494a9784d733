// Package pdf genera la versión imprimible de una orden de compra.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre de la app     │  N° Orden + Fecha + Estado   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROVEEDOR: Nombre + NIT + contacto                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Cant. | Recibido | C.Unit | Total   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuesto 13 % / TOTAL                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/almacen-api/internal/application/purchasing"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ purchasing.PurchaseOrderPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa purchasing.PurchaseOrderPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	author  string
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. author aparece en el encabezado y metadatos.
func NewMarotoPDFGenerator(author string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{author: author, printer: message.NewPrinter(language.Spanish)}
}

// GeneratePurchaseOrderPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GeneratePurchaseOrderPDF(_ context.Context, doc purchasing.PurchaseOrderDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Orden de compra %d", doc.Order.ID), true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(doc.Order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(supplierRow(doc.Supplier))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableDetailRows(doc.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(doc.Order))
	if doc.Order.Notes != "" {
		m.AddRows(row.New(12).Add(col.New(12).Add(
			text.New("Notas: "+doc.Order.Notes, props.Text{Size: 8, Top: 3, Color: colorGray}),
		)))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(o *entity.PurchaseOrder) core.Row {
	fecha := o.IssuedAt.Format("02/01/2006")
	esperada := "—"
	if o.ExpectedAt != nil {
		esperada = o.ExpectedAt.Format("02/01/2006")
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New(g.author, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Gestión de almacén", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("ORDEN DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("OC-%d", o.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New("Emisión: "+fecha+"   Esperada: "+esperada, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New("Estado: "+string(o.Status), props.Text{
				Size: 8, Align: align.Right, Top: 17, Color: colorGray,
			}),
		),
	)
}

func supplierRow(s *entity.Supplier) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PROVEEDOR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(s.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("NIT: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(s.TaxID, "—"),
				nonEmpty(s.Email, "—"),
				nonEmpty(s.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Cant.", 1, align.Right),
		h("Recibido", 1, align.Right),
		h("Costo unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func (g *MarotoPDFGenerator) tableDetailRows(lines []purchasing.PurchaseOrderLineForPDF) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
		}
		result = append(result, row.New(7).Add(
			cell(l.SKU, 2, align.Left),
			cell(l.ProductName, 4, align.Left),
			cell(g.quantity(l.RequestedQty), 1, align.Right),
			cell(g.quantity(l.ReceivedQty), 1, align.Right),
			cell("$"+g.money(l.UnitCost), 2, align.Right),
			cell("$"+g.money(l.RequestedQty.Mul(l.UnitCost)), 2, align.Right),
		))
	}
	return result
}

func (g *MarotoPDFGenerator) totalsRow(o *entity.PurchaseOrder) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	tasa := entity.PurchaseOrderTaxRate.Mul(decimal.NewFromInt(100)).String()
	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label("Impuesto "+tasa+" %:", 7),
			label("TOTAL:", 13),
		),
		col.New(3).Add(
			value("$"+g.money(o.Subtotal), 1),
			value("$"+g.money(o.Tax), 7),
			value("$"+g.money(o.Total), 13),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea con separadores del locale y dos decimales. Ej: 1234567.891 → "1.234.567,89".
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(),
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// quantity formatea cantidades sin ceros decimales sobrantes.
func (g *MarotoPDFGenerator) quantity(d decimal.Decimal) string {
	return g.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(4)))
}
