package invoice

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/go-pdf/fpdf"
)

// PDFRenderer draws the invoice on A4 with the core fonts. The core fonts are
// Latin-1 only, so the currency is written as its code rather than a symbol.
type PDFRenderer struct {
	taxLabel string
}

func NewPDFRenderer(taxLabel string) *PDFRenderer {
	if taxLabel == "" {
		taxLabel = "Tax"
	}
	return &PDFRenderer{taxLabel: taxLabel}
}

func (r *PDFRenderer) ContentType() string { return "application/pdf" }

func (r *PDFRenderer) Render(w io.Writer, inv usecase.Invoice) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+strconv.FormatInt(inv.OrderID, 10), false)
	pdf.SetAutoPageBreak(true, 15)
	if !inv.CreatedAt.IsZero() {
		pdf.SetCreationDate(inv.CreatedAt)
	}
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	line := func(indent float64, s string) {
		pdf.SetX(pdf.GetX() + indent)
		pdf.CellFormat(0, 7, tr(s), "", 1, "L", false, 0, "")
	}
	line(0, fmt.Sprintf("Order ID: %d", inv.OrderID))
	line(0, "Name: "+inv.CustomerName)
	line(0, "Email: "+inv.Email)
	if inv.Paid {
		line(0, "Status: PAID")
	} else {
		line(0, "Status: UNPAID")
	}
	pdf.Ln(6)

	line(0, "Items:")
	for _, l := range inv.Lines {
		line(4, fmt.Sprintf("%s x%d  %s %s", l.ProductName, l.Quantity, inv.Currency, l.LineTotal))
		line(10, fmt.Sprintf("%s %s%%: %s %s", r.taxLabel, l.TaxPercent, inv.Currency, l.TaxAmount))
	}
	pdf.Ln(4)

	line(0, fmt.Sprintf("Subtotal: %s %s", inv.Currency, inv.Subtotal))
	line(0, fmt.Sprintf("%s: %s %s", r.taxLabel, inv.Currency, inv.Tax))
	pdf.SetFont("Helvetica", "B", 12)
	line(0, fmt.Sprintf("Total: %s %s", inv.Currency, inv.Total))

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render invoice %d: %w", inv.OrderID, err)
	}
	return pdf.Output(w)
}

var _ usecase.InvoiceRenderer = (*PDFRenderer)(nil)
