package receipt

import (
	"bytes"
	"fmt"
	"time"

	"table-order-kiosk/internal/model"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

// Data is everything printed on a session receipt.
type Data struct {
	SessionID   int64
	TableID     int64
	Guests      int
	GeneratedAt time.Time
	Orders      []model.Order
	// Total is the server-reported session total; zero falls back to the
	// sum of order totals.
	Total decimal.Decimal
}

func (d Data) total() decimal.Decimal {
	if !d.Total.IsZero() {
		return d.Total
	}
	sum := decimal.Zero
	for _, o := range d.Orders {
		sum = sum.Add(o.TotalAmount)
	}
	return sum
}

func itemName(line model.OrderItemDetail) string {
	if line.Item != nil && line.Item.Name != "" {
		return line.Item.Name
	}
	return fmt.Sprintf("Item #%d", line.ItemID)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Render lays the session summary out as a single-column A4 PDF.
func Render(data Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetTitle(fmt.Sprintf("Session %d receipt", data.SessionID), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Session Summary", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Session #%d", data.SessionID), "", 1, "C", false, 0, "")
	if data.TableID > 0 {
		pdf.CellFormat(0, 5, fmt.Sprintf("Table %d", data.TableID), "", 1, "C", false, 0, "")
	}
	if data.Guests > 0 {
		pdf.CellFormat(0, 5, fmt.Sprintf("Guests: %d", data.Guests), "", 1, "C", false, 0, "")
	}
	if !data.GeneratedAt.IsZero() {
		pdf.CellFormat(0, 5, fmt.Sprintf("Printed: %s", data.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	}

	for _, order := range data.Orders {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Order #%d (%s)", order.ID, order.Status), "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, line := range order.Items {
			pdf.CellFormat(140, 5, fmt.Sprintf("%dx %s", line.Quantity, itemName(line)), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 5, money(line.LineTotal()), "", 1, "R", false, 0, "")
			if line.Notes != nil && *line.Notes != "" {
				pdf.MultiCell(0, 4, fmt.Sprintf("Notes: %s", *line.Notes), "", "L", false)
			}
		}
		if order.Notes != nil && *order.Notes != "" {
			pdf.MultiCell(0, 4, fmt.Sprintf("Order notes: %s", *order.Notes), "", "L", false)
		}
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("Order total: %s", money(order.TotalAmount)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Total: %s", money(data.total())), "T", 1, "R", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return out.Bytes(), nil
}
