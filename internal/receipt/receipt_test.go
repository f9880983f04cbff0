package receipt

import (
	"bytes"
	"testing"
	"time"

	"table-order-kiosk/internal/model"

	"github.com/shopspring/decimal"
)

func TestRenderProducesPDF(t *testing.T) {
	notes := "no ice"
	data := Data{
		SessionID:   7,
		TableID:     3,
		Guests:      2,
		GeneratedAt: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
		Orders: []model.Order{{
			ID:          11,
			Status:      model.OrderDelivered,
			TotalAmount: decimal.RequireFromString("30"),
			Items: []model.OrderItemDetail{
				{ItemID: 1, Quantity: 2, Price: decimal.RequireFromString("12.5"), Item: &model.MenuItem{Name: "Shawarma"}},
				{ItemID: 2, Quantity: 1, Subtotal: decimal.RequireFromString("5"), Notes: &notes},
			},
		}},
	}

	out, err := Render(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected a PDF document")
	}
}

func TestTotalFallsBackToOrderSum(t *testing.T) {
	data := Data{Orders: []model.Order{
		{TotalAmount: decimal.RequireFromString("10.25")},
		{TotalAmount: decimal.RequireFromString("4.75")},
	}}
	if got := data.total(); !got.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("expected 15, got %s", got)
	}

	data.Total = decimal.RequireFromString("99")
	if got := data.total(); !got.Equal(decimal.RequireFromString("99")) {
		t.Fatalf("expected server total 99, got %s", got)
	}
}

func TestItemNameFallback(t *testing.T) {
	if got := itemName(model.OrderItemDetail{ItemID: 4}); got != "Item #4" {
		t.Fatalf("unexpected name %q", got)
	}
}
