package tracking

import (
	"testing"
	"time"

	"table-order-kiosk/internal/i18n"
	"table-order-kiosk/internal/model"
)

func TestInitialRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	started := func(ago time.Duration) *time.Time {
		ts := now.Add(-ago)
		return &ts
	}

	cases := []struct {
		name     string
		order    model.Order
		expected int
	}{
		{
			name:     "late viewer sees reconciled time",
			order:    model.Order{Status: model.OrderPreparing, PreparationTime: 600, StartTime: started(120 * time.Second)},
			expected: 480,
		},
		{
			name:     "partial seconds are floored",
			order:    model.Order{Status: model.OrderNew, PreparationTime: 600, StartTime: started(120*time.Second + 900*time.Millisecond)},
			expected: 480,
		},
		{
			name:     "overdue never goes negative",
			order:    model.Order{Status: model.OrderPreparing, PreparationTime: 60, StartTime: started(10 * time.Minute)},
			expected: 0,
		},
		{
			name:     "no start time uses preparation time",
			order:    model.Order{Status: model.OrderNew, PreparationTime: 300},
			expected: 300,
		},
		{
			name: "falls back to the longest item time",
			order: model.Order{Status: model.OrderNew, Items: []model.OrderItemDetail{
				{Item: &model.MenuItem{PreparationTime: 5}},
				{Item: &model.MenuItem{PreparationTime: 12}},
				{},
			}},
			expected: 720,
		},
		{
			name:     "no timing metadata",
			order:    model.Order{Status: model.OrderNew},
			expected: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InitialRemaining(tc.order, now); got != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestTickDecrementsActiveOrdersOnly(t *testing.T) {
	orders := []TrackedOrder{
		{Order: model.Order{ID: 1, Status: model.OrderNew}, Remaining: 10},
		{Order: model.Order{ID: 2, Status: model.OrderPreparing}, Remaining: 1},
		{Order: model.Order{ID: 3, Status: model.OrderDelivered}, Remaining: 50},
		{Order: model.Order{ID: 4, Status: model.OrderPreparing}, Remaining: 0},
	}

	next := Tick(orders)
	want := []int{9, 0, 50, 0}
	for i, o := range next {
		if o.Remaining != want[i] {
			t.Fatalf("order %d: expected %d, got %d", o.Order.ID, want[i], o.Remaining)
		}
	}
	if orders[0].Remaining != 10 {
		t.Fatalf("tick mutated its input")
	}

	for i := 0; i < 100; i++ {
		next = Tick(next)
	}
	if next[2].Remaining != 50 {
		t.Fatalf("delivered order countdown moved: %d", next[2].Remaining)
	}
	if next[0].Remaining != 0 {
		t.Fatalf("expected countdown to stop at 0, got %d", next[0].Remaining)
	}
}

func TestApplyStatusUpdated(t *testing.T) {
	orders := []TrackedOrder{
		{Order: model.Order{ID: 1, Status: model.OrderNew, TotalAmount: mustDecimal(t, "25")}, PrepSeconds: 600, Remaining: 42},
		{Order: model.Order{ID: 2, Status: model.OrderNew}, PrepSeconds: 300, Remaining: 300},
	}

	t.Run("preparing reseeds countdown", func(t *testing.T) {
		next := ApplyStatusUpdated(orders, 1, model.OrderPreparing)
		if next[0].Order.Status != model.OrderPreparing || next[0].Remaining != 600 {
			t.Fatalf("unexpected order %+v", next[0])
		}
		if !next[0].Order.TotalAmount.Equal(orders[0].Order.TotalAmount) {
			t.Fatalf("status update touched other fields")
		}
	})

	t.Run("delivered keeps remaining", func(t *testing.T) {
		next := ApplyStatusUpdated(orders, 1, model.OrderDelivered)
		if next[0].Remaining != 42 {
			t.Fatalf("expected remaining to stay 42, got %d", next[0].Remaining)
		}
	})

	t.Run("unknown id is ignored", func(t *testing.T) {
		next := ApplyStatusUpdated(orders, 99, model.OrderDelivered)
		for i := range next {
			if next[i].Order.Status != orders[i].Order.Status {
				t.Fatalf("unexpected change %+v", next[i])
			}
		}
	})
}

func TestApplyCreatedReplacesKnownOrder(t *testing.T) {
	now := time.Now()
	orders := ApplyCreated(nil, model.Order{ID: 1, Status: model.OrderNew, PreparationTime: 60}, now)
	orders = ApplyCreated(orders, model.Order{ID: 2, Status: model.OrderNew}, now)
	orders = ApplyCreated(orders, model.Order{ID: 1, Status: model.OrderPreparing, PreparationTime: 90}, now)

	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].Order.ID != 1 || orders[0].Remaining != 90 {
		t.Fatalf("expected order 1 replaced in place, got %+v", orders[0])
	}
}

func TestFormatCountdown(t *testing.T) {
	cases := map[int]string{
		-5:  "0:00",
		0:   "0:00",
		9:   "0:09",
		60:  "1:00",
		480: "8:00",
		725: "12:05",
	}
	for seconds, expected := range cases {
		if got := FormatCountdown(seconds); got != expected {
			t.Fatalf("FormatCountdown(%d): expected %q, got %q", seconds, expected, got)
		}
	}
}

func TestViews(t *testing.T) {
	views := Views([]TrackedOrder{
		{Order: model.Order{ID: 1, Status: model.OrderPreparing}, Remaining: 61},
		{Order: model.Order{ID: 2, Status: model.OrderDelivered}},
		{Order: model.Order{ID: 3, Status: "cancelled"}},
	}, i18n.English)
	if views[0].Countdown != "1:01" || !views[0].ShowTimer || views[0].StatusLabel != "Preparing" {
		t.Fatalf("unexpected view %+v", views[0])
	}
	if !views[1].Completed || views[1].ShowTimer {
		t.Fatalf("expected delivered order marked complete, got %+v", views[1])
	}
	if views[2].StatusLabel != "cancelled" {
		t.Fatalf("expected raw label for unknown status, got %q", views[2].StatusLabel)
	}
}

func TestViewsInArabic(t *testing.T) {
	item := &model.MenuItem{ID: 5, Name: "Falafel", NameAr: "فلافل"}
	tracked := []TrackedOrder{{
		Order: model.Order{ID: 1, Status: model.OrderNew, Items: []model.OrderItemDetail{{ItemID: 5, Quantity: 2, Item: item}}},
	}}

	cases := []struct {
		lang  i18n.Language
		label string
		name  string
	}{
		{lang: i18n.English, label: "New", name: "Falafel"},
		{lang: i18n.Arabic, label: "جديد", name: "فلافل"},
	}
	for _, tc := range cases {
		t.Run(string(tc.lang), func(t *testing.T) {
			views := Views(tracked, tc.lang)
			if views[0].StatusLabel != tc.label {
				t.Fatalf("expected label %q, got %q", tc.label, views[0].StatusLabel)
			}
			if got := views[0].Order.Items[0].Item.DisplayName; got != tc.name {
				t.Fatalf("expected item name %q, got %q", tc.name, got)
			}
		})
	}
	if item.DisplayName != "" || tracked[0].Order.Items[0].Item != item {
		t.Fatalf("views must not modify the tracked order")
	}
}
