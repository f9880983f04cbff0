package tracking

import (
	"fmt"
	"time"

	"table-order-kiosk/internal/i18n"
	"table-order-kiosk/internal/model"
)

// TrackedOrder is an order plus its local countdown. PrepSeconds is the
// preparation budget the countdown is reseeded from when cooking starts.
type TrackedOrder struct {
	Order       model.Order
	PrepSeconds int
	Remaining   int
}

// View is the display form of a tracked order.
type View struct {
	Order            model.Order `json:"order"`
	RemainingSeconds int         `json:"remainingTimeSeconds"`
	Countdown        string      `json:"countdown"`
	StatusLabel      string      `json:"statusLabel"`
	ShowTimer        bool        `json:"showTimer"`
	Completed        bool        `json:"completed"`
}

// PrepSeconds is the order's preparation time, or the longest item
// preparation time (given in minutes) when the order carries none.
func PrepSeconds(o model.Order) int {
	if o.PreparationTime > 0 {
		return o.PreparationTime
	}
	longest := 0
	for _, line := range o.Items {
		if line.Item != nil && line.Item.PreparationTime > longest {
			longest = line.Item.PreparationTime
		}
	}
	return longest * 60
}

// InitialRemaining reconciles the countdown against wall clock: with a
// server start time the elapsed whole seconds are subtracted, never below 0.
func InitialRemaining(o model.Order, now time.Time) int {
	prep := PrepSeconds(o)
	if o.PreparationTime > 0 && o.StartTime != nil {
		elapsed := int(now.Sub(*o.StartTime) / time.Second)
		if elapsed < 0 {
			elapsed = 0
		}
		return max(0, o.PreparationTime-elapsed)
	}
	return prep
}

func Track(o model.Order, now time.Time) TrackedOrder {
	return TrackedOrder{
		Order:       o,
		PrepSeconds: PrepSeconds(o),
		Remaining:   InitialRemaining(o, now),
	}
}

func Load(orders []model.Order, now time.Time) []TrackedOrder {
	out := make([]TrackedOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, Track(o, now))
	}
	return out
}

// Tick applies one second to every order still owed by the kitchen.
// Delivered orders and exhausted countdowns are left as they are.
func Tick(orders []TrackedOrder) []TrackedOrder {
	out := make([]TrackedOrder, len(orders))
	for i, o := range orders {
		if o.Order.Status.Active() && o.Remaining > 0 {
			o.Remaining--
		}
		out[i] = o
	}
	return out
}

// ApplyCreated adds a pushed order. A repeated push for a known id replaces
// the existing entry instead of listing the order twice.
func ApplyCreated(orders []TrackedOrder, o model.Order, now time.Time) []TrackedOrder {
	tracked := Track(o, now)
	out := make([]TrackedOrder, 0, len(orders)+1)
	replaced := false
	for _, existing := range orders {
		if existing.Order.ID == o.ID {
			out = append(out, tracked)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, tracked)
	}
	return out
}

// ApplyStatusUpdated patches only the status of the matching order. Moving
// to preparing reseeds the countdown from the stored preparation time.
func ApplyStatusUpdated(orders []TrackedOrder, orderID int64, status model.OrderStatus) []TrackedOrder {
	out := make([]TrackedOrder, len(orders))
	for i, o := range orders {
		if o.Order.ID == orderID {
			o.Order.Status = status
			if status == model.OrderPreparing {
				o.Remaining = o.PrepSeconds
			}
		}
		out[i] = o
	}
	return out
}

func FormatCountdown(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

var statusKeys = map[model.OrderStatus]string{
	model.OrderNew:       "order.status.new",
	model.OrderPreparing: "order.status.preparing",
	model.OrderDelivered: "order.status.delivered",
}

// StatusLabel is the display label in lang; unknown statuses show raw.
func StatusLabel(status model.OrderStatus, lang i18n.Language) string {
	if key, ok := statusKeys[status]; ok {
		return i18n.T(lang, key)
	}
	return string(status)
}

// localize fills DisplayName on the order's items without touching the
// tracked copy.
func localize(o model.Order, lang i18n.Language) model.Order {
	if len(o.Items) == 0 {
		return o
	}
	items := make([]model.OrderItemDetail, len(o.Items))
	for i, line := range o.Items {
		if line.Item != nil {
			item := *line.Item
			item.DisplayName = i18n.Name(lang, item.Name, item.NameAr)
			line.Item = &item
		}
		items[i] = line
	}
	o.Items = items
	return o
}

func Views(orders []TrackedOrder, lang i18n.Language) []View {
	out := make([]View, 0, len(orders))
	for _, o := range orders {
		out = append(out, View{
			Order:            localize(o.Order, lang),
			RemainingSeconds: o.Remaining,
			Countdown:        FormatCountdown(o.Remaining),
			StatusLabel:      StatusLabel(o.Order.Status, lang),
			ShowTimer:        o.Order.Status.Active(),
			Completed:        o.Order.Status == model.OrderDelivered,
		})
	}
	return out
}
