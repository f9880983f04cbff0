package services

import (
	"context"
	"errors"
	"sync"

	"table-order-kiosk/internal/model"
	"table-order-kiosk/internal/receipt"
	"table-order-kiosk/internal/storage"
	"table-order-kiosk/internal/tracking"

	"go.uber.org/zap"
)

var ErrRealtimeUnavailable = errors.New("live order tracking is not configured")

func (d *Diner) Orders(ctx context.Context) ([]model.Order, error) {
	info, err := d.ActiveSession()
	if err != nil {
		return nil, err
	}
	return d.api.OrdersBySession(ctx, info.SessionID)
}

func (d *Diner) Summary(ctx context.Context) (model.OrderSummary, error) {
	info, err := d.ActiveSession()
	if err != nil {
		return model.OrderSummary{}, err
	}
	return d.api.SessionSummary(ctx, info.SessionID)
}

type Receipt struct {
	SessionID int64  `json:"sessionId"`
	PDF       []byte `json:"-"`
	// URL is set when the receipt was uploaded to the object store.
	URL string `json:"url,omitempty"`
}

// Receipt renders the session summary as a PDF. The server totals are
// printed as reported.
func (d *Diner) Receipt(ctx context.Context) (Receipt, error) {
	info, err := d.ActiveSession()
	if err != nil {
		return Receipt{}, err
	}
	summary, err := d.api.SessionSummary(ctx, info.SessionID)
	if err != nil {
		return Receipt{}, err
	}
	orders := summary.Orders
	if len(orders) == 0 {
		orders, err = d.api.OrdersBySession(ctx, info.SessionID)
		if err != nil {
			return Receipt{}, err
		}
	}

	now := d.now()
	data := receipt.Data{
		SessionID:   info.SessionID,
		GeneratedAt: now,
		Orders:      orders,
		Total:       summary.TotalAmount,
	}
	if info.Session != nil {
		data.TableID = info.Session.TableID
		data.Guests = info.Session.NumberOfGuests
	}

	pdf, err := receipt.Render(data)
	if err != nil {
		return Receipt{}, err
	}
	out := Receipt{SessionID: info.SessionID, PDF: pdf}

	if d.receipts != nil {
		url, err := d.receipts.PutObject(ctx, storage.ReceiptKey(info.SessionID, now), pdf, "application/pdf")
		if err != nil {
			d.logger.Warn("receipt upload failed", zap.Int64("session_id", info.SessionID), zap.Error(err))
		} else {
			out.URL = url
		}
	}
	return out, nil
}

// WatchOrders opens live tracking for the active session and calls fn with
// every snapshot. Tracking runs while at least one watcher holds it; the
// returned release func ends this watch.
func (d *Diner) WatchOrders(ctx context.Context, fn func([]tracking.View)) ([]tracking.View, func(), error) {
	info, err := d.ActiveSession()
	if err != nil {
		return nil, nil, err
	}
	if d.rt == nil {
		return nil, nil, ErrRealtimeUnavailable
	}
	conn, err := d.rt.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	d.trackMu.Lock()
	if d.tracker == nil || d.trackerConn != conn {
		if d.tracker != nil {
			d.tracker.Close()
		}
		d.tracker = tracking.NewTracker(conn, d.trackingOpt)
		d.trackerConn = conn
		d.viewers = 0
	}
	tracker := d.tracker
	d.viewers++
	d.trackMu.Unlock()

	off := tracker.Subscribe(fn)
	if err := tracker.Open(ctx, info.SessionID); err != nil {
		d.logger.Warn("order tracking opened without snapshot", zap.Int64("session_id", info.SessionID), zap.Error(err))
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			off()
			d.trackMu.Lock()
			defer d.trackMu.Unlock()
			if d.tracker != tracker {
				return
			}
			d.viewers--
			if d.viewers <= 0 {
				d.viewers = 0
				tracker.Close()
			}
		})
	}
	return tracker.Snapshot(), release, nil
}

func (d *Diner) stopTracking() {
	d.trackMu.Lock()
	tracker := d.tracker
	d.trackMu.Unlock()
	if tracker != nil {
		tracker.Close()
	}
}
