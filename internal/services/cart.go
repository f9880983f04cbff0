package services

import (
	"context"
	"errors"
	"fmt"

	"table-order-kiosk/internal/model"
	"table-order-kiosk/internal/queue"
	"table-order-kiosk/internal/state"
	"table-order-kiosk/internal/validation"

	"go.uber.org/zap"
)

type AddToCartInput struct {
	ItemID   int64  `json:"itemId" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"min=0,max=99"`
	Notes    string `json:"notes" validate:"max=500"`
}

func (d *Diner) Cart() state.Cart {
	return d.state.State().Cart
}

// AddToCart looks the item up on the backend so the cart line carries the
// current name and price.
func (d *Diner) AddToCart(ctx context.Context, in AddToCartInput) (state.Cart, error) {
	if err := validation.Struct(in); err != nil {
		return d.Cart(), err
	}
	item, err := d.api.Item(ctx, in.ItemID)
	if err != nil {
		return d.Cart(), err
	}
	if item.ID == 0 {
		item.ID = in.ItemID
	}
	next, _ := d.state.Dispatch(state.AddToCart(item, in.Quantity, in.Notes))
	return next.Cart, nil
}

func (d *Diner) RemoveFromCart(itemID int64) (state.Cart, error) {
	next, ok := d.state.Dispatch(state.RemoveFromCart(itemID))
	if !ok {
		return next.Cart, ErrNotInCart
	}
	return next.Cart, nil
}

// UpdateQuantity rejects quantities below 1 and leaves the line unchanged.
func (d *Diner) UpdateQuantity(itemID int64, quantity int) (state.Cart, error) {
	if quantity < 1 {
		return d.Cart(), &validation.Error{Field: "quantity", Message: "must be at least 1"}
	}
	next, ok := d.state.Dispatch(state.UpdateQuantity(itemID, quantity))
	if !ok {
		return next.Cart, ErrNotInCart
	}
	return next.Cart, nil
}

func (d *Diner) UpdateItemNotes(itemID int64, notes string) (state.Cart, error) {
	if len(notes) > 500 {
		return d.Cart(), &validation.Error{Field: "notes", Message: "must be at most 500"}
	}
	next, ok := d.state.Dispatch(state.UpdateItemNotes(itemID, notes))
	if !ok {
		return next.Cart, ErrNotInCart
	}
	return next.Cart, nil
}

func (d *Diner) SetOrderNotes(notes string) (state.Cart, error) {
	if len(notes) > 1000 {
		return d.Cart(), &validation.Error{Field: "notes", Message: "must be at most 1000"}
	}
	next, _ := d.state.Dispatch(state.SetOrderNotes(notes))
	return next.Cart, nil
}

func (d *Diner) ClearCart() state.Cart {
	next, _ := d.state.Dispatch(state.ClearCart())
	return next.Cart
}

// SubmitOrder sends the cart to the kitchen. The realtime channel is used
// when it can be reached, otherwise the HTTP API. A request that fails or
// times out is never resent on the other channel. Once the order is
// accepted only the submitted lines leave the cart; one submission runs at
// a time.
func (d *Diner) SubmitOrder(ctx context.Context) (model.Order, error) {
	if !d.beginSubmit() {
		return model.Order{}, ErrSubmitInProgress
	}
	defer d.endSubmit()

	info, err := d.ActiveSession()
	if err != nil {
		return model.Order{}, err
	}
	cart := d.Cart()
	if cart.Empty() {
		return model.Order{}, ErrEmptyCart
	}
	req := cart.Payload(info.SessionID)
	if err := validation.Struct(req); err != nil {
		return model.Order{}, err
	}

	order, via, err := d.createOrder(ctx, req)
	if err != nil {
		d.logger.Warn("order submission failed",
			zap.Int64("session_id", info.SessionID),
			zap.String("via", via),
			zap.Error(err),
		)
		return model.Order{}, err
	}

	d.state.Dispatch(state.SubmittedCart(cart))
	d.logger.Info("order submitted",
		zap.Int64("session_id", info.SessionID),
		zap.Int64("order_id", order.ID),
		zap.String("via", via),
	)
	d.events.Publish(ctx, queue.NewEvent(queue.OrderSubmitted, info.SessionID, map[string]any{
		"orderId":     order.ID,
		"itemCount":   cart.Count(),
		"totalAmount": order.TotalAmount,
	}))
	return order, nil
}

func (d *Diner) beginSubmit() bool {
	d.submitMu.Lock()
	defer d.submitMu.Unlock()
	if d.submitting {
		return false
	}
	d.submitting = true
	return true
}

func (d *Diner) endSubmit() {
	d.submitMu.Lock()
	d.submitting = false
	d.submitMu.Unlock()
}

func (d *Diner) createOrder(ctx context.Context, req model.CreateOrderRequest) (model.Order, string, error) {
	if d.rt != nil {
		conn, err := d.rt.Connect(ctx)
		if err == nil && conn.Connected() {
			order, err := conn.CreateOrder(ctx, req)
			if err != nil {
				return model.Order{}, "realtime", fmt.Errorf("create order: %w", err)
			}
			return order, "realtime", nil
		}
		if err == nil {
			err = errors.New("reconnecting")
		}
		d.logger.Info("realtime unavailable; submitting over http", zap.Error(err))
	}

	order, err := d.api.CreateOrder(ctx, req)
	if err != nil {
		return model.Order{}, "http", err
	}
	return order, "http", nil
}
