package api

import (
	"context"
	"fmt"
	"net/http"

	"table-order-kiosk/internal/envelope"
	"table-order-kiosk/internal/model"
)

func (c *Client) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.Order, error) {
	raw, err := c.do(ctx, http.MethodPost, "/api/orders", req, "order")
	if err != nil {
		return model.Order{}, err
	}
	order, ok := envelope.DecodeObject[model.Order](raw)
	c.logShape("/api/orders", ok)
	return order, nil
}

func (c *Client) OrdersBySession(ctx context.Context, sessionID int64) ([]model.Order, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/session/%d", sessionID), nil, "orders")
	if err != nil {
		return nil, err
	}
	return envelope.DecodeList[model.Order](raw), nil
}

func (c *Client) Order(ctx context.Context, orderID int64) (model.Order, error) {
	path := fmt.Sprintf("/api/orders/%d", orderID)
	raw, err := c.do(ctx, http.MethodGet, path, nil, "order")
	if err != nil {
		return model.Order{}, err
	}
	order, ok := envelope.DecodeObject[model.Order](raw)
	c.logShape(path, ok)
	return order, nil
}

func (c *Client) SessionSummary(ctx context.Context, sessionID int64) (model.OrderSummary, error) {
	path := fmt.Sprintf("/api/orders/session/%d/summary", sessionID)
	raw, err := c.do(ctx, http.MethodGet, path, nil, "summary")
	if err != nil {
		return model.OrderSummary{}, err
	}
	summary, ok := envelope.DecodeObject[model.OrderSummary](raw)
	c.logShape(path, ok)
	if summary.SessionID == 0 {
		summary.SessionID = sessionID
	}
	return summary, nil
}
