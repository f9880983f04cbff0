package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"table-order-kiosk/internal/envelope"
	"table-order-kiosk/internal/model"

	"go.uber.org/zap"
)

const (
	EventCreateOrder        = "create-order"
	EventJoinSession        = "join-customer-session"
	EventLeaveSession       = "leave-customer-session"
	EventGetCustomerOrders  = "get-customer-orders"
	EventOrderCreated       = "customer-order-created"
	EventOrderStatusUpdated = "customer-order-status-updated"
)

// AckError is a request the server acknowledged with success=false.
type AckError struct {
	Event   string
	Message string
}

func (e *AckError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("realtime %s rejected", e.Event)
	}
	return fmt.Sprintf("realtime %s rejected: %s", e.Event, e.Message)
}

type ackResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func parseAck(event string, raw json.RawMessage) (json.RawMessage, error) {
	var resp ackResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &AckError{Event: event, Message: "malformed acknowledgement"}
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		return nil, &AckError{Event: event, Message: msg}
	}
	return resp.Data, nil
}

// OrderEvent is the payload of customer-order-created and
// customer-order-status-updated pushes.
type OrderEvent struct {
	Order model.Order `json:"order"`
}

// CreateOrder submits an order and waits at most the configured ack timeout,
// whatever deadline ctx already carries.
func (c *Conn) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.AckTimeout)
	defer cancel()

	raw, err := c.EmitWithAck(ctx, EventCreateOrder, req)
	if err != nil {
		return model.Order{}, err
	}
	data, err := parseAck(EventCreateOrder, raw)
	if err != nil {
		return model.Order{}, err
	}
	order, ok := envelope.DecodeObject[model.Order](envelope.Unwrap(data, "order"))
	if !ok {
		c.logger.Debug("create-order ack carried no order")
	}
	return order, nil
}

// GetCustomerOrders fetches the current order snapshot for a session.
func (c *Conn) GetCustomerOrders(ctx context.Context, sessionID int64) ([]model.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.AckTimeout)
	defer cancel()

	raw, err := c.EmitWithAck(ctx, EventGetCustomerOrders, sessionID)
	if err != nil {
		return nil, err
	}
	data, err := parseAck(EventGetCustomerOrders, raw)
	if err != nil {
		return nil, err
	}
	return envelope.DecodeList[model.Order](envelope.Unwrap(data, "orders")), nil
}

// JoinCustomerSession subscribes to the session's room. The membership is
// remembered and replayed after a reconnect.
func (c *Conn) JoinCustomerSession(sessionID int64) error {
	c.mu.Lock()
	c.rooms[sessionID] = struct{}{}
	c.mu.Unlock()

	if err := c.Emit(EventJoinSession, sessionID); err != nil {
		c.logger.Warn("join session deferred until reconnect", zap.Int64("session_id", sessionID), zap.Error(err))
		return err
	}
	return nil
}

func (c *Conn) LeaveCustomerSession(sessionID int64) error {
	c.mu.Lock()
	delete(c.rooms, sessionID)
	c.mu.Unlock()
	return c.Emit(EventLeaveSession, sessionID)
}

// Rooms lists the session rooms this connection is in.
func (c *Conn) Rooms() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int64, 0, len(c.rooms))
	for id := range c.rooms {
		out = append(out, id)
	}
	return out
}

// DecodeOrderEvent reads a push payload. Unreadable payloads report false.
func DecodeOrderEvent(data json.RawMessage) (OrderEvent, bool) {
	var ev OrderEvent
	if err := json.Unmarshal(data, &ev); err != nil || ev.Order.ID == 0 {
		return OrderEvent{}, false
	}
	return ev, true
}
