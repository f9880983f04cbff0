package queue

import (
	"context"
	"fmt"
	"time"

	"table-order-kiosk/internal/logger"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	DefaultEventsExchange = "kiosk.events"
	// EventsQueue keeps diner events until the restaurant side drains them.
	EventsQueue = "kiosk.events.retained"

	SessionStarted = "session.started"
	SessionEnded   = "session.ended"
	OrderSubmitted = "order.submitted"

	eventTTL       = 7 * 24 * time.Hour
	publishTimeout = 3 * time.Second
)

type Event struct {
	EventID    string    `json:"eventId"`
	Type       string    `json:"type"`
	SessionID  int64     `json:"sessionId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

func NewEvent(eventType string, sessionID int64, payload any) Event {
	return Event{
		EventID:    uuid.NewString(),
		Type:       eventType,
		SessionID:  sessionID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// EnsureEventsTopology declares the topic exchange and the retained queue
// bound to every diner event.
func EnsureEventsTopology(qc *Client, exchange string) error {
	if qc == nil {
		return nil
	}
	if err := qc.EnsureExchange(exchange); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if _, err := qc.EnsureQueue(EventsQueue, amqp.Table{"x-message-ttl": eventTTL.Milliseconds()}); err != nil {
		return fmt.Errorf("declare queue %s: %w", EventsQueue, err)
	}
	for _, key := range []string{"session.#", "order.#"} {
		if err := qc.BindQueue(EventsQueue, exchange, key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Publisher sends diner events. Publishing never blocks a diner flow on a
// broker problem; failures are logged.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type jsonPublisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, payload any) error
}

type EventPublisher struct {
	pub      jsonPublisher
	exchange string
	logger   *zap.Logger
}

func NewEventPublisher(pub jsonPublisher, exchange string, log *zap.Logger) *EventPublisher {
	if exchange == "" {
		exchange = DefaultEventsExchange
	}
	return &EventPublisher{pub: pub, exchange: exchange, logger: logger.OrNop(log)}
}

func (p *EventPublisher) Publish(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.pub.PublishJSON(ctx, p.exchange, ev.Type, ev); err != nil {
		p.logger.Warn("diner event publish failed",
			zap.String("type", ev.Type),
			zap.Int64("session_id", ev.SessionID),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("diner event published", zap.String("type", ev.Type), zap.String("event_id", ev.EventID))
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
