package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"campusnet/pkg/metrics"
	"campusnet/pkg/trace"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	EXCHANGE           = "realtime-events"
	ROUTING_KEY_PREFIX = "realtime."
)

// Envelope is the broker message for one event addressed to one user.
type Envelope struct {
	UserID  string            `json:"user_id"`
	Event   string            `json:"event"`
	Payload json.RawMessage   `json:"payload"`
	Span    trace.SpanContext `json:"span_context"`
}

func RoutingKey(userID string) string {
	return ROUTING_KEY_PREFIX + userID
}

func DeclareExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(EXCHANGE, "topic", false, false, false, false, nil)
}

// Publisher sends events to whichever process holds the receiver's session.
type Publisher struct {
	mu sync.Mutex
	ch *amqp.Channel
}

func NewPublisher(ch *amqp.Channel) (*Publisher, error) {
	if err := DeclareExchange(ch); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Notify(ctx context.Context, userID string, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(Envelope{
		UserID:  userID,
		Event:   event,
		Payload: data,
		Span:    trace.FromContext(ctx),
	})
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, EXCHANGE, RoutingKey(userID), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Discard drops every event. It stands in for the publisher when no broker
// is configured.
type Discard struct {
	Logger *slog.Logger
}

func (d Discard) Notify(ctx context.Context, userID string, event string, payload interface{}) error {
	if d.Logger != nil {
		d.Logger.Debug("no broker configured, dropping notification", "user_id", userID, "event", event)
	}
	return nil
}

// Consume binds an exclusive queue to every realtime routing key and
// delivers the events to the local registry until ctx is done or the
// channel closes.
func Consume(ctx context.Context, ch *amqp.Channel, registry *Registry, logger *slog.Logger) error {
	if err := DeclareExchange(ch); err != nil {
		logger.Error("error declaring exchange for rabbitmq", "msg", err.Error())
		return err
	}
	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		logger.Error("error declaring queue for rabbitmq", "msg", err.Error())
		return err
	}
	if err = ch.QueueBind(queue.Name, ROUTING_KEY_PREFIX+"#", EXCHANGE, false, nil); err != nil {
		logger.Error("error binding queue for rabbitmq", "msg", err.Error())
		return err
	}
	msgs, err := ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		logger.Error("error consuming queue", "msg", err.Error())
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return amqp.ErrClosed
			}
			metrics.ReceivedNotifications.Inc()
			if err := Deliver(ctx, registry, msg.Body); err != nil {
				logger.Debug("error delivering realtime event", "routing_key", msg.RoutingKey, "msg", err.Error())
			}
		}
	}
}

// Deliver decodes one envelope and pushes it to the registry.
func Deliver(ctx context.Context, registry *Registry, body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return err
	}
	ctx = trace.WithRemote(ctx, env.Span)
	oteltrace.SpanFromContext(ctx).AddEvent("delivering realtime event",
		oteltrace.WithAttributes(
			attribute.String("event", env.Event),
			attribute.String("user_id", env.UserID),
		))
	return registry.Notify(ctx, env.UserID, env.Event, env.Payload)
}
