package live

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// DefaultExchange is the fanout exchange instances share events through.
const DefaultExchange = "daypilot.live"

type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// Channel is the subset of *amqp.Channel the bridge uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Bridge mirrors events between instances over a RabbitMQ fanout exchange.
// Local events go to the local hub and the exchange; remote events go to the
// local hub only.
type Bridge struct {
	hub      *Hub
	ch       Channel
	exchange string
	origin   string
	log      logrus.FieldLogger
}

var _ Publisher = (*Bridge)(nil)

// Dial connects to url and returns a bridge plus the connection to close on
// shutdown.
func Dial(url string, hub *Hub, log logrus.FieldLogger) (*Bridge, *amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	b, err := NewBridge(ch, DefaultExchange, hub, log)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return b, conn, nil
}

// NewBridge declares exchange on ch.
func NewBridge(ch Channel, exchange string, hub *Hub, log logrus.FieldLogger) (*Bridge, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, false, true, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Bridge{
		hub:      hub,
		ch:       ch,
		exchange: exchange,
		origin:   uuid.NewString(),
		log:      log,
	}, nil
}

// Publish delivers locally, then forwards to other instances. A broker
// failure is logged; local subscribers still see the event.
func (b *Bridge) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = b.hub.now()
	}
	b.hub.Publish(ev)

	body, err := json.Marshal(envelope{Origin: b.origin, Event: ev})
	if err != nil {
		b.log.WithError(err).Warn("encode live event")
		return
	}
	err = b.ch.Publish(b.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		b.log.WithError(err).WithField("collection", ev.Collection).Warn("forward live event")
	}
}

// Run consumes events from other instances until ctx is done or the
// delivery channel closes.
func (b *Bridge) Run(ctx context.Context) error {
	q, err := b.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := b.ch.QueueBind(q.Name, "", b.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	deliveries, err := b.ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("rabbitmq deliveries closed")
			}
			b.deliver(d.Body)
		}
	}
}

func (b *Bridge) deliver(body []byte) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		b.log.WithError(err).Warn("decode live event")
		return
	}
	if env.Origin == b.origin {
		return
	}
	b.hub.Publish(env.Event)
}
