package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	amqp "github.com/rabbitmq/amqp091-go"
)

var logger = loggo.GetLogger("fullreservas.rabbitmq")

const (
	ExchangeName = "bookings"
	ExchangeKind = "topic"
)

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	conn, ch, err := dial(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch}, nil
}

// Publish sends payload as persistent JSON to the bookings exchange.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Annotate(err, "marshal payload")
	}

	if err := p.channel.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		return errors.Annotatef(err, "publish %s", routingKey)
	}

	logger.Debugf("published to %s/%s: %s", ExchangeName, routingKey, body)
	return nil
}

func (p *Publisher) Close() {
	closeAll(p.channel, p.conn)
}

func dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, errors.Annotate(err, "rabbitmq dial")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, errors.Annotate(err, "rabbitmq channel")
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		closeAll(ch, conn)
		return nil, nil, errors.Annotate(err, "rabbitmq exchange declare")
	}
	return conn, ch, nil
}

func closeAll(ch *amqp.Channel, conn *amqp.Connection) {
	if ch != nil {
		ch.Close()
	}
	if conn != nil {
		conn.Close()
	}
}
