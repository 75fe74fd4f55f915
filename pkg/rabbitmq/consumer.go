package rabbitmq

import (
	"github.com/juju/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

const QueueName = "fullreservas.notifications"

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer declares a durable queue bound to each routing key on the
// bookings exchange.
func NewConsumer(url string, routingKeys ...string) (*Consumer, error) {
	conn, ch, err := dial(url)
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(QueueName, true, false, false, false, nil)
	if err != nil {
		closeAll(ch, conn)
		return nil, errors.Annotate(err, "rabbitmq queue declare")
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(q.Name, key, ExchangeName, false, nil); err != nil {
			closeAll(ch, conn)
			return nil, errors.Annotatef(err, "rabbitmq queue bind %s", key)
		}
	}

	// One unacked message at a time.
	if err := ch.Qos(1, 0, false); err != nil {
		closeAll(ch, conn)
		return nil, errors.Annotate(err, "rabbitmq qos")
	}

	return &Consumer{conn: conn, channel: ch, queue: q.Name}, nil
}

func (c *Consumer) Consume() (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // acked by the handler
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, errors.Annotate(err, "rabbitmq consume")
	}

	logger.Infof("consuming from queue: %s", c.queue)
	return msgs, nil
}

func (c *Consumer) Close() {
	closeAll(c.channel, c.conn)
}
