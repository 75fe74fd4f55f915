package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fullreservas/reservas-api/internal/events"
	"github.com/fullreservas/reservas-api/pkg/mailer"
)

var logger = loggo.GetLogger("fullreservas.consumer")

const sendTimeout = 30 * time.Second

var bookingMail = template.Must(template.New("booking").Parse(`<p>Hola {{.UserName}},</p>
{{if eq .Type "booking.confirmed"}}<p>Tu reserva en <strong>{{.ShopName}}</strong> está confirmada.</p>
{{else}}<p>Tu reserva en <strong>{{.ShopName}}</strong> fue cancelada.</p>
{{end}}<ul>
<li>Fecha: {{.Date.Format "02/01/2006 15:04"}}</li>
<li>Personas: {{.Guests}}</li>
<li>Código: {{.BookingCode}}</li>
</ul>
<p>FullReservas</p>
`))

var subjects = map[string]string{
	events.BookingConfirmed: "Reserva confirmada",
	events.BookingCancelled: "Reserva cancelada",
}

// NotificationConsumer mails customers when their booking is confirmed or
// cancelled.
type NotificationConsumer struct {
	mail mailer.Sender
}

func NewNotificationConsumer(mail mailer.Sender) *NotificationConsumer {
	return &NotificationConsumer{mail: mail}
}

// Start handles messages until msgs is closed.
func (nc *NotificationConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			nc.handleMessage(msg)
		}
		logger.Infof("delivery channel closed, stopping consumer")
	}()
}

func (nc *NotificationConsumer) handleMessage(msg amqp.Delivery) {
	var evt events.BookingEvent
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		logger.Errorf("dropping malformed message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	subject, ok := subjects[evt.Type]
	if !ok || evt.UserEmail == "" {
		logger.Debugf("nothing to send for %s on booking %s", evt.Type, evt.BookingID)
		_ = msg.Ack(false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := nc.send(ctx, subject, evt); err != nil {
		// Retry once; a redelivered message that fails again is dropped.
		requeue := !msg.Redelivered
		logger.Errorf("mailing %s for booking %s (requeue=%t): %v", evt.Type, evt.BookingID, requeue, err)
		_ = msg.Nack(false, requeue)
		return
	}

	logger.Infof("mailed %s for booking %s", evt.Type, evt.BookingID)
	_ = msg.Ack(false)
}

func (nc *NotificationConsumer) send(ctx context.Context, subject string, evt events.BookingEvent) error {
	var body bytes.Buffer
	if err := bookingMail.Execute(&body, evt); err != nil {
		return errors.Annotate(err, "rendering mail")
	}
	return nc.mail.Send(ctx, mailer.Message{
		To:      []string{evt.UserEmail},
		Subject: subject,
		Body:    body.String(),
		HTML:    true,
	})
}
