package mailer

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/wneessen/go-mail"
)

var logger = loggo.GetLogger("fullreservas.mailer")

type Message struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return errors.Trace(err)
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return errors.Annotate(err, "smtp client")
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return errors.Annotatef(err, "sending %q", msg.Subject)
	}
	logger.Debugf("sent %q to %v", msg.Subject, msg.To)
	return nil
}

func (s *SMTPSender) build(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.NotValidf("empty recipient list")
	}
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, errors.Annotate(err, "from address")
	}
	if err := m.To(msg.To...); err != nil {
		return nil, errors.Annotate(err, "to address")
	}
	m.Subject(msg.Subject)
	if msg.HTML {
		m.SetBodyString(mail.TypeTextHTML, msg.Body)
	} else {
		m.SetBodyString(mail.TypeTextPlain, msg.Body)
	}
	return m, nil
}
