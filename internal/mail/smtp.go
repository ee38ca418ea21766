package mail

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

var _ Sender = (*SMTPSender)(nil)

type SMTPOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPSender relays messages through an SMTP server.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(opts SMTPOptions) *SMTPSender {
	port := opts.Port
	if port == 0 {
		port = 587
	}
	from := opts.From
	if from == "" {
		from = opts.User
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(opts.Host, port, opts.User, opts.Password),
		from:   from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	if err := s.dialer.DialAndSend(s.build(msg)); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	logrus.Infof("mail sent to %s: %s", msg.To, msg.Subject)
	return nil
}

func (s *SMTPSender) build(msg *Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, msg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	for _, a := range msg.Attachments {
		data := a.Data
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		m.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {contentType}}),
		)
	}

	return m
}
