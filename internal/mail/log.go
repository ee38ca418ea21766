package mail

import (
	"context"

	"github.com/sirupsen/logrus"
)

var _ Sender = LogSender{}

// LogSender only logs messages. It is used when no SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg *Message) error {
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}

	logrus.WithFields(logrus.Fields{
		"to":          msg.To,
		"subject":     msg.Subject,
		"attachments": names,
	}).Info("mail delivery disabled, message dropped")

	return nil
}
