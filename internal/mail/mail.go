package mail

import (
	"context"
	"errors"
)

// ErrDelivery is returned when a message could not be handed to the relay.
var ErrDelivery = errors.New("delivery failed")

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	FromName    string
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers a message. Implementations wrap failures with ErrDelivery.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}
