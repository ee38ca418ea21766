package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/emrgen/docgen/internal/model"
)

const (
	DocumentSent    = "document.sent"
	DocumentStored  = "document.stored"
	DocumentCreated = "document.created"
)

// Event describes a change of a document.
type Event struct {
	Type       string               `json:"type"`
	DocumentID string               `json:"documentId"`
	UserID     string               `json:"userId"`
	Number     string               `json:"number"`
	Status     model.DocumentStatus `json:"status"`
	At         time.Time            `json:"at"`
}

func NewEvent(kind string, doc *model.Document) *Event {
	return &Event{
		Type:       kind,
		DocumentID: doc.ID,
		UserID:     doc.UserID,
		Number:     doc.Number,
		Status:     doc.Status,
		At:         time.Now().UTC(),
	}
}

func (e *Event) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	// Publish appends an event to the document stream.
	Publish(ctx context.Context, event *Event) error
	Close()
}

var _ Publisher = Nop{}

type Nop struct{}

func (Nop) Publish(context.Context, *Event) error { return nil }
func (Nop) Close()                                {}

var _ Publisher = (*Memory)(nil)

// Memory keeps published events in order.
type Memory struct {
	mu     sync.Mutex
	events []*Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Publish(_ context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *Memory) Events() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Event(nil), m.events...)
}

func (m *Memory) Close() {}
