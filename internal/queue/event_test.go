package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/emrgen/docgen/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	doc := &model.Document{ID: "d1", UserID: "u1", Number: "INVOICE-1-1", Status: model.DocumentStatusSent}
	e := NewEvent(DocumentSent, doc)

	data, err := e.MarshalBinary()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "document.sent", raw["type"])
	assert.Equal(t, "d1", raw["documentId"])
	assert.Equal(t, "sent", raw["status"])
}

func TestMemory_KeepsOrder(t *testing.T) {
	m := NewMemory()
	doc := &model.Document{ID: "d1"}
	require.NoError(t, m.Publish(context.Background(), NewEvent(DocumentCreated, doc)))
	require.NoError(t, m.Publish(context.Background(), NewEvent(DocumentSent, doc)))

	events := m.Events()
	require.Len(t, events, 2)
	assert.Equal(t, DocumentCreated, events[0].Type)
	assert.Equal(t, DocumentSent, events[1].Type)
}
