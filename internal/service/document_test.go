package service

import (
	"context"
	"testing"
	"time"

	"github.com/emrgen/docgen/internal/calc"
	"github.com/emrgen/docgen/internal/model"
	"github.com/emrgen/docgen/internal/queue"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func widgetContent() model.Content {
	return model.Content{
		ClientName: "Acme",
		Items:      []model.Item{{Description: "Widget", Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(10)}},
	}
}

func TestDocumentService_CreateDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.documents.now = func() time.Time { return time.UnixMilli(1700000000000) }

	first, err := f.documents.CreateDocument(ctx, f.userID, &CreateDocumentRequest{Type: model.DocumentTypeInvoice, Content: widgetContent()})
	require.NoError(t, err)
	assert.Equal(t, "INVOICE-1700000000000-1", first.Number)
	assert.Equal(t, model.DocumentStatusDraft, first.Status)
	assert.Equal(t, model.DefaultTemplateName, first.Template)
	assert.True(t, first.Data().Total.Equal(decimal.NewFromInt(20)))

	second, err := f.documents.CreateDocument(ctx, f.userID, &CreateDocumentRequest{Type: model.DocumentTypeQuote, Template: "modern"})
	require.NoError(t, err)
	assert.Equal(t, "QUOTE-1700000000000-2", second.Number)
	assert.Equal(t, "modern", second.Template)

	events := f.events.Events()
	require.Len(t, events, 2)
	assert.Equal(t, queue.DocumentCreated, events[0].Type)
}

func TestDocumentService_CreateUsesUserDefaultTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := &model.User{
		ID:          f.userID,
		Email:       "billing@acme.test",
		Preferences: datatypes.NewJSONType(model.Preferences{DefaultTemplate: "classic"}),
	}
	require.NoError(t, f.store.SaveUser(ctx, user))

	doc, err := f.documents.CreateDocument(ctx, f.userID, &CreateDocumentRequest{Type: model.DocumentTypeInvoice})
	require.NoError(t, err)
	assert.Equal(t, "classic", doc.Template)
}

func TestDocumentService_CreateRecomputesSubmittedTotal(t *testing.T) {
	f := newFixture(t)
	content := widgetContent()
	content.Total = decimal.NewFromInt(999)

	doc, err := f.documents.CreateDocument(context.Background(), f.userID, &CreateDocumentRequest{Type: model.DocumentTypeInvoice, Content: content})
	require.NoError(t, err)
	assert.True(t, doc.Data().Total.Equal(decimal.NewFromInt(20)))
}

func TestDocumentService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.documents.CreateDocument(ctx, f.userID, &CreateDocumentRequest{Type: "receipt"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.documents.CreateDocument(ctx, "not-a-uuid", &CreateDocumentRequest{Type: model.DocumentTypeInvoice})
	assert.ErrorIs(t, err, ErrValidation)

	negative := model.Content{Items: []model.Item{{Quantity: decimal.NewFromInt(-1), Price: decimal.NewFromInt(1)}}}
	_, err = f.documents.CreateDocument(ctx, f.userID, &CreateDocumentRequest{Type: model.DocumentTypeInvoice, Content: negative})
	assert.ErrorIs(t, err, calc.ErrInvalidField)
}

func TestDocumentService_OwnerScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.documents.CreateDocument(ctx, f.userID, &CreateDocumentRequest{Type: model.DocumentTypeInvoice})
	require.NoError(t, err)

	other := uuid.NewString()
	_, err = f.documents.GetDocument(ctx, other, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, f.documents.DeleteDocument(ctx, other, doc.ID), ErrDocumentNotFound)

	docs, err := f.documents.ListDocuments(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, docs)

	require.NoError(t, f.documents.DeleteDocument(ctx, f.userID, doc.ID))
	_, err = f.documents.GetDocument(ctx, f.userID, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentService_UpdateDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.documents.CreateDocument(ctx, f.userID, &CreateDocumentRequest{Type: model.DocumentTypeInvoice, Content: widgetContent()})
	require.NoError(t, err)

	content := widgetContent()
	content.Items = append(content.Items, model.Item{Description: "Bolt", Quantity: decimal.NewFromInt(4), Price: decimal.RequireFromString("2.5")})
	content.Extra = map[string]any{"notes": "net 30"}

	updated, err := f.documents.UpdateDocument(ctx, f.userID, doc.ID, &UpdateDocumentRequest{Content: &content, Status: model.DocumentStatusPaid})
	require.NoError(t, err)
	assert.True(t, updated.Data().Total.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, model.DocumentStatusPaid, updated.Status)

	reloaded, err := f.documents.GetDocument(ctx, f.userID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "net 30", reloaded.Data().Extra["notes"])

	_, err = f.documents.UpdateDocument(ctx, f.userID, doc.ID, &UpdateDocumentRequest{Status: model.DocumentStatusSent})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDocumentService_Items(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.documents.CreateDocument(ctx, f.userID, &CreateDocumentRequest{Type: model.DocumentTypeInvoice})
	require.NoError(t, err)

	doc, err = f.documents.AddItem(ctx, f.userID, doc.ID)
	require.NoError(t, err)
	require.Len(t, doc.Data().Items, 1)
	assert.True(t, doc.Data().Total.IsZero())

	_, err = f.documents.UpdateItem(ctx, f.userID, doc.ID, 0, calc.FieldQuantity, "3")
	require.NoError(t, err)
	doc, err = f.documents.UpdateItem(ctx, f.userID, doc.ID, 0, calc.FieldPrice, "1.5")
	require.NoError(t, err)
	assert.Equal(t, "4.5", doc.Data().Total.String())

	_, err = f.documents.UpdateItem(ctx, f.userID, doc.ID, 1, calc.FieldPrice, "1")
	assert.ErrorIs(t, err, calc.ErrOutOfRange)

	reloaded, err := f.documents.GetDocument(ctx, f.userID, doc.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Data().Items, 1)
	assert.Equal(t, "4.5", reloaded.Data().Total.String())
}
