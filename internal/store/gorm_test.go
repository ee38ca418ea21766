package store

import (
	"context"
	"testing"
	"time"

	"github.com/emrgen/docgen/internal/model"
	"github.com/emrgen/docgen/internal/tester"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocument(userID, number string, createdAt time.Time) *model.Document {
	doc := &model.Document{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      model.DocumentTypeInvoice,
		Number:    number,
		Template:  model.DefaultTemplateName,
		Status:    model.DocumentStatusDraft,
		CreatedAt: createdAt,
	}
	doc.SetData(model.Content{
		ClientName: "Acme",
		Items:      []model.Item{{Description: "Widget", Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(10)}},
		Total:      decimal.NewFromInt(20),
	})
	return doc
}

func TestGormStore_Documents(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	ctx := context.Background()
	userID := uuid.NewString()
	otherID := uuid.NewString()
	now := time.Now()

	older := newDocument(userID, "INVOICE-1-1", now.Add(-time.Hour))
	newer := newDocument(userID, "INVOICE-2-2", now)
	require.NoError(t, s.CreateDocument(ctx, older))
	require.NoError(t, s.CreateDocument(ctx, newer))

	docs, err := s.ListDocuments(ctx, userID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, newer.ID, docs[0].ID)

	got, err := s.GetDocument(ctx, userID, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Data().ClientName)
	assert.True(t, got.Data().Total.Equal(decimal.NewFromInt(20)))

	_, err = s.GetDocument(ctx, otherID, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := s.CountDocuments(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	byTemplate, err := s.CountDocumentsByTemplate(ctx, model.DefaultTemplateName)
	require.NoError(t, err)
	assert.EqualValues(t, 2, byTemplate)

	got.Status = model.DocumentStatusSent
	require.NoError(t, s.UpdateDocument(ctx, got))
	reloaded, err := s.GetDocument(ctx, userID, older.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusSent, reloaded.Status)

	assert.ErrorIs(t, s.DeleteDocument(ctx, otherID, older.ID), ErrNotFound)
	require.NoError(t, s.DeleteDocument(ctx, userID, older.ID))
	_, err = s.GetDocument(ctx, userID, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_DuplicateNumberRejected(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	ctx := context.Background()
	userID := uuid.NewString()

	require.NoError(t, s.CreateDocument(ctx, newDocument(userID, "INVOICE-1-1", time.Now())))
	assert.Error(t, s.CreateDocument(ctx, newDocument(userID, "INVOICE-1-1", time.Now())))
}

func TestGormStore_Templates(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	ctx := context.Background()

	require.NoError(t, s.SaveTemplate(ctx, &model.Template{Name: "modern", Content: "<h1>{{number}}</h1>"}))
	require.NoError(t, s.SaveTemplate(ctx, &model.Template{Name: "default", Content: "<p>{{clientName}}</p>"}))

	tmpls, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, tmpls, 2)
	assert.Equal(t, "default", tmpls[0].Name)
	assert.Equal(t, "modern", tmpls[1].Name)

	require.NoError(t, s.SaveTemplate(ctx, &model.Template{Name: "default", Content: "<p>v2</p>"}))
	got, err := s.GetTemplate(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "<p>v2</p>", got.Content)

	require.NoError(t, s.DeleteTemplate(ctx, "modern"))
	_, err = s.GetTemplate(ctx, "modern")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteTemplate(ctx, "modern"), ErrNotFound)
}

func TestGormStore_Users(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	ctx := context.Background()

	_, err := s.GetUser(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	user := &model.User{ID: uuid.NewString(), Email: "billing@acme.test", CompanyName: "Acme"}
	require.NoError(t, s.SaveUser(ctx, user))

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, model.DefaultLanguage, got.Prefs().Language)
}

func TestGormStore_TransactionRollback(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx Store) error {
		if err := tx.SaveTemplate(ctx, &model.Template{Name: "draft", Content: "x"}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = s.GetTemplate(ctx, "draft")
	assert.ErrorIs(t, err, ErrNotFound)
}
