package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emrgen/docgen/internal/calc"
	"github.com/emrgen/docgen/internal/model"
	"github.com/emrgen/docgen/internal/queue"
	"github.com/emrgen/docgen/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreateDocumentRequest struct {
	Type     model.DocumentType `json:"type"`
	Template string             `json:"template"`
	Content  model.Content      `json:"content"`
}

// UpdateDocumentRequest carries the fields to change. Zero values are left alone.
type UpdateDocumentRequest struct {
	Template string               `json:"template"`
	Content  *model.Content       `json:"content"`
	Status   model.DocumentStatus `json:"status"`
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store store.Store, publisher queue.Publisher) *DocumentService {
	if publisher == nil {
		publisher = queue.Nop{}
	}
	return &DocumentService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// DocumentService manages the documents of a user.
type DocumentService struct {
	store     store.Store
	publisher queue.Publisher
	now       func() time.Time
}

// CreateDocument numbers and stores a new draft. The total is derived from the items.
func (d *DocumentService) CreateDocument(ctx context.Context, userID string, req *CreateDocumentRequest) (*model.Document, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: type must be invoice or quote, got %q", ErrValidation, req.Type)
	}
	if err := calc.Validate(req.Content.Items); err != nil {
		return nil, err
	}

	content := req.Content
	recompute(&content)

	tmpl := req.Template
	if tmpl == "" {
		user, err := d.store.GetUser(ctx, userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		tmpl = user.Prefs().DefaultTemplate
	}

	doc := &model.Document{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     req.Type,
		Template: tmpl,
		Status:   model.DocumentStatusDraft,
	}
	doc.SetData(content)

	err := d.store.Transaction(ctx, func(tx store.Store) error {
		count, err := tx.CountDocuments(ctx, userID)
		if err != nil {
			return err
		}
		doc.Number = model.NewNumber(doc.Type, d.now(), count+1)
		return tx.CreateDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("created %s %s for user %s", doc.Type, doc.Number, userID)
	d.publish(ctx, queue.DocumentCreated, doc)

	return doc, nil
}

func (d *DocumentService) GetDocument(ctx context.Context, userID, id string) (*model.Document, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	doc, err := d.store.GetDocument(ctx, userID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
		}
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns the documents of a user, newest first.
func (d *DocumentService) ListDocuments(ctx context.Context, userID string) ([]*model.Document, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	return d.store.ListDocuments(ctx, userID)
}

// UpdateDocument edits content, template or status. The status can only be
// set to draft or paid here, sent is reached through delivery.
func (d *DocumentService) UpdateDocument(ctx context.Context, userID, id string, req *UpdateDocumentRequest) (*model.Document, error) {
	doc, err := d.GetDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		if err := calc.Validate(req.Content.Items); err != nil {
			return nil, err
		}
		content := *req.Content
		recompute(&content)
		doc.SetData(content)
	}

	switch req.Status {
	case "":
	case model.DocumentStatusDraft, model.DocumentStatusPaid:
		doc.Status = req.Status
	default:
		return nil, fmt.Errorf("%w: status cannot be set to %q", ErrValidation, req.Status)
	}

	if req.Template != "" {
		doc.Template = req.Template
	}

	if err := d.store.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (d *DocumentService) DeleteDocument(ctx context.Context, userID, id string) error {
	if err := checkUserID(userID); err != nil {
		return err
	}
	err := d.store.DeleteDocument(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return err
}

// AddItem appends an empty line item.
func (d *DocumentService) AddItem(ctx context.Context, userID, id string) (*model.Document, error) {
	return d.editItems(ctx, userID, id, func(s *calc.Sheet) error {
		s.AddItem()
		return nil
	})
}

// UpdateItem sets one field of the item at index and recomputes the total.
func (d *DocumentService) UpdateItem(ctx context.Context, userID, id string, index int, field calc.Field, value string) (*model.Document, error) {
	return d.editItems(ctx, userID, id, func(s *calc.Sheet) error {
		return s.UpdateItem(index, field, value)
	})
}

func (d *DocumentService) editItems(ctx context.Context, userID, id string, edit func(*calc.Sheet) error) (*model.Document, error) {
	doc, err := d.GetDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	content := doc.Data()
	sheet := calc.NewSheet(content.Items)
	if err := edit(sheet); err != nil {
		return nil, err
	}
	sheet.Apply(&content)
	doc.SetData(content)

	if err := d.store.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (d *DocumentService) publish(ctx context.Context, kind string, doc *model.Document) {
	if err := d.publisher.Publish(ctx, queue.NewEvent(kind, doc)); err != nil {
		logrus.Errorf("failed to publish %s for document %s: %v", kind, doc.ID, err)
	}
}

// recompute overwrites a client supplied total with the sum of the items.
func recompute(c *model.Content) {
	total := calc.Total(c.Items)
	if !c.Total.IsZero() && !c.Total.Equal(total) {
		logrus.Warnf("submitted total %s differs from items total %s, using items total", c.Total, total)
	}
	c.Total = total
}

func checkUserID(userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("%w: invalid user id %q", ErrValidation, userID)
	}
	return nil
}
