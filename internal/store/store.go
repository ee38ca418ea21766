package store

import (
	"context"
	"errors"

	"github.com/emrgen/docgen/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

type Store interface {
	DocumentStore
	TemplateStore
	UserStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type DocumentStore interface {
	// CreateDocument creates a new document.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a document of a user by ID.
	GetDocument(ctx context.Context, userID, id string) (*model.Document, error)
	// ListDocuments retrieves the documents of a user, newest first.
	ListDocuments(ctx context.Context, userID string) ([]*model.Document, error)
	// UpdateDocument saves all fields of a document.
	UpdateDocument(ctx context.Context, doc *model.Document) error
	// DeleteDocument deletes a document of a user by ID.
	DeleteDocument(ctx context.Context, userID, id string) error
	// CountDocuments counts the documents of a user.
	CountDocuments(ctx context.Context, userID string) (int64, error)
	// CountDocumentsByTemplate counts the documents referencing a template.
	CountDocumentsByTemplate(ctx context.Context, name string) (int64, error)
}

type TemplateStore interface {
	// GetTemplate retrieves a template by name.
	GetTemplate(ctx context.Context, name string) (*model.Template, error)
	// SaveTemplate creates or replaces a template.
	SaveTemplate(ctx context.Context, tmpl *model.Template) error
	// DeleteTemplate deletes a template by name.
	DeleteTemplate(ctx context.Context, name string) error
	// ListTemplates retrieves all templates ordered by name.
	ListTemplates(ctx context.Context) ([]*model.Template, error)
}

type UserStore interface {
	// GetUser retrieves a user profile by ID.
	GetUser(ctx context.Context, id string) (*model.User, error)
	// SaveUser creates or replaces a user profile.
	SaveUser(ctx context.Context, user *model.User) error
}
