package store

import (
	"context"
	"errors"

	"github.com/emrgen/docgen/internal/model"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, userID, id string) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&doc).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

func (g *GormStore) ListDocuments(ctx context.Context, userID string) ([]*model.Document, error) {
	var docs []*model.Document
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&docs).Error
	return docs, err
}

func (g *GormStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Save(doc).Error
}

func (g *GormStore) DeleteDocument(ctx context.Context, userID, id string) error {
	res := g.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormStore) CountDocuments(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Document{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (g *GormStore) CountDocumentsByTemplate(ctx context.Context, name string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Document{}).Where("template = ?", name).Count(&count).Error
	return count, err
}

func (g *GormStore) GetTemplate(ctx context.Context, name string) (*model.Template, error) {
	var tmpl model.Template
	err := g.db.WithContext(ctx).Where("name = ?", name).First(&tmpl).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &tmpl, nil
}

func (g *GormStore) SaveTemplate(ctx context.Context, tmpl *model.Template) error {
	return g.db.WithContext(ctx).Save(tmpl).Error
}

func (g *GormStore) DeleteTemplate(ctx context.Context, name string) error {
	res := g.db.WithContext(ctx).Where("name = ?", name).Delete(&model.Template{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormStore) ListTemplates(ctx context.Context) ([]*model.Template, error) {
	var tmpls []*model.Template
	err := g.db.WithContext(ctx).Order("name asc").Find(&tmpls).Error
	return tmpls, err
}

func (g *GormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (g *GormStore) SaveUser(ctx context.Context, user *model.User) error {
	return g.db.WithContext(ctx).Save(user).Error
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
