package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/emrgen/docgen/internal/cache"
	"github.com/emrgen/docgen/internal/model"
	"github.com/emrgen/docgen/internal/store"
	"github.com/sirupsen/logrus"
)

func NewTemplateService(store store.Store, templateCache cache.TemplateCache) *TemplateService {
	if templateCache == nil {
		templateCache = cache.Nop{}
	}
	return &TemplateService{store: store, cache: templateCache, epochs: make(map[string]uint64)}
}

// TemplateService reads templates through the cache. Cache failures are
// logged and fall through to the store.
type TemplateService struct {
	store store.Store
	cache cache.TemplateCache

	// epochs counts writes per name; a read-through that overlaps a write
	// evicts what it cached.
	mu     sync.Mutex
	epochs map[string]uint64
}

func (s *TemplateService) epoch(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epochs[name]
}

func (s *TemplateService) bump(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epochs[name]++
}

func (s *TemplateService) GetTemplate(ctx context.Context, name string) (*model.Template, error) {
	tmpl, err := s.cache.GetTemplate(ctx, name)
	if err != nil {
		logrus.Warnf("template cache get %s: %v", name, err)
	}
	if tmpl != nil {
		return tmpl, nil
	}

	seen := s.epoch(name)
	tmpl, err = s.store.GetTemplate(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, err
	}

	if err := s.cache.SetTemplate(ctx, tmpl); err != nil {
		logrus.Warnf("template cache set %s: %v", name, err)
	}
	if s.epoch(name) != seen {
		s.evict(ctx, name)
	}

	return tmpl, nil
}

func (s *TemplateService) ListTemplates(ctx context.Context) ([]*model.Template, error) {
	return s.store.ListTemplates(ctx)
}

// SaveTemplate creates or replaces the template called name.
func (s *TemplateService) SaveTemplate(ctx context.Context, name, content string) (*model.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: template name is required", ErrValidation)
	}

	tmpl, err := s.store.GetTemplate(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		tmpl = &model.Template{Name: name}
	case err != nil:
		return nil, err
	}
	tmpl.Content = content

	if err := s.store.SaveTemplate(ctx, tmpl); err != nil {
		return nil, err
	}
	s.bump(name)
	if err := s.cache.SetTemplate(ctx, tmpl); err != nil {
		logrus.Warnf("template cache set %s: %v", name, err)
	}

	return tmpl, nil
}

// DeleteTemplate refuses to delete a template that documents still reference
// unless force is set.
func (s *TemplateService) DeleteTemplate(ctx context.Context, name string, force bool) error {
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if !force {
			count, err := tx.CountDocumentsByTemplate(ctx, name)
			if err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w: %s is used by %d documents", ErrTemplateInUse, name, count)
			}
		}
		return tx.DeleteTemplate(ctx, name)
	})
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	if err != nil {
		return err
	}

	s.bump(name)
	s.evict(ctx, name)
	return nil
}

func (s *TemplateService) evict(ctx context.Context, name string) {
	if err := s.cache.DeleteTemplate(ctx, name); err != nil {
		logrus.Warnf("template cache delete %s: %v", name, err)
	}
}

// Warmup loads every stored template into the cache.
func (s *TemplateService) Warmup(ctx context.Context) (int, error) {
	tmpls, err := s.store.ListTemplates(ctx)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, tmpl := range tmpls {
		if err := s.cache.SetTemplate(ctx, tmpl); err != nil {
			return loaded, fmt.Errorf("warm up %s: %w", tmpl.Name, err)
		}
		loaded++
	}

	return loaded, nil
}
