package cache

import (
	"context"

	"github.com/emrgen/docgen/internal/model"
)

// TemplateCache keeps recently used templates. A miss is reported as (nil, nil).
type TemplateCache interface {
	// GetTemplate gets a template from the cache.
	GetTemplate(ctx context.Context, name string) (*model.Template, error)
	// SetTemplate stores a template in the cache.
	SetTemplate(ctx context.Context, tmpl *model.Template) error
	// DeleteTemplate evicts a template from the cache.
	DeleteTemplate(ctx context.Context, name string) error
}

var _ TemplateCache = Nop{}

// Nop is used when no redis address is configured.
type Nop struct{}

func (Nop) GetTemplate(context.Context, string) (*model.Template, error) { return nil, nil }
func (Nop) SetTemplate(context.Context, *model.Template) error           { return nil }
func (Nop) DeleteTemplate(context.Context, string) error                 { return nil }
