package service

import (
	"context"
	"sync"
	"testing"

	"github.com/emrgen/docgen/internal/cache"
	"github.com/emrgen/docgen/internal/compress"
	"github.com/emrgen/docgen/internal/mail"
	"github.com/emrgen/docgen/internal/queue"
	"github.com/emrgen/docgen/internal/render"
	"github.com/emrgen/docgen/internal/storage"
	"github.com/emrgen/docgen/internal/store"
	"github.com/emrgen/docgen/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordingRenderer returns the markup as the PDF body so tests can inspect it.
type recordingRenderer struct {
	mu      sync.Mutex
	markups []string
	err     error
}

func (r *recordingRenderer) Render(_ context.Context, markup string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.markups = append(r.markups, markup)
	return []byte(markup), nil
}

type fakeSender struct {
	sent []*mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg *mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fixture struct {
	store     *store.GormStore
	documents *DocumentService
	templates *TemplateService
	profiles  *ProfileService
	pipeline  *Pipeline
	renderer  *recordingRenderer
	sender    *fakeSender
	events    *queue.Memory
	bucketDir string
	userID    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := store.NewGormStore(tester.TestDB(t))
	client, _ := tester.Redis(t)
	templates := NewTemplateService(s, cache.NewRedisTemplateCache(client, compress.NewGZip(), 0))

	dir := t.TempDir()
	bucket, err := storage.NewLocal(dir, "")
	require.NoError(t, err)

	renderer := &recordingRenderer{}
	sender := &fakeSender{}
	events := queue.NewMemory()

	return &fixture{
		store:     s,
		documents: NewDocumentService(s, events),
		templates: templates,
		profiles:  NewProfileService(s, bucket),
		pipeline:  NewPipeline(templates, s, renderer, bucket, sender, events),
		renderer:  renderer,
		sender:    sender,
		events:    events,
		bucketDir: dir,
		userID:    uuid.NewString(),
	}
}

var _ render.Renderer = (*recordingRenderer)(nil)
