package docgen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emrgen/docgen/internal/cache"
	"github.com/emrgen/docgen/internal/mail"
	"github.com/emrgen/docgen/internal/model"
	"github.com/emrgen/docgen/internal/queue"
	"github.com/emrgen/docgen/internal/render"
	"github.com/emrgen/docgen/internal/server"
	"github.com/emrgen/docgen/internal/service"
	"github.com/emrgen/docgen/internal/storage"
	"github.com/emrgen/docgen/internal/store"
	"github.com/emrgen/docgen/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	s := store.NewGormStore(tester.TestDB(t))
	bucket, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	templates := service.NewTemplateService(s, cache.Nop{})
	documents := service.NewDocumentService(s, queue.Nop{})
	pipeline := service.NewPipeline(templates, s, render.NewBounded(render.NewPDFRenderer(), 0, 0), bucket, mail.LogSender{}, queue.Nop{})

	srv := httptest.NewServer(server.NewHandler(documents, templates, pipeline, service.NewProfileService(s, bucket)).Router())
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, uuid.NewString())
}

func TestClient_RoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.PutTemplate(ctx, "default", "<h1>{{clientName}}</h1><p>{{total}}</p>")
	require.NoError(t, err)

	doc, err := c.CreateDocument(ctx, &CreateDocumentRequest{Type: model.DocumentTypeInvoice, Content: model.Content{ClientName: "Acme"}})
	require.NoError(t, err)

	doc, err = c.AddItem(ctx, doc.ID)
	require.NoError(t, err)
	_, err = c.UpdateItem(ctx, doc.ID, 0, "quantity", "2")
	require.NoError(t, err)
	doc, err = c.UpdateItem(ctx, doc.ID, 0, "price", "10")
	require.NoError(t, err)
	assert.Equal(t, "20", doc.Data().Total.String())

	data, err := c.DocumentPDF(ctx, doc.ID)
	require.NoError(t, err)
	pages, err := render.PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)

	ref, err := c.StorePDF(ctx, doc.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	sent, err := c.SendDocument(ctx, doc.ID, "client@example.test", "")
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusSent, sent.Status)

	docs, err := c.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	tmpls, err := c.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, tmpls, 1)

	require.NoError(t, c.DeleteDocument(ctx, doc.ID))
	_, err = c.GetDocument(ctx, doc.ID)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "document_not_found", apiErr.Code)

	require.NoError(t, c.DeleteTemplate(ctx, "default", false))
	_, err = c.GetTemplate(ctx, "default")
	assert.Error(t, err)
}

func TestClient_Profile(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	name := "Acme SARL"
	user, err := c.UpdateProfile(ctx, &UpdateProfileRequest{CompanyName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, user.CompanyName)

	user, err = c.UploadLogo(ctx, "logo.svg", []byte("<svg/>"))
	require.NoError(t, err)
	assert.Contains(t, user.Logo, "-logo.svg")

	user, err = c.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, name, user.CompanyName)
	assert.NotEmpty(t, user.Logo)
}
