package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/emrgen/docgen/internal/calc"
	"github.com/emrgen/docgen/internal/mail"
	"github.com/emrgen/docgen/internal/model"
	"github.com/emrgen/docgen/internal/queue"
	"github.com/emrgen/docgen/internal/render"
	"github.com/emrgen/docgen/internal/storage"
	"github.com/emrgen/docgen/internal/store"
	"github.com/emrgen/docgen/internal/substitute"
	"github.com/sirupsen/logrus"
)

const pdfContentType = "application/pdf"

// Pipeline turns a stored document into a PDF and delivers it.
type Pipeline struct {
	templates *TemplateService
	store     store.Store
	renderer  render.Renderer
	bucket    storage.Bucket
	sender    mail.Sender
	publisher queue.Publisher
}

func NewPipeline(templates *TemplateService, store store.Store, renderer render.Renderer, bucket storage.Bucket, sender mail.Sender, publisher queue.Publisher) *Pipeline {
	if sender == nil {
		sender = mail.LogSender{}
	}
	if publisher == nil {
		publisher = queue.Nop{}
	}
	return &Pipeline{
		templates: templates,
		store:     store,
		renderer:  renderer,
		bucket:    bucket,
		sender:    sender,
		publisher: publisher,
	}
}

// User loads the profile of a document owner. A missing profile is not an error.
func (p *Pipeline) User(ctx context.Context, userID string) (*model.User, error) {
	user, err := p.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// RenderMarkup substitutes the document fields into its template.
func (p *Pipeline) RenderMarkup(ctx context.Context, doc *model.Document, user *model.User) (string, error) {
	tmpl, err := p.templates.GetTemplate(ctx, doc.Template)
	if err != nil {
		return "", err
	}

	prefs := user.Prefs()
	engine := substitute.New(substitute.Helpers(prefs.Language, prefs.Currency))

	return engine.Execute(tmpl.Content, templateFields(doc, user)), nil
}

// RenderPDF renders the document to PDF bytes.
func (p *Pipeline) RenderPDF(ctx context.Context, doc *model.Document, user *model.User) ([]byte, error) {
	markup, err := p.RenderMarkup(ctx, doc, user)
	if err != nil {
		return nil, err
	}

	return p.renderer.Render(ctx, markup)
}

// StorePDF renders the document, uploads it and records the reference on the document.
func (p *Pipeline) StorePDF(ctx context.Context, doc *model.Document, user *model.User) (string, error) {
	if p.bucket == nil {
		return "", fmt.Errorf("%w: no storage configured", storage.ErrUpload)
	}

	data, err := p.RenderPDF(ctx, doc, user)
	if err != nil {
		return "", err
	}

	ref, err := p.bucket.Put(ctx, fmt.Sprintf("documents/%s.pdf", doc.ID), data, pdfContentType)
	if err != nil {
		return "", err
	}

	doc.PDFURL = ref
	if err := p.store.UpdateDocument(ctx, doc); err != nil {
		return "", err
	}

	logrus.Infof("stored %s at %s", doc.Number, ref)
	p.publish(ctx, queue.DocumentStored, doc)

	return ref, nil
}

// Send renders the document and mails it to recipient. The status moves from
// draft to sent only once the relay accepted the message.
func (p *Pipeline) Send(ctx context.Context, doc *model.Document, user *model.User, recipient, message string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || !strings.Contains(recipient, "@") {
		return fmt.Errorf("%w: invalid recipient %q", ErrValidation, recipient)
	}

	data, err := p.RenderPDF(ctx, doc, user)
	if err != nil {
		return err
	}

	msg := composeMessage(doc, user, recipient, message)
	msg.Attachments = []mail.Attachment{{
		Filename:    fmt.Sprintf("%s_%s.pdf", doc.Type, doc.Number),
		ContentType: pdfContentType,
		Data:        data,
	}}

	if err := p.sender.Send(ctx, msg); err != nil {
		return err
	}

	if doc.CanSend() {
		doc.Status = model.DocumentStatusSent
		if err := p.store.UpdateDocument(ctx, doc); err != nil {
			return err
		}
	}

	p.publish(ctx, queue.DocumentSent, doc)
	return nil
}

func (p *Pipeline) publish(ctx context.Context, kind string, doc *model.Document) {
	if err := p.publisher.Publish(ctx, queue.NewEvent(kind, doc)); err != nil {
		logrus.Errorf("failed to publish %s for document %s: %v", kind, doc.ID, err)
	}
}

func templateFields(doc *model.Document, user *model.User) map[string]any {
	content := doc.Data()
	fields := content.Fields()
	fields["id"] = doc.ID
	fields["number"] = doc.Number
	fields["type"] = string(doc.Type)
	fields["status"] = string(doc.Status)
	fields["createdAt"] = doc.CreatedAt
	fields["itemsTable"] = substitute.Raw(itemsTable(content.Items))
	fields["user"] = user.Fields()
	return fields
}

func itemsTable(items []model.Item) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("<tr><td>")
		sb.WriteString(html.EscapeString(item.Description))
		sb.WriteString("</td><td>")
		sb.WriteString(item.Quantity.String())
		sb.WriteString("</td><td>")
		sb.WriteString(calc.Display(item.Price))
		sb.WriteString("</td><td>")
		sb.WriteString(calc.Display(item.Amount()))
		sb.WriteString("</td></tr>")
	}
	return sb.String()
}

type wording struct {
	invoice, quote    string
	greeting, closing string
	attached          string
}

var wordings = map[string]wording{
	"fr": {
		invoice:  "Facture",
		quote:    "Devis",
		greeting: "Bonjour,",
		closing:  "Cordialement,",
		attached: "Veuillez trouver ci-joint votre %s.",
	},
	"en": {
		invoice:  "Invoice",
		quote:    "Quote",
		greeting: "Hello,",
		closing:  "Best regards,",
		attached: "Please find attached your %s.",
	},
}

func composeMessage(doc *model.Document, user *model.User, recipient, message string) *mail.Message {
	w, ok := wordings[user.Prefs().Language]
	if !ok {
		w = wordings[model.DefaultLanguage]
	}

	kind := w.invoice
	if doc.Type == model.DocumentTypeQuote {
		kind = w.quote
	}

	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf(w.attached, strings.ToLower(kind))
	}

	company := ""
	if user != nil {
		company = user.CompanyName
	}

	return &mail.Message{
		FromName: company,
		To:       recipient,
		Subject:  fmt.Sprintf("%s - %s", kind, doc.Number),
		Body:     fmt.Sprintf("%s\n\n%s\n\n%s\n%s", w.greeting, message, w.closing, company),
	}
}
