package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func init() {
	// amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// DocumentType is the kind of commercial document.
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "invoice"
	DocumentTypeQuote   DocumentType = "quote"
)

func (t DocumentType) Valid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeQuote
}

// DocumentStatus is the lifecycle state of a document.
type DocumentStatus string

const (
	DocumentStatusDraft DocumentStatus = "draft"
	DocumentStatusSent  DocumentStatus = "sent"
	DocumentStatusPaid  DocumentStatus = "paid"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusSent, DocumentStatusPaid:
		return true
	}
	return false
}

// Document is an invoice or a quote owned by a user.
type Document struct {
	ID        string                      `gorm:"primaryKey;uuid;not null;" json:"id"`
	UserID    string                      `gorm:"uuid;not null;index;uniqueIndex:idx_user_number" json:"userId"`
	Type      DocumentType                `gorm:"size:16;not null" json:"type"`
	Number    string                      `gorm:"size:64;not null;uniqueIndex:idx_user_number" json:"number"`
	Template  string                      `gorm:"size:255;not null;index" json:"template"`
	Content   datatypes.JSONType[Content] `gorm:"not null" json:"content"`
	Status    DocumentStatus              `gorm:"size:16;not null;default:draft" json:"status"`
	PDFURL    string                      `json:"pdfUrl,omitempty"`
	CreatedAt time.Time                   `json:"createdAt"`
	UpdatedAt time.Time                   `json:"updatedAt"`
}

// Data returns a copy of the document content.
func (d *Document) Data() Content {
	return d.Content.Data()
}

// SetData replaces the document content.
func (d *Document) SetData(c Content) {
	d.Content = datatypes.NewJSONType(c)
}

// CanSend reports whether a successful delivery moves the document to sent.
func (d *Document) CanSend() bool {
	return d.Status == "" || d.Status == DocumentStatusDraft
}

// NewNumber builds the human readable number of the count-th document of a user,
// e.g. INVOICE-1700000000000-3.
func NewNumber(t DocumentType, at time.Time, count int64) string {
	return fmt.Sprintf("%s-%d-%d", strings.ToUpper(string(t)), at.UnixMilli(), count)
}

// Item is a single line of a document. It has no identity beyond its position.
type Item struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Amount is quantity × price.
func (i Item) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.Price)
}

// Content holds the named fields of a document. Fields other than the client
// name, items and total are kept in Extra and survive a JSON round trip.
type Content struct {
	ClientName string
	Items      []Item
	Total      decimal.Decimal
	Extra      map[string]any
}

const (
	contentClientName = "clientName"
	contentItems      = "items"
	contentTotal      = "total"
)

func (c Content) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+3)
	for k, v := range c.Extra {
		out[k] = v
	}
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	out[contentClientName] = c.ClientName
	out[contentItems] = items
	out[contentTotal] = c.Total
	return json.Marshal(out)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Content{}
	if v, ok := raw[contentClientName]; ok {
		if err := json.Unmarshal(v, &c.ClientName); err != nil {
			return fmt.Errorf("clientName: %w", err)
		}
		delete(raw, contentClientName)
	}
	if v, ok := raw[contentItems]; ok {
		if err := json.Unmarshal(v, &c.Items); err != nil {
			return fmt.Errorf("items: %w", err)
		}
		delete(raw, contentItems)
	}
	if v, ok := raw[contentTotal]; ok {
		if string(v) != "null" {
			if err := json.Unmarshal(v, &c.Total); err != nil {
				return fmt.Errorf("total: %w", err)
			}
		}
		delete(raw, contentTotal)
	}

	if len(raw) > 0 {
		c.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			c.Extra[k] = val
		}
	}

	return nil
}

// Fields flattens the content into the map consumed by template substitution.
func (c Content) Fields() map[string]any {
	fields := make(map[string]any, len(c.Extra)+3)
	for k, v := range c.Extra {
		fields[k] = v
	}
	fields[contentClientName] = c.ClientName
	fields[contentItems] = c.Items
	fields[contentTotal] = c.Total
	return fields
}
