package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent_UnmarshalKeepsExtraFields(t *testing.T) {
	data := []byte(`{"clientName":"Acme","items":[{"description":"Widget","quantity":2,"price":10}],"total":0,"notes":"net 30","dueDate":"2026-11-01"}`)

	var c Content
	require.NoError(t, json.Unmarshal(data, &c))

	assert.Equal(t, "Acme", c.ClientName)
	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, c.Items[0].Price.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "net 30", c.Extra["notes"])
	assert.Equal(t, "2026-11-01", c.Extra["dueDate"])

	out, err := json.Marshal(c)
	require.NoError(t, err)

	var back Content
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, c.ClientName, back.ClientName)
	assert.Equal(t, c.Extra, back.Extra)
}

func TestContent_MarshalEmptyItems(t *testing.T) {
	out, err := json.Marshal(Content{ClientName: "Acme"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.Equal(t, []any{}, raw["items"])
}

func TestContent_AmountsAreNumbers(t *testing.T) {
	c := Content{
		ClientName: "Acme",
		Items:      []Item{{Description: "Widget", Quantity: decimal.NewFromInt(2), Price: decimal.RequireFromString("10.5")}},
		Total:      decimal.NewFromInt(21),
	}
	out, err := json.Marshal(c)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.Equal(t, float64(21), raw["total"])
	item := raw["items"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(2), item["quantity"])
	assert.Equal(t, 10.5, item["price"])
}

func TestContent_Fields(t *testing.T) {
	c := Content{ClientName: "Acme", Total: decimal.NewFromFloat(42.5), Extra: map[string]any{"ref": "PO-1"}}
	fields := c.Fields()

	assert.Equal(t, "Acme", fields["clientName"])
	assert.Equal(t, "PO-1", fields["ref"])
	assert.Equal(t, "42.5", fields["total"].(decimal.Decimal).String())
}

func TestNewNumber(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	assert.Equal(t, "INVOICE-1700000000000-3", NewNumber(DocumentTypeInvoice, at, 3))
	assert.Equal(t, "QUOTE-1700000000000-1", NewNumber(DocumentTypeQuote, at, 1))
}

func TestDocument_CanSend(t *testing.T) {
	tests := []struct {
		status DocumentStatus
		want   bool
	}{
		{"", true},
		{DocumentStatusDraft, true},
		{DocumentStatusSent, false},
		{DocumentStatusPaid, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			d := &Document{Status: tt.status}
			assert.Equal(t, tt.want, d.CanSend())
		})
	}
}

func TestUser_PrefsDefaults(t *testing.T) {
	var u *User
	p := u.Prefs()
	assert.Equal(t, DefaultTemplateName, p.DefaultTemplate)
	assert.Equal(t, DefaultLanguage, p.Language)
	assert.Equal(t, DefaultCurrency, p.Currency)
}
