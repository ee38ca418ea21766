package substitute

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEngine_Execute(t *testing.T) {
	e := New(nil)

	tests := []struct {
		name     string
		template string
		content  map[string]any
		want     string
	}{
		{
			name:     "values",
			template: "Hello {{name}}, total {{total}}",
			content:  map[string]any{"name": "Acme", "total": 42.5},
			want:     "Hello Acme, total 42.5",
		},
		{
			name:     "whitespace around key",
			template: "{{ name }}|{{\tname\t}}",
			content:  map[string]any{"name": "Acme"},
			want:     "Acme|Acme",
		},
		{
			name:     "missing key renders blank",
			template: "{{missing}}",
			content:  map[string]any{},
			want:     "",
		},
		{
			name:     "empty token left verbatim",
			template: "a{{}}b",
			content:  map[string]any{"": "x"},
			want:     "a{{}}b",
		},
		{
			name:     "missing key inside text",
			template: "a{{missing}}b",
			content:  nil,
			want:     "ab",
		},
		{
			name:     "unterminated token kept verbatim",
			template: "{{open",
			content:  map[string]any{"open": "x"},
			want:     "{{open",
		},
		{
			name:     "single closing brace kept verbatim",
			template: "{{open} tail",
			content:  map[string]any{"open": "x"},
			want:     "{{open} tail",
		},
		{
			name:     "no tokens",
			template: "<p>Plain</p>",
			content:  map[string]any{"name": "Acme"},
			want:     "<p>Plain</p>",
		},
		{
			name:     "repeated token",
			template: "{{n}}-{{n}}",
			content:  map[string]any{"n": 1},
			want:     "1-1",
		},
		{
			name:     "non greedy",
			template: "{{a}}{{b}}",
			content:  map[string]any{"a": "A", "b": "B"},
			want:     "AB",
		},
		{
			name:     "no nesting",
			template: "{{a {{b}} c}}",
			content:  map[string]any{"b": "B"},
			want:     "{{a B c}}",
		},
		{
			name:     "dotted key",
			template: "{{user.companyName}}",
			content:  map[string]any{"user": map[string]any{"companyName": "Acme SAS"}},
			want:     "Acme SAS",
		},
		{
			name:     "decimal",
			template: "{{total}}",
			content:  map[string]any{"total": decimal.NewFromInt(20)},
			want:     "20",
		},
		{
			name:     "escaped",
			template: "{{name}}",
			content:  map[string]any{"name": "<b>Tom & Jerry</b>"},
			want:     "&lt;b&gt;Tom &amp; Jerry&lt;/b&gt;",
		},
		{
			name:     "raw",
			template: "{{rows}}",
			content:  map[string]any{"rows": Raw("<tr></tr>")},
			want:     "<tr></tr>",
		},
		{
			name:     "nil value",
			template: "[{{v}}]",
			content:  map[string]any{"v": nil},
			want:     "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Execute(tt.template, tt.content))
		})
	}
}

func TestEngine_IdempotentWithoutTokens(t *testing.T) {
	e := New(Helpers("fr", "EUR"))
	markup := "<html><body><h1>Facture</h1></body></html>"

	once := e.Execute(markup, map[string]any{"x": 1})
	assert.Equal(t, markup, once)
	assert.Equal(t, once, e.Execute(once, map[string]any{"x": 1}))
}

func TestEngine_Helpers(t *testing.T) {
	e := New(Helpers("fr", "EUR"))
	content := map[string]any{
		"quantity":  2,
		"price":     "10.5",
		"status":    "paid",
		"createdAt": time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC),
		"total":     decimal.RequireFromString("12.5"),
	}

	assert.Equal(t, "21.00", e.Execute("{{ multiply quantity price }}", content))
	assert.Equal(t, "true", e.Execute(`{{ eq status "paid" }}`, content))
	assert.Equal(t, "false", e.Execute(`{{ eq status "sent" }}`, content))
	assert.Equal(t, "15 octobre 2026", e.Execute("{{ formatDate createdAt }}", content))
	assert.Equal(t, "", e.Execute("{{ multiply quantity missing }}", content))
	assert.Equal(t, "", e.Execute("{{ multiply quantity }}", content))

	assert.Equal(t, "12,50 €", spaces(e.Execute("{{ formatMoney total }}", content)))
}

func TestEngine_FormatMoney(t *testing.T) {
	content := map[string]any{"total": decimal.RequireFromString("1234.5")}

	tests := []struct {
		lang, currency string
		want           string
	}{
		{"fr", "EUR", "1 234,50 €"},
		{"de", "EUR", "1.234,50 €"},
		{"en", "USD", "$1,234.50"},
		{"en", "GBP", "£1,234.50"},
		{"fr", "bogus", "1 234,50 €"},
	}
	for _, tt := range tests {
		t.Run(tt.lang+"_"+tt.currency, func(t *testing.T) {
			e := New(Helpers(tt.lang, tt.currency))
			assert.Equal(t, tt.want, spaces(e.Execute("{{ formatMoney total }}", content)))
		})
	}
}

// spaces folds the no-break spaces used by locale formatting into plain spaces.
func spaces(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
}

func TestEngine_HelperNameAsKey(t *testing.T) {
	e := New(Helpers("en", "USD"))
	assert.Equal(t, "yes", e.Execute("{{eq}}", map[string]any{"eq": "yes"}))
	assert.Equal(t, "October 15, 2026", e.Execute(`{{ formatDate "2026-10-15" }}`, nil))
}

func TestEngine_Keys(t *testing.T) {
	e := New(Helpers("fr", "EUR"))
	keys := e.Keys(`{{clientName}} {{ formatMoney total }} {{clientName}} {{ eq status "paid" }} {{open`)
	assert.Equal(t, []string{"clientName", "total", "status"}, keys)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "42.5", Stringify(42.5))
	assert.Equal(t, "20", Stringify(20.0))
	assert.Equal(t, "7", Stringify(int64(7)))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "2026-10-15", Stringify(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", Stringify(nil))
}
