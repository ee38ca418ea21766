// Package calc keeps the ordered line items of a document and derives its total.
package calc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emrgen/docgen/internal/model"
	"github.com/shopspring/decimal"
)

var (
	// ErrOutOfRange is returned when an item index does not name a position in the sequence.
	ErrOutOfRange = errors.New("item index out of range")
	// ErrInvalidField is returned for an unknown field or a value that cannot be applied to it.
	ErrInvalidField = errors.New("invalid item field")
)

// Field names an editable attribute of an item.
type Field string

const (
	FieldDescription Field = "description"
	FieldQuantity    Field = "quantity"
	FieldPrice       Field = "price"
)

// Total returns Σ quantity × price over items. The result is not rounded.
func Total(items []model.Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount())
	}
	return total
}

// Display rounds a total to two fraction digits.
func Display(total decimal.Decimal) string {
	return total.StringFixed(2)
}

// Sheet is the editable item sequence of one document.
type Sheet struct {
	items []model.Item
	total decimal.Decimal
}

// NewSheet copies items and computes their total.
func NewSheet(items []model.Item) *Sheet {
	s := &Sheet{items: append([]model.Item(nil), items...)}
	s.total = Total(s.items)
	return s
}

// Items returns a copy of the current sequence.
func (s *Sheet) Items() []model.Item {
	return append([]model.Item{}, s.items...)
}

func (s *Sheet) Total() decimal.Decimal {
	return s.total
}

func (s *Sheet) Len() int {
	return len(s.items)
}

// AddItem appends a zero-valued item. The total is unchanged since the new
// item contributes nothing until edited.
func (s *Sheet) AddItem() {
	s.items = append(s.items, model.Item{Quantity: decimal.Zero, Price: decimal.Zero})
}

// UpdateItem applies value to field of the item at index and recomputes the
// total over the whole sequence. On error the sequence is left untouched.
func (s *Sheet) UpdateItem(index int, field Field, value string) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(s.items))
	}

	item := s.items[index]
	switch field {
	case FieldDescription:
		item.Description = value
	case FieldQuantity, FieldPrice:
		n, err := parseAmount(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidField, field, err)
		}
		if field == FieldQuantity {
			item.Quantity = n
		} else {
			item.Price = n
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}

	s.items[index] = item
	s.total = Total(s.items)
	return nil
}

// Apply writes the sequence and its total into c.
func (s *Sheet) Apply(c *model.Content) {
	c.Items = s.Items()
	c.Total = s.total
}

func parseAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	n, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	if n.IsNegative() {
		return decimal.Zero, errors.New("must not be negative")
	}
	return n, nil
}

// Validate checks that every item of a sequence has non-negative amounts.
func Validate(items []model.Item) error {
	for i, item := range items {
		if item.Quantity.IsNegative() {
			return fmt.Errorf("%w: items[%d].quantity must not be negative", ErrInvalidField, i)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("%w: items[%d].price must not be negative", ErrInvalidField, i)
		}
	}
	return nil
}
