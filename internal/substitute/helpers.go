package substitute

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var errArity = errors.New("wrong number of arguments")

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// Helpers returns the document helpers bound to a language and an ISO 4217
// currency code:
//
//	eq a b            "true" when both values have the same string form
//	formatDate d      long date, e.g. "15 octobre 2026" for fr
//	multiply a b      product with two fraction digits
//	formatMoney n     amount with currency symbol
func Helpers(lang, currencyCode string) FuncMap {
	tag := language.Make(lang)
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.EUR
	}
	printer := message.NewPrinter(tag)
	base, _ := tag.Base()

	return FuncMap{
		"eq": func(args ...any) (any, error) {
			if len(args) != 2 {
				return nil, errArity
			}
			return Stringify(args[0]) == Stringify(args[1]), nil
		},
		"formatDate": func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, errArity
			}
			t, err := toTime(args[0])
			if err != nil {
				return nil, err
			}
			return longDate(base.String(), t), nil
		},
		"multiply": func(args ...any) (any, error) {
			if len(args) != 2 {
				return nil, errArity
			}
			a, err := ToDecimal(args[0])
			if err != nil {
				return nil, err
			}
			b, err := ToDecimal(args[1])
			if err != nil {
				return nil, err
			}
			return a.Mul(b).StringFixed(2), nil
		},
		"formatMoney": func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, errArity
			}
			n, err := ToDecimal(args[0])
			if err != nil {
				return nil, err
			}
			f, _ := n.Round(2).Float64()
			return money(base.String(), printer.Sprint(currency.Symbol(unit.Amount(f)))), nil
		},
	}
}

// ToDecimal converts a content value to a decimal.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	case nil:
		return decimal.Zero, errors.New("missing value")
	default:
		return decimal.Zero, fmt.Errorf("not a number: %T", v)
	}
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", t)
	default:
		return time.Time{}, fmt.Errorf("not a date: %T", v)
	}
}

// symbolAfter lists the languages writing the currency symbol after the amount.
var symbolAfter = map[string]bool{
	"fr": true, "de": true, "es": true, "it": true, "pt": true,
	"pl": true, "cs": true, "sv": true, "fi": true, "da": true, "nb": true,
}

// money reorders a "<symbol> <amount>" string from the currency formatter
// into the layout of lang.
func money(lang, formatted string) string {
	sym, amount, ok := strings.Cut(formatted, " ")
	if !ok {
		return formatted
	}
	if symbolAfter[lang] {
		return amount + "\u00a0" + sym
	}
	return sym + amount
}

func longDate(lang string, t time.Time) string {
	if lang == "fr" {
		return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
	}
	return t.Format("January 2, 2006")
}
