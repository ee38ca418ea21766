// Package substitute replaces {{key}} placeholders in template markup with
// document values. Missing keys render blank and malformed tokens are kept
// verbatim, so a partially filled document always renders.
package substitute

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// tokens never contain braces, so they cannot nest and `{{` without a
// matching `}}` never matches.
var tokenPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Raw is a value inserted without HTML escaping.
type Raw string

// Func is a helper callable from a token, e.g. {{ formatMoney total }}.
type Func func(args ...any) (any, error)

// FuncMap maps helper names to helpers.
type FuncMap map[string]Func

// Engine substitutes tokens. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	funcs  FuncMap
	escape bool
}

// New creates an engine that HTML-escapes substituted values.
func New(funcs FuncMap) *Engine {
	if funcs == nil {
		funcs = FuncMap{}
	}
	return &Engine{funcs: funcs, escape: true}
}

// NewPlain creates an engine for plain text output.
func NewPlain(funcs FuncMap) *Engine {
	e := New(funcs)
	e.escape = false
	return e
}

// Execute returns markup with every token replaced.
func (e *Engine) Execute(markup string, content map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(markup, func(token string) string {
		expr := strings.TrimSpace(token[2 : len(token)-2])
		value, ok := e.eval(expr, content)
		if !ok {
			return ""
		}
		return e.format(value)
	})
}

// Keys lists the distinct content keys referenced by markup, in order of appearance.
func (e *Engine) Keys(markup string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range tokenPattern.FindAllStringSubmatch(markup, -1) {
		args := splitArgs(strings.TrimSpace(m[1]))
		if len(args) == 0 {
			continue
		}
		if _, isFunc := e.funcs[args[0]]; isFunc && len(args) > 1 {
			args = args[1:]
		}
		for _, arg := range args {
			if isLiteral(arg) || seen[arg] {
				continue
			}
			seen[arg] = true
			keys = append(keys, arg)
		}
	}
	return keys
}

func (e *Engine) eval(expr string, content map[string]any) (any, bool) {
	if expr == "" {
		return nil, false
	}

	args := splitArgs(expr)
	if len(args) < 2 {
		return lookup(content, expr)
	}

	fn, ok := e.funcs[args[0]]
	if !ok {
		return lookup(content, expr)
	}

	values := make([]any, 0, len(args)-1)
	for _, arg := range args[1:] {
		values = append(values, resolve(content, arg))
	}
	out, err := fn(values...)
	if err != nil {
		return nil, false
	}
	return out, true
}

func (e *Engine) format(value any) string {
	if raw, ok := value.(Raw); ok {
		return string(raw)
	}
	s := Stringify(value)
	if e.escape {
		return html.EscapeString(s)
	}
	return s
}

// Stringify returns the string form of a content value. Numbers carry no
// trailing zeros: 42.5 renders "42.5" and 20 renders "20".
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case Raw:
		return string(v)
	case decimal.Decimal:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.DateOnly)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// lookup finds key in content, walking nested maps for dotted keys.
func lookup(content map[string]any, key string) (any, bool) {
	if v, ok := content[key]; ok {
		return v, v != nil
	}

	parts := strings.Split(key, ".")
	if len(parts) < 2 {
		return nil, false
	}

	var cur any = content
	for _, part := range parts {
		switch m := cur.(type) {
		case map[string]any:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]string:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

func resolve(content map[string]any, arg string) any {
	if len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"' {
		return arg[1 : len(arg)-1]
	}
	if n, err := decimal.NewFromString(arg); err == nil {
		return n
	}
	v, _ := lookup(content, arg)
	return v
}

func isLiteral(arg string) bool {
	if strings.HasPrefix(arg, `"`) {
		return true
	}
	_, err := decimal.NewFromString(arg)
	return err == nil
}

// splitArgs splits on whitespace, keeping double-quoted strings together.
func splitArgs(expr string) []string {
	var (
		args   []string
		cur    strings.Builder
		quoted bool
	)
	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == '"':
			cur.WriteRune(r)
			if quoted {
				flush()
			}
			quoted = !quoted
		case !quoted && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return args
}
