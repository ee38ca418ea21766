package render

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// stamp is written as creation and modification date so identical markup
// yields identical bytes.
var stamp = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	fontFamily = "Helvetica"
	fontSize   = 10.0
	lineHeight = 5.0
	margin     = 10.0
)

var _ Renderer = (*PDFRenderer)(nil)

// PDFRenderer converts markup directly with gofpdf. It understands headings,
// paragraphs, line breaks, emphasis, lists, rules and tables; styling from CSS
// is ignored.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(ctx context.Context, markup string) ([]byte, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: parse markup: %v", ErrRenderFailure, err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", fontSize)

	w := &pdfWriter{
		ctx:  ctx,
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		size: fontSize,
	}
	w.walk(root)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pdf.Err() {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	ctx    context.Context
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	bold   int
	italic int
	size   float64
}

func (w *pdfWriter) style() string {
	s := ""
	if w.bold > 0 {
		s += "B"
	}
	if w.italic > 0 {
		s += "I"
	}
	return s
}

func (w *pdfWriter) applyFont() {
	w.pdf.SetFont(fontFamily, w.style(), w.size)
}

// newline ends the current line if something was written on it.
func (w *pdfWriter) newline() {
	left, _, _, _ := w.pdf.GetMargins()
	if w.pdf.GetX() > left+0.01 {
		w.pdf.Ln(lineHeight)
	}
}

func (w *pdfWriter) walk(n *html.Node) {
	if w.ctx.Err() != nil || w.pdf.Err() {
		return
	}

	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		w.element(n)
		return
	}

	w.children(n)
}

func (w *pdfWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *pdfWriter) text(s string) {
	s = collapse(s)
	if strings.TrimSpace(s) == "" {
		left, _, _, _ := w.pdf.GetMargins()
		if s == "" || w.pdf.GetX() <= left+0.01 {
			return
		}
	}
	w.pdf.Write(w.size*0.5, w.tr(s))
}

func (w *pdfWriter) element(n *html.Node) {
	switch n.DataAtom {
	case atom.Head, atom.Script, atom.Style, atom.Title, atom.Img:
		return
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level, _ := strconv.Atoi(n.Data[1:])
		w.newline()
		prev := w.size
		w.size = 20 - 2*float64(level-1)
		w.bold++
		w.applyFont()
		w.children(n)
		w.bold--
		w.size = prev
		w.applyFont()
		w.newline()
		w.pdf.Ln(2)
	case atom.P, atom.Div, atom.Section, atom.Header, atom.Footer, atom.Address:
		w.newline()
		w.children(n)
		w.newline()
		if n.DataAtom == atom.P {
			w.pdf.Ln(2)
		}
	case atom.Br:
		w.pdf.Ln(lineHeight)
	case atom.B, atom.Strong, atom.Th:
		w.bold++
		w.applyFont()
		w.children(n)
		w.bold--
		w.applyFont()
	case atom.I, atom.Em:
		w.italic++
		w.applyFont()
		w.children(n)
		w.italic--
		w.applyFont()
	case atom.Hr:
		w.newline()
		left, _, right, _ := w.pdf.GetMargins()
		pageW, _ := w.pdf.GetPageSize()
		y := w.pdf.GetY() + 1
		w.pdf.Line(left, y, pageW-right, y)
		w.pdf.Ln(3)
	case atom.Ul, atom.Ol:
		w.newline()
		w.list(n, n.DataAtom == atom.Ol)
		w.pdf.Ln(1)
	case atom.Table:
		w.newline()
		w.table(n)
		w.pdf.Ln(2)
	default:
		w.children(n)
	}
}

func (w *pdfWriter) list(n *html.Node, ordered bool) {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		i++
		bullet := "• "
		if ordered {
			bullet = strconv.Itoa(i) + ". "
		}
		w.pdf.Write(lineHeight, w.tr(bullet))
		w.children(c)
		w.newline()
	}
}

type cell struct {
	text   string
	header bool
}

func (w *pdfWriter) table(n *html.Node) {
	rows := collectRows(n)
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return
	}

	left, _, right, bottom := w.pdf.GetMargins()
	pageW, pageH := w.pdf.GetPageSize()
	colW := (pageW - left - right) / float64(cols)

	for _, row := range rows {
		lines := 1
		for _, c := range row {
			if l := len(w.pdf.SplitLines([]byte(w.tr(c.text)), colW-2)); l > lines {
				lines = l
			}
		}
		h := float64(lines) * lineHeight
		if w.pdf.GetY()+h > pageH-bottom {
			w.pdf.AddPage()
		}

		y := w.pdf.GetY()
		for i, c := range row {
			x := left + float64(i)*colW
			style := ""
			if c.header {
				style = "B"
			}
			w.pdf.SetFont(fontFamily, style, fontSize)
			w.pdf.Rect(x, y, colW, h, "D")
			w.pdf.SetXY(x, y)
			w.pdf.MultiCell(colW, lineHeight, w.tr(c.text), "", "L", false)
		}
		w.pdf.SetXY(left, y+h)
	}
	w.applyFont()
}

func collectRows(n *html.Node) [][]cell {
	var rows [][]cell
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var row []cell
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
					row = append(row, cell{
						text:   strings.TrimSpace(collapse(textContent(c))),
						header: c.DataAtom == atom.Th,
					})
				}
			}
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return rows
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Br {
			sb.WriteString(" ")
			continue
		}
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func collapse(s string) string {
	if s == "" {
		return s
	}
	fields := strings.Fields(s)
	out := strings.Join(fields, " ")
	if len(fields) == 0 {
		return " "
	}
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
