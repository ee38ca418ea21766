// Package render turns substituted markup into A4 PDF documents.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRenderTimeout is returned when rendering exceeds its time budget.
	ErrRenderTimeout = errors.New("render timed out")
	// ErrRenderFailure is returned when the rendering engine cannot produce a PDF.
	ErrRenderFailure = errors.New("render failed")
	// ErrUnknownEngine is returned for an unsupported engine name.
	ErrUnknownEngine = errors.New("unknown render engine")
)

const (
	EngineGofpdf = "gofpdf"
	EngineChrome = "chrome"
)

// A4 paper size.
const (
	A4WidthMM    = 210.0
	A4HeightMM   = 297.0
	A4WidthInch  = 8.27
	A4HeightInch = 11.69
)

// Renderer converts markup to PDF bytes.
type Renderer interface {
	Render(ctx context.Context, markup string) ([]byte, error)
}

// Options configures New.
type Options struct {
	Engine      string
	Timeout     time.Duration
	Concurrency int64
	ChromePath  string
}

// New builds the configured engine wrapped in a Bounded renderer.
func New(opts Options) (*Bounded, error) {
	var engine Renderer
	switch opts.Engine {
	case "", EngineGofpdf:
		engine = NewPDFRenderer()
	case EngineChrome:
		engine = NewChromeRenderer(opts.ChromePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, opts.Engine)
	}

	return NewBounded(engine, opts.Timeout, opts.Concurrency), nil
}
