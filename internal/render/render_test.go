package render

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const invoiceMarkup = `<html><head><style>h1{color:red}</style></head><body>
<h1>Facture INVOICE-1-1</h1>
<p>Client: <strong>Acme</strong><br>Paris</p>
<table>
<tr><th>Description</th><th>Quantité</th><th>Prix</th></tr>
<tr><td>Widget</td><td>2</td><td>10</td></tr>
</table>
<ul><li>first</li><li>second</li></ul>
<hr>
<p>Total: 20 €</p>
</body></html>`

func TestPDFRenderer_A4(t *testing.T) {
	data, err := NewPDFRenderer().Render(context.Background(), invoiceMarkup)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))

	info, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Pages)
	assert.InDelta(t, 595.28, info.Width, 1)
	assert.InDelta(t, 841.89, info.Height, 1)
}

func TestPDFRenderer_Deterministic(t *testing.T) {
	r := NewPDFRenderer()

	first, err := r.Render(context.Background(), invoiceMarkup)
	require.NoError(t, err)
	second, err := r.Render(context.Background(), invoiceMarkup)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPDFRenderer_Paginates(t *testing.T) {
	markup := "<table>"
	for i := 0; i < 200; i++ {
		markup += "<tr><td>line</td><td>1</td></tr>"
	}
	markup += "</table>"

	data, err := NewPDFRenderer().Render(context.Background(), markup)
	require.NoError(t, err)

	pages, err := PageCount(data)
	require.NoError(t, err)
	assert.Greater(t, pages, 1)
}

func TestPDFRenderer_PlainText(t *testing.T) {
	data, err := NewPDFRenderer().Render(context.Background(), "Hello Acme, total 20")
	require.NoError(t, err)

	pages, err := PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

type renderFunc func(ctx context.Context, markup string) ([]byte, error)

func (f renderFunc) Render(ctx context.Context, markup string) ([]byte, error) {
	return f(ctx, markup)
}

func TestBounded_Timeout(t *testing.T) {
	released := make(chan struct{})
	slow := renderFunc(func(ctx context.Context, markup string) ([]byte, error) {
		defer close(released)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	b := NewBounded(slow, 20*time.Millisecond, 1)
	_, err := b.Render(context.Background(), "<p>x</p>")
	assert.ErrorIs(t, err, ErrRenderTimeout)

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("wrapped renderer was not released")
	}

	// the slot is available again once the wrapped call has returned
	ok := renderFunc(func(ctx context.Context, markup string) ([]byte, error) {
		return NewPDFRenderer().Render(ctx, markup)
	})
	b.next = ok
	b.timeout = 5 * time.Second
	_, err = b.Render(context.Background(), "<p>x</p>")
	assert.NoError(t, err)
}

func TestBounded_WrapsFailure(t *testing.T) {
	broken := renderFunc(func(ctx context.Context, markup string) ([]byte, error) {
		return nil, errors.New("boom")
	})

	_, err := NewBounded(broken, time.Second, 1).Render(context.Background(), "<p>x</p>")
	assert.ErrorIs(t, err, ErrRenderFailure)
	assert.Contains(t, err.Error(), "boom")
}

func TestBounded_RejectsInvalidPDF(t *testing.T) {
	garbage := renderFunc(func(ctx context.Context, markup string) ([]byte, error) {
		return []byte("not a pdf"), nil
	})

	_, err := NewBounded(garbage, time.Second, 1).Render(context.Background(), "<p>x</p>")
	assert.ErrorIs(t, err, ErrRenderFailure)
}

func TestBounded_LimitsConcurrency(t *testing.T) {
	var running, peak int32
	r := renderFunc(func(ctx context.Context, markup string) ([]byte, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return NewPDFRenderer().Render(ctx, markup)
	})

	b := NewBounded(r, 5*time.Second, 2)
	var g errgroup.Group
	for i := 0; i < 6; i++ {
		g.Go(func() error {
			_, err := b.Render(context.Background(), "<p>x</p>")
			return err
		})
	}
	assert.NoError(t, g.Wait())
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestNew_UnknownEngine(t *testing.T) {
	_, err := New(Options{Engine: "wkhtmltopdf"})
	assert.ErrorIs(t, err, ErrUnknownEngine)

	b, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, b.timeout)
}
