package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 4
)

var _ Renderer = (*Bounded)(nil)

// Bounded enforces a wall-clock budget and a concurrency limit on another
// renderer and checks that its output is a readable PDF.
type Bounded struct {
	next    Renderer
	timeout time.Duration
	sem     *semaphore.Weighted
}

// NewBounded wraps next. Zero values select the defaults.
func NewBounded(next Renderer, timeout time.Duration, concurrency int64) *Bounded {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Bounded{
		next:    next,
		timeout: timeout,
		sem:     semaphore.NewWeighted(concurrency),
	}
}

type result struct {
	data []byte
	err  error
}

// Render runs the wrapped renderer. The slot taken from the concurrency limit
// is only given back once the wrapped call has returned, even after a timeout.
func (b *Bounded) Render(ctx context.Context, markup string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, b.contextError(ctx, err)
	}

	done := make(chan result, 1)
	go func() {
		defer b.sem.Release(1)
		data, err := b.next.Render(ctx, markup)
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		logrus.Warnf("render aborted after %v: %v", time.Since(start), ctx.Err())
		return nil, b.contextError(ctx, ctx.Err())
	case res := <-done:
		if res.err != nil {
			if ctx.Err() != nil {
				return nil, b.contextError(ctx, res.err)
			}
			if errors.Is(res.err, ErrRenderFailure) || errors.Is(res.err, ErrRenderTimeout) {
				return nil, res.err
			}
			return nil, fmt.Errorf("%w: %v", ErrRenderFailure, res.err)
		}

		pages, err := PageCount(res.data)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pdf: %v", ErrRenderFailure, err)
		}
		if pages < 1 {
			return nil, fmt.Errorf("%w: empty pdf", ErrRenderFailure)
		}

		logrus.Debugf("rendered %d page(s), %d bytes in %v", pages, len(res.data), time.Since(start))
		return res.data, nil
	}
}

func (b *Bounded) contextError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %v", ErrRenderTimeout, b.timeout)
	}
	return err
}

// Inspect is a convenience for callers holding a byte slice.
func Inspect(data []byte) (Info, error) {
	return inspect(bytes.NewReader(data))
}
