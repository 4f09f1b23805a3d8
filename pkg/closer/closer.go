// Package closer runs registered shutdown functions in reverse order of
// registration.
package closer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	defaultForcedTimeout = 2 * time.Second

	// allClosed is returned by gracefulClose when every function ran.
	allClosed = -1
)

// Func releases one resource.
type Func func(ctx context.Context) error

// Closer is safe for concurrent Add calls. Close runs at most once.
type Closer struct {
	mu            sync.Mutex
	funcs         []Func
	once          sync.Once
	forcedTimeout time.Duration
}

// New returns a Closer. forcedTimeout bounds the parallel close of the
// functions left over when Close's context expires; zero means two seconds.
func New(forcedTimeout time.Duration) *Closer {
	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}
	return &Closer{forcedTimeout: forcedTimeout}
}

// Add registers f. Functions added last are closed first.
func (c *Closer) Add(f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs = append(c.funcs, f)
}

// Close runs the registered functions one by one, newest first. If ctx is done
// before they all return, the rest are run in parallel with a fresh deadline.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		funcs := c.funcs
		c.mu.Unlock()

		stopIdx, errs := gracefulClose(ctx, funcs)
		if stopIdx == allClosed {
			err = errors.Join(errs...)
			return
		}

		errs = append(errs, c.forcedClose(funcs[:stopIdx+1])...)
		err = fmt.Errorf("shutdown interrupted after %d/%d funcs: %w",
			len(funcs)-1-stopIdx, len(funcs), errors.Join(errs...))
	})
	return err
}

// gracefulClose returns the index of the function that was running when ctx
// ended, or allClosed.
func gracefulClose(ctx context.Context, funcs []Func) (int, []error) {
	var errs []error
	for i := len(funcs) - 1; i >= 0; i-- {
		f := funcs[i]
		done := make(chan error, 1)
		go func() {
			done <- f(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, err)
			}
		case <-ctx.Done():
			return i, errs
		}
	}
	return allClosed, errs
}

func (c *Closer) forcedClose(funcs []Func) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, f := range funcs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("forced: %w", err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
