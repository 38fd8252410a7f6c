// Package testing provides test utilities for the wavehist project:
// waveform fixtures and safe error collection from goroutines.
package testing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/xtxerr/wavehist/internal/storage/types"
)

// =============================================================================
// Waveform Fixtures
// =============================================================================

// Segment builds a waveform from literal values.
func Segment(t0, dt float64, y ...float64) types.Waveform {
	return types.NewWaveform(types.Timestamp(t0), dt, y)
}

// Ramp builds a waveform of n samples with values from, from+1, ...
func Ramp(t0, dt float64, n int, from float64) types.Waveform {
	y := make([]float64, n)
	for i := range y {
		y[i] = from + float64(i)
	}
	return types.NewWaveform(types.Timestamp(t0), dt, y)
}

// Contiguous builds count back-to-back ramps of n samples each, so that
// segment i starts where segment i-1 ends.
func Contiguous(count, n int, dt float64) []types.Waveform {
	ws := make([]types.Waveform, count)
	for i := range ws {
		t0 := float64(i*n) * dt
		ws[i] = Ramp(t0, dt, n, float64(i*n))
	}
	return ws
}

// =============================================================================
// Error Channel Pattern
// =============================================================================

// GoroutineTest collects errors from goroutines.
//
// t.Fatal and t.FailNow must not be called outside the test goroutine.
// Functions passed to Go return an error instead, and Wait reports them.
//
//	gt := testing.NewGoroutineTest(t)
//	gt.Go(func() error { return svc.Push(w) })
//	gt.Wait()
type GoroutineTest struct {
	t      *testing.T
	wg     sync.WaitGroup
	errors chan error
	ctx    context.Context
	cancel context.CancelFunc
}

// NewGoroutineTest creates a new GoroutineTest helper.
func NewGoroutineTest(t *testing.T) *GoroutineTest {
	return NewGoroutineTestWithTimeout(t, 0)
}

// NewGoroutineTestWithTimeout creates a GoroutineTest whose context
// expires after timeout. A zero timeout never expires.
func NewGoroutineTestWithTimeout(t *testing.T, timeout time.Duration) *GoroutineTest {
	ctx, cancel := context.WithCancel(context.Background())
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	}
	return &GoroutineTest{
		t:      t,
		errors: make(chan error, 100),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Go runs fn in a goroutine and collects its error.
func (gt *GoroutineTest) Go(fn func() error) {
	gt.wg.Add(1)
	go func() {
		defer gt.wg.Done()
		if err := fn(); err != nil {
			select {
			case gt.errors <- err:
			default:
				gt.t.Logf("error channel full, dropping error: %v", err)
			}
		}
	}()
}

// GoWithContext runs fn with the test context in a goroutine.
func (gt *GoroutineTest) GoWithContext(fn func(ctx context.Context) error) {
	gt.Go(func() error { return fn(gt.ctx) })
}

// Wait waits for all goroutines and fails the test if any returned an error.
func (gt *GoroutineTest) Wait() {
	gt.t.Helper()

	gt.wg.Wait()
	gt.cancel()
	close(gt.errors)

	var errs []error
	for err := range gt.errors {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		gt.t.Errorf("goroutine test failed with %d error(s):", len(errs))
		for i, err := range errs {
			gt.t.Errorf("  [%d] %v", i+1, err)
		}
		gt.t.FailNow()
	}
}

// Context returns the context for this test.
func (gt *GoroutineTest) Context() context.Context {
	return gt.ctx
}

// Cancel cancels the context, signaling goroutines to stop.
func (gt *GoroutineTest) Cancel() {
	gt.cancel()
}

// =============================================================================
// Assertions returning errors (usable inside goroutines)
// =============================================================================

// AssertEqual returns an error if got != want.
func AssertEqual[T comparable](got, want T, msg string) error {
	if got != want {
		return fmt.Errorf("%s: got %v, want %v", msg, got, want)
	}
	return nil
}

// AssertNoError returns a wrapped error if err is not nil.
func AssertNoError(err error, msg string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return nil
}
