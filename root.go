// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Root drives a root generator function on a fresh fiber, one pass per Tick.
//
// Root has no concurrency guard: Tick and Dispose must be called from a
// single goroutine. Use [AsyncRoot] when passes may overlap.
type Root[P, A any] struct {
	fiber *Fiber
	fn    func(P) Gen[A]
}

// NewRoot returns a Root driving fn.
//
// Example:
//
//	tick := fiber.NewRoot(func(n int) fiber.Gen[int] {
//		return fiber.Map(fiber.Ref(0), func(c *fiber.Cell[int]) int {
//			c.Current += n
//			return c.Current
//		})
//	})
//	tick.Tick(1) // 1
//	tick.Tick(2) // 3
func NewRoot[P, A any](fn func(P) Gen[A], opts ...Option) *Root[P, A] {
	return &Root[P, A]{fiber: NewFiber(opts...), fn: fn}
}

// Tick runs one pass of fn(p).
func (r *Root[P, A]) Tick(p P) (A, error) {
	return Drive(context.Background(), r.fiber, r.fn(p))
}

// Dispose tears down the whole frame tree.
func (r *Root[P, A]) Dispose() { r.fiber.Dispose() }

// Fiber returns the underlying fiber.
func (r *Root[P, A]) Fiber() *Fiber { return r.fiber }

// flightKey is the only key of an AsyncRoot's group: one pass at a time.
const flightKey = "tick"

// AsyncRoot drives a root generator function on a fresh fiber and is safe
// for concurrent use.
//
// A Tick issued while a pass is in flight does not start a new pass: it
// joins the pass in flight and returns its result. The argument of the
// joining call is ignored.
type AsyncRoot[P, A any] struct {
	fiber   *Fiber
	fn      func(P) Gen[A]
	mu      sync.Mutex
	group   singleflight.Group
	waiters atomic.Int64
}

// NewAsyncRoot returns an AsyncRoot driving fn.
func NewAsyncRoot[P, A any](fn func(P) Gen[A], opts ...Option) *AsyncRoot[P, A] {
	return &AsyncRoot[P, A]{fiber: NewFiber(opts...), fn: fn}
}

// Tick runs one pass of fn(p), or joins the pass already in flight.
//
// The pass runs with ctx's values but not its cancellation: a caller whose
// ctx ends stops waiting and gets ctx.Err(), while the pass itself runs to
// completion for the other callers.
func (r *AsyncRoot[P, A]) Tick(ctx context.Context, p P) (A, error) {
	var zero A
	r.waiters.Add(1)
	defer r.waiters.Add(-1)
	ch := r.group.DoChan(flightKey, func() (any, error) {
		return r.pass(context.WithoutCancel(ctx), p)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return cast[A](res.Val), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// pass runs one pass under the fiber lock. A panic in the pass is turned
// into an error so it reaches every joined caller instead of crashing the
// flight goroutine.
func (r *AsyncRoot[P, A]) pass(ctx context.Context, p P) (v any, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			r.fiber.log.Error("pass panicked", zap.Any("panic", rec))
			err = errors.Errorf("fiber: pass panicked: %v", rec)
		}
	}()
	return Drive(ctx, r.fiber, r.fn(p))
}

// Waiters returns the number of Tick calls currently waiting on a pass.
func (r *AsyncRoot[P, A]) Waiters() int { return int(r.waiters.Load()) }

// Dispose waits for the pass in flight, if any, then tears down the whole
// frame tree.
func (r *AsyncRoot[P, A]) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fiber.Dispose()
}

// Fiber returns the underlying fiber. It must not be used while a pass is
// in flight.
func (r *AsyncRoot[P, A]) Fiber() *Fiber { return r.fiber }
