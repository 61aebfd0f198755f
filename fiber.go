// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// rootSite is the call-site token the root generator is entered under.
const rootSite = "root"

// Fiber is the persistent root handle of one generator tree. It owns the
// frame tree, the thread of the pass in progress and the plugin pipeline.
//
// A Fiber is not safe for concurrent use. [AsyncRoot] serializes passes;
// [Root] must be driven from a single goroutine.
type Fiber struct {
	id       uuid.UUID
	disposed bool
	root     *Frame
	head     *Frame
	thread   Thread
	plugins  []Plugin
	log      *zap.Logger
	metrics  *metrics
}

// NewFiber returns a fiber with an empty frame tree and the built-in
// plugins followed by any plugins passed with [WithPlugins].
func NewFiber(opts ...Option) *Fiber {
	c := newConfig(opts)
	id := uuid.New()
	root := NewFrame()
	log := c.logger.With(zap.String("fiber", c.name), zap.Stringer("fiber_id", id))
	m, err := newMetrics(c.registerer, c.name)
	if err != nil {
		log.Warn("metrics disabled", zap.Error(err))
	}
	return &Fiber{
		id:      id,
		root:    root,
		head:    root,
		plugins: append(builtins(), c.plugins...),
		log:     log,
		metrics: m,
	}
}

// ID returns the fiber's unique identifier.
func (f *Fiber) ID() uuid.UUID { return f.id }

// Root returns the permanent root frame.
func (f *Fiber) Root() *Frame { return f.root }

// Head returns the frame currently being populated. Between passes it is
// the root frame.
func (f *Fiber) Head() *Frame { return f.head }

// Thread returns the fiber's thread. It is empty between passes.
func (f *Fiber) Thread() *Thread { return &f.thread }

// Plugins returns the plugin pipeline in dispatch order.
func (f *Fiber) Plugins() []Plugin { return f.plugins }

// Disposed reports whether Dispose has been called. The flag is advisory.
func (f *Fiber) Disposed() bool { return f.disposed }

// Drive runs one pass: g is entered under the fixed root call site, every
// operation it yields is interpreted, and children of any frame that were
// not revisited are disposed on the way out.
//
// Errors raised with [Fail] or returned by plugins are returned unchanged
// after cleanup. Panics propagate after the same cleanup.
func Drive[A any](ctx context.Context, f *Fiber, g Gen[A]) (A, error) {
	if g == nil {
		panic(ErrNonGenerator)
	}
	if f.disposed {
		f.log.Warn("pass started on disposed fiber")
	}
	start := time.Now()
	v, err := f.enter(ctx, Map(g, toResumed[A]), rootSite)
	f.metrics.observeTick(start, err)
	if err != nil {
		f.log.Warn("pass failed", zap.Error(err))
		var zero A
		return zero, err
	}
	return cast[A](v), nil
}

// enter drives g as one scope. A non-empty site makes g an enhanced
// generator that owns the child frame named site under the current head.
func (f *Fiber) enter(ctx context.Context, g Gen[Resumed], site string) (Resumed, error) {
	if g == nil {
		panic(ErrNonGenerator)
	}
	parent := f.head
	mark := f.thread.Len()
	var frame *Frame
	if site != "" {
		f.thread.Push(site)
		frame = parent.child[site]
		if frame == nil {
			frame = NewFrame()
			parent.child[site] = frame
			f.metrics.frameCreated()
			if ce := f.log.Check(zap.DebugLevel, "frame created"); ce != nil {
				ce.Write(zap.String("path", f.thread.Path("")))
			}
		} else {
			frame.reenter()
		}
		delete(parent.unused, site)
		f.head = frame
	}
	defer func() {
		f.head = parent
		f.thread.truncate(mark)
		if frame != nil {
			f.sweep(frame)
		}
	}()
	return f.drive(ctx, g)
}

// drive resumes g until it completes, interpreting each yielded operation.
func (f *Fiber) drive(ctx context.Context, g Gen[Resumed]) (Resumed, error) {
	v, susp := Start(g)
	for susp != nil {
		r, err := f.dispatch(ctx, susp.Op())
		if err != nil {
			susp.Discard()
			return nil, err
		}
		v, susp = susp.Resume(r)
	}
	return v, nil
}

// dispatch interprets one yielded operation and returns the value to
// resume with.
func (f *Fiber) dispatch(ctx context.Context, op Operation) (Resumed, error) {
	switch o := op.(type) {
	case nil:
		return nil, nil
	case nested:
		return f.enter(ctx, o.erased(), o.callSite())
	case failure:
		return nil, o.err
	case awaiter:
		return o.await(ctx)
	}
	for _, p := range f.plugins {
		if !p.Matches(op) {
			continue
		}
		if cp, ok := p.(ContextPlugin); ok {
			return cp.ExecContext(ctx, op, &f.thread, f.head, f.plugins)
		}
		return p.Exec(op, &f.thread, f.head, f.plugins)
	}
	return op, nil
}

// sweep disposes every child of frame that was not revisited this pass.
func (f *Fiber) sweep(frame *Frame) {
	if len(frame.unused) == 0 {
		return
	}
	for _, lane := range frame.Unused() {
		child := frame.child[lane]
		n := child.count()
		DisposeRecursive(child, f.plugins)
		delete(frame.child, lane)
		f.metrics.framesDisposed(n)
		if ce := f.log.Check(zap.DebugLevel, "lane disposed"); ce != nil {
			ce.Write(zap.String("lane", lane), zap.Int("frames", n))
		}
	}
	clear(frame.unused)
}

// Dispose invokes every plugin's Dispose hook on every frame under the
// current head, whether or not it was visited in the last pass.
func (f *Fiber) Dispose() {
	n := f.head.count()
	DisposeRecursive(f.head, f.plugins)
	f.disposed = true
	f.metrics.framesDisposed(n)
	f.log.Debug("fiber disposed", zap.Int("frames", n))
}
