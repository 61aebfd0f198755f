// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "sync/atomic"

// Suspension represents a generator suspended on a yielded operation.
// It holds the pending operation and a one-shot resumption handle.
//
// Suspension enforces affine semantics: Resume may be called at most once.
// Calling Resume twice panics. Use Discard to force the generator to
// complete without running the rest of it.
type Suspension[A any] struct {
	used atomic.Uintptr
	op   Operation
	m    *marker
	fin  []*finalizer
}

// Op returns the operation the generator yielded.
func (s *Suspension[A]) Op() Operation { return s.op }

// Resume sends v back into the generator and drives it to its next yield.
// Returns either a completed value (with nil suspension) or the next suspension.
// Panics if the suspension has already been resumed or discarded.
func (s *Suspension[A]) Resume(v Resumed) (A, *Suspension[A]) {
	if s.used.Add(1) != 1 {
		panic("fiber: suspension resumed twice")
	}
	return classify[A](s.m.Resume(v), s.fin)
}

// TryResume attempts to advance the generator.
// Returns (value, suspension, true) on success, or (zero, nil, false) if already used.
func (s *Suspension[A]) TryResume(v Resumed) (A, *Suspension[A], bool) {
	if s.used.Add(1) != 1 {
		var zero A
		return zero, nil, false
	}
	a, next := classify[A](s.m.Resume(v), s.fin)
	return a, next, true
}

// Discard completes the generator without resuming it. Cleanups of every
// [Finally] scope the generator is suspended in run, innermost first.
// Discarding an already used suspension is a no-op.
func (s *Suspension[A]) Discard() {
	if s.used.Add(1) != 1 {
		return
	}
	s.m.release()
	for i := len(s.fin) - 1; i >= 0; i-- {
		s.fin[i].run()
	}
}

// Start drives a generator until it either completes or suspends.
// Returns (value, nil) if the generator completed, or (zero, suspension) if pending.
//
// Example:
//
//	v, susp := Start(g)
//	for susp != nil {
//	    v, susp = susp.Resume(handle(susp.Op()))
//	}
func Start[A any](g Gen[A]) (A, *Suspension[A]) {
	return classify[A](g(toResumed[A]), nil)
}

// classify examines a Resumed value and classifies it as either a
// completed value or a suspension carrying the continuation state.
// outer are the pending Finally scopes of the previous suspension.
func classify[A any](result Resumed, outer []*finalizer) (A, *Suspension[A]) {
	if m, ok := result.(*marker); ok {
		var zero A
		return zero, &Suspension[A]{op: m.op, m: m, fin: pending(outer, m.fin)}
	}
	return cast[A](result), nil
}
