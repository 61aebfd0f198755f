// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "context"

// Gen is a generator: a continuation-passing computation that produces a
// value of type A and may suspend any number of times on yielded operations.
//
// The function receives a continuation k representing "the rest of the
// generator". A generator that suspends returns a suspension marker instead
// of calling k; [Start] and [Suspension.Resume] drive it one yield at a time.
type Gen[A any] func(k func(A) Resumed) Resumed

// Pure lifts a value into a generator that completes without yielding.
func Pure[A any](a A) Gen[A] {
	return func(k func(A) Resumed) Resumed {
		return k(a)
	}
}

// Lazy defers building a generator until it is driven.
// Side effects in f run each time the generator runs, not when Lazy is called.
func Lazy[A any](f func() Gen[A]) Gen[A] {
	return func(k func(A) Resumed) Resumed {
		return f()(k)
	}
}

// Do runs f when the generator is driven and completes without yielding.
func Do(f func()) Gen[struct{}] {
	return func(k func(struct{}) Resumed) Resumed {
		f()
		return k(struct{}{})
	}
}

// Bind sequences two generators.
// It runs m, then passes the result to f to get the generator to continue with.
func Bind[A, B any](m Gen[A], f func(A) Gen[B]) Gen[B] {
	return func(k func(B) Resumed) Resumed {
		return m(func(a A) Resumed {
			return f(a)(k)
		})
	}
}

// Map applies a pure function to the result of a generator.
func Map[A, B any](m Gen[A], f func(A) B) Gen[B] {
	return func(k func(B) Resumed) Resumed {
		return m(func(a A) Resumed {
			return k(f(a))
		})
	}
}

// Then sequences two generators, discarding the first result.
func Then[A, B any](m Gen[A], n Gen[B]) Gen[B] {
	return func(k func(B) Resumed) Resumed {
		return m(func(_ A) Resumed {
			return n(k)
		})
	}
}

// ForEach runs body for every element of items in order.
// All bodies share the call sites written inside body; use [Key] to give
// iterations distinct identities.
func ForEach[T any](items []T, body func(i int, item T) Gen[struct{}]) Gen[struct{}] {
	var step func(i int) Gen[struct{}]
	step = func(i int) Gen[struct{}] {
		if i >= len(items) {
			return Pure(struct{}{})
		}
		return Then(body(i, items[i]), Lazy(func() Gen[struct{}] { return step(i + 1) }))
	}
	return Lazy(func() Gen[struct{}] { return step(0) })
}

// failure aborts the driving pass with err.
type failure struct{ err error }

// Fail aborts the pass that drives this generator with err.
// The interpreter unwinds every active scope, runs its cleanup, and
// returns err unchanged to the caller of Tick.
func Fail[A any](err error) Gen[A] {
	return func(k func(A) Resumed) Resumed {
		m := acquireMarker()
		m.op = failure{err: err}
		m.k = k
		m.resume = typedResume[A]
		return m
	}
}

// awaiter is a blocking step run by the interpreter with the pass context.
type awaiter interface {
	await(ctx context.Context) (Resumed, error)
}

type awaitOp[A any] struct {
	Phantom[A]
	f func(context.Context) (A, error)
}

func (o awaitOp[A]) await(ctx context.Context) (Resumed, error) {
	return o.f(ctx)
}

// Await suspends the generator on f. The interpreter calls f with the
// context of the current pass and resumes with its result, or aborts the
// pass with its error.
func Await[A any](f func(ctx context.Context) (A, error)) Gen[A] {
	return Perform(awaitOp[A]{f: f})
}
