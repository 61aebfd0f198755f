// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// Operation is the interface for values a generator yields.
// All values seen by Plugin.Matches and Plugin.Exec implement this interface.
type Operation any

// Resumed is the interface for values flowing back into a generator
// at its suspension point.
type Resumed = any

// Op is the F-bounded interface for typed effect operations.
// The self-referencing constraint lets [Perform] infer the value the
// operation resumes with from the operation type alone.
//
// Example:
//
//	type Now struct{ fiber.Phantom[time.Time] }
//	t := fiber.Perform(Now{}) // Gen[time.Time]
type Op[O Op[O, A], A any] interface {
	OpResult() A // phantom type marker for result
}

// Phantom is an embeddable zero-size type that provides the [Op] result marker.
type Phantom[A any] struct{}

// OpResult implements the phantom type marker for [Op].
func (Phantom[A]) OpResult() A { panic("phantom") }

// Perform yields op and suspends the generator until the driver resumes it.
// The value the driver resumes with becomes the result of the returned
// generator.
func Perform[O Op[O, A], A any](op O) Gen[A] {
	return func(k func(A) Resumed) Resumed {
		m := acquireMarker()
		m.op = op
		m.k = k
		m.resume = typedResume[A]
		return m
	}
}

// Yield yields an arbitrary payload and resumes with whatever the driver
// sends back, asserted to A. A nil resume value becomes the zero A.
func Yield[A any](payload any) Gen[A] {
	return func(k func(A) Resumed) Resumed {
		m := acquireMarker()
		m.op = payload
		m.k = k
		m.resume = typedResume[A]
		return m
	}
}

// Emit yields v from a sub-generator driven by [Use] or [Memo].
// The driving plugin hands v to the outer generator and later resumes
// the sub-generator with nothing.
func Emit[A any](v A) Gen[struct{}] {
	return func(k func(struct{}) Resumed) Resumed {
		m := acquireMarker()
		m.op = emitted[A]{value: v}
		m.k = k
		m.resume = discardResume
		return m
	}
}

// emitted wraps values produced by Emit so drivers can tell them apart
// from effect requests.
type emitted[A any] struct{ value A }

func (e emitted[A]) emittedValue() any { return e.value }

type emitter interface{ emittedValue() any }

// payloadOf unwraps an Emit payload; other operations are returned as is.
func payloadOf(op Operation) any {
	if e, ok := op.(emitter); ok {
		return e.emittedValue()
	}
	return op
}

func typedResume[A any](m *marker, v Resumed) Resumed {
	k := m.k.(func(A) Resumed)
	releaseMarker(m)
	return k(cast[A](v))
}

func discardResume(m *marker, _ Resumed) Resumed {
	k := m.k.(func(struct{}) Resumed)
	releaseMarker(m)
	return k(struct{}{})
}

// cast asserts v to A, mapping nil to the zero A.
func cast[A any](v Resumed) A {
	if v == nil {
		var zero A
		return zero
	}
	return v.(A)
}

// toResumed is the identity continuation for Start.
// Named generic function produces a static function value per type
// instantiation, avoiding the heap allocation that anonymous closures incur.
func toResumed[A any](a A) Resumed { return a }
