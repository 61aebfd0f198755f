// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// finalizer is one Finally scope. run is idempotent.
type finalizer struct {
	done    bool
	cleanup func()
}

func (f *finalizer) run() {
	if f.done {
		return
	}
	f.done = true
	f.cleanup()
}

// pending returns the scopes a new suspension is inside: the still open
// scopes of the previous suspension followed by the ones entered since,
// outermost first.
func pending(outer, entered []*finalizer) []*finalizer {
	if len(entered) == 0 && len(outer) == 0 {
		return nil
	}
	fin := make([]*finalizer, 0, len(outer)+len(entered))
	for _, f := range outer {
		if !f.done {
			fin = append(fin, f)
		}
	}
	for i := len(entered) - 1; i >= 0; i-- {
		fin = append(fin, entered[i])
	}
	return fin
}

// Finally runs g and then cleanup. cleanup also runs when the generator is
// discarded while suspended inside g: when a pass fails, when [Use] or
// [Memo] state is disposed, or when [Suspension.Discard] is called
// directly. cleanup runs at most once.
//
// Example:
//
//	fiber.Use[*Conn](func() fiber.Gen[struct{}] {
//		c := dial()
//		return fiber.Finally(fiber.Emit(c), c.Close)
//	})
func Finally[A any](g Gen[A], cleanup func()) Gen[A] {
	return func(k func(A) Resumed) Resumed {
		f := &finalizer{cleanup: cleanup}
		r := g(func(a A) Resumed {
			f.run()
			return k(a)
		})
		if m, ok := r.(*marker); ok && !f.done {
			m.fin = append(m.fin, f)
		}
		return r
	}
}

// Bracket acquires a resource, passes it to use and releases it once use
// completes or is discarded. release does not run if acquire never
// completes.
func Bracket[R, A any](acquire Gen[R], release func(R), use func(R) Gen[A]) Gen[A] {
	return Bind(acquire, func(r R) Gen[A] {
		return Finally(use(r), func() { release(r) })
	})
}
