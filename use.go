// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

type useOp[A any] struct {
	Phantom[A]
	site
	factory func() Gen[struct{}]
}

func (o useOp[A]) spawn() (Resumed, *Suspension[struct{}]) {
	if o.factory == nil {
		panic(ErrNonGenerator)
	}
	return first(o.factory())
}

type useRequest interface {
	Sited
	spawn() (Resumed, *Suspension[struct{}])
}

// Use embeds a persistent sub-generator at this call site.
//
// The first visit calls factory, drives the sub-generator to its first
// [Emit] and returns the emitted value. Every later visit resumes the same
// sub-generator once and returns the next emitted value, or the zero A
// once it has completed. Disposing the frame forces the sub-generator to
// complete: the code after its pending Emit does not run, but cleanups of
// the [Finally] scopes it is suspended in do.
func Use[A any](factory func() Gen[struct{}]) Gen[A] {
	return Perform(useOp[A]{site: site(CallSite(1)), factory: factory})
}

type usesKey struct{}

// usePlugin caches one suspended sub-generator per thread path.
type usePlugin struct{}

func (usePlugin) Matches(op Operation) bool {
	_, ok := op.(useRequest)
	return ok
}

func (usePlugin) Exec(op Operation, t *Thread, f *Frame, _ []Plugin) (Resumed, error) {
	req := op.(useRequest)
	uses := Attach(f, usesKey{}, func() map[string]*Suspension[struct{}] {
		return make(map[string]*Suspension[struct{}])
	})
	p := t.Path(req.CallSite())
	if s, ok := uses[p]; ok {
		v, next := advance(s)
		uses[p] = next
		return v, nil
	}
	v, s := req.spawn()
	uses[p] = s
	return v, nil
}

func (usePlugin) Dispose(f *Frame) {
	uses, ok := Lookup[map[string]*Suspension[struct{}]](f, usesKey{})
	if !ok {
		return
	}
	for _, s := range uses {
		if s != nil {
			s.Discard()
		}
	}
	Detach(f, usesKey{})
}

// first starts a sub-generator and returns what it emits first.
// A sub-generator that completes without emitting yields nil and no suspension.
func first(g Gen[struct{}]) (Resumed, *Suspension[struct{}]) {
	_, s := Start(g)
	if s == nil {
		return nil, nil
	}
	return payloadOf(s.Op()), s
}

// advance resumes a suspended sub-generator once.
func advance(s *Suspension[struct{}]) (Resumed, *Suspension[struct{}]) {
	if s == nil {
		return nil, nil
	}
	_, next := s.Resume(nil)
	if next == nil {
		return nil, nil
	}
	return payloadOf(next.Op()), next
}
