// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

type memoOp[A any] struct {
	Phantom[A]
	site
	factory func(deps []any) Gen[struct{}]
	deps    []any
}

func (o memoOp[A]) dependencies() []any { return o.deps }

func (o memoOp[A]) start() (Resumed, *Suspension[struct{}]) {
	if o.factory == nil {
		panic(ErrNonGenerator)
	}
	return first(o.factory(o.deps))
}

type memoRequest interface {
	Sited
	dependencies() []any
	start() (Resumed, *Suspension[struct{}])
}

// Memo caches a sub-computation per call site, keyed by deps.
//
// The first visit calls factory(deps), drives it to its first [Emit] and
// returns the emitted value. Later visits with identical deps (see
// [SameDeps]) return the cached value without calling factory. When deps
// change, the cached sub-generator is resumed once so the code after its
// Emit can release what it created, and a new one is started.
// Disposing the frame resumes every cached sub-generator one final time.
//
// Example:
//
//	fiber.Memo[*Buffer](func(deps []any) fiber.Gen[struct{}] {
//		buf := device.NewBuffer(deps[0].(int))
//		return fiber.Then(fiber.Emit(buf), fiber.Do(buf.Release))
//	}, size)
func Memo[A any](factory func(deps []any) Gen[struct{}], deps ...any) Gen[A] {
	return Perform(memoOp[A]{site: site(CallSite(1)), factory: factory, deps: deps})
}

type memosKey struct{}

type memoEntry struct {
	susp  *Suspension[struct{}]
	deps  []any
	value Resumed
}

// finalize resumes the cached sub-generator once and drops whatever it
// yields afterwards.
func (e *memoEntry) finalize() {
	if _, next := advance(e.susp); next != nil {
		next.Discard()
	}
	e.susp = nil
}

// memoPlugin caches one memo entry per thread path.
type memoPlugin struct{}

func (memoPlugin) Matches(op Operation) bool {
	_, ok := op.(memoRequest)
	return ok
}

func (memoPlugin) Exec(op Operation, t *Thread, f *Frame, _ []Plugin) (Resumed, error) {
	req := op.(memoRequest)
	memos := Attach(f, memosKey{}, func() map[string]*memoEntry { return make(map[string]*memoEntry) })
	p := t.Path(req.CallSite())
	deps := req.dependencies()
	if e, ok := memos[p]; ok {
		if SameDeps(e.deps, deps) {
			return e.value, nil
		}
		e.finalize()
	}
	v, s := req.start()
	memos[p] = &memoEntry{susp: s, deps: deps, value: v}
	return v, nil
}

func (memoPlugin) Dispose(f *Frame) {
	memos, ok := Lookup[map[string]*memoEntry](f, memosKey{})
	if !ok {
		return
	}
	for _, e := range memos {
		e.finalize()
	}
	Detach(f, memosKey{})
}
