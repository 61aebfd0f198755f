// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// Cell is a mutable box whose identity is stable across passes.
type Cell[T any] struct {
	Current T
}

type refOp[T any] struct {
	Phantom[*Cell[T]]
	site
	init T
}

func (o refOp[T]) newCell() any { return &Cell[T]{Current: o.init} }

type refRequest interface {
	Sited
	newCell() any
}

// Ref yields a request for a cell owned by this call site.
// The first visit creates the cell holding init; every later visit returns
// the same cell and ignores init.
func Ref[T any](init T) Gen[*Cell[T]] {
	return Perform(refOp[T]{site: site(CallSite(1)), init: init})
}

type refsKey struct{}

// refPlugin keeps one cell per thread path. Cells need no disposal.
type refPlugin struct{}

func (refPlugin) Matches(op Operation) bool {
	_, ok := op.(refRequest)
	return ok
}

func (refPlugin) Exec(op Operation, t *Thread, f *Frame, _ []Plugin) (Resumed, error) {
	req := op.(refRequest)
	refs := Attach(f, refsKey{}, func() map[string]any { return make(map[string]any) })
	p := t.Path(req.CallSite())
	if c, ok := refs[p]; ok {
		return c, nil
	}
	c := req.newCell()
	refs[p] = c
	return c, nil
}
