// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"fmt"
	"slices"
)

// keyPrefix marks key segments in a thread path.
const keyPrefix = "#"

type keyOp struct {
	Phantom[func()]
	site
	id string
}

// Key pushes id onto the active thread path and resumes with an unkey
// function that pops it again. Everything keyed by thread path between the
// two calls gets an identity distinct per id, even when the call sites are
// the same, as in the body of a loop:
//
//	fiber.ForEach(items, func(_ int, it Item) fiber.Gen[struct{}] {
//		return fiber.Bind(fiber.Key(it.ID), func(unkey func()) fiber.Gen[struct{}] {
//			return fiber.Then(draw(it), fiber.Do(unkey))
//		})
//	})
//
// Calling unkey more than once is a no-op.
func Key[K comparable](id K) Gen[func()] {
	return Perform(keyOp{site: site(CallSite(1)), id: fmt.Sprint(id)})
}

type keysKey struct{}

// keyStack is the key stack of one frame for one entry of that frame.
// A stack left over from an earlier entry is reset on first use.
type keyStack struct {
	taps int
	ids  []string
}

func (s *keyStack) current(f *Frame) bool { return s.taps == f.Taps() }

// keyPlugin maintains the per-frame key stack.
type keyPlugin struct{}

func (keyPlugin) Matches(op Operation) bool {
	_, ok := op.(keyOp)
	return ok
}

func (keyPlugin) Exec(op Operation, t *Thread, f *Frame, _ []Plugin) (Resumed, error) {
	o := op.(keyOp)
	seg := keyPrefix + o.id
	stack := Attach(f, keysKey{}, func() *keyStack { return &keyStack{taps: f.Taps()} })
	if !stack.current(f) {
		stack.taps = f.Taps()
		stack.ids = stack.ids[:0]
	}
	t.Push(seg)
	stack.ids = append(stack.ids, o.id)
	taps := stack.taps
	done := false
	unkey := func() {
		// an unkey kept past its scope must not touch a later entry
		if done || stack.taps != taps {
			return
		}
		done = true
		t.Remove(seg)
		if i := lastIndex(stack.ids, o.id); i >= 0 {
			stack.ids = slices.Delete(stack.ids, i, i+1)
		}
	}
	return unkey, nil
}

func lastIndex(ids []string, id string) int {
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i] == id {
			return i
		}
	}
	return -1
}

func (keyPlugin) Dispose(f *Frame) {
	Detach(f, keysKey{})
}

// Keys returns the keys currently pushed on f in its latest entry,
// outermost first. Keys never popped in an earlier entry are not reported.
func Keys(f *Frame) []string {
	stack, ok := Lookup[*keyStack](f, keysKey{})
	if !ok || !stack.current(f) {
		return nil
	}
	return slices.Clone(stack.ids)
}
