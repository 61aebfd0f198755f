// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"maps"
	"slices"
)

// Frame is one node of a fiber's frame tree. Each distinct call-site
// position in the dynamic generator tree owns exactly one Frame, reachable
// from its parent under that call-site token.
//
// Plugins keep their state on the frame with [Attach]; that state is
// scoped to exactly this frame and never shared with other frames.
type Frame struct {
	child  map[string]*Frame
	unused map[string]struct{}
	taps   int
	state  map[any]any
}

// NewFrame returns an empty frame with no children, no unused lanes and a
// tap count of zero.
func NewFrame() *Frame {
	return &Frame{
		child:  make(map[string]*Frame),
		unused: make(map[string]struct{}),
	}
}

// Child returns the child frame entered from site, or nil.
func (f *Frame) Child(site string) *Frame { return f.child[site] }

// Children returns the call-site tokens of all child frames, sorted.
func (f *Frame) Children() []string { return slices.Sorted(maps.Keys(f.child)) }

// Unused returns the lanes not yet revisited in the current pass, sorted.
func (f *Frame) Unused() []string { return slices.Sorted(maps.Keys(f.unused)) }

// Taps returns how many times the frame has been re-entered after creation.
func (f *Frame) Taps() int { return f.taps }

// reenter marks every child as stale until it is revisited.
func (f *Frame) reenter() {
	clear(f.unused)
	for site := range f.child {
		f.unused[site] = struct{}{}
	}
	f.taps++
}

// Attach returns the state stored on f under key, calling init to create
// it on first use. Keys are compared with ==; plugins use an unexported
// key type to avoid collisions.
func Attach[T any](f *Frame, key any, init func() T) T {
	if v, ok := f.state[key]; ok {
		return v.(T)
	}
	if f.state == nil {
		f.state = make(map[any]any)
	}
	v := init()
	f.state[key] = v
	return v
}

// Lookup returns the state stored on f under key, if any.
func Lookup[T any](f *Frame, key any) (T, bool) {
	v, ok := f.state[key]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Detach drops the state stored on f under key.
func Detach(f *Frame, key any) { delete(f.state, key) }

// DisposeRecursive invokes every plugin's Dispose hook on f, then on every
// descendant, depth first. Validity is not consulted: the whole subtree is
// torn down.
func DisposeRecursive(f *Frame, plugins []Plugin) {
	for _, p := range plugins {
		if d, ok := p.(Disposer); ok {
			d.Dispose(f)
		}
	}
	for _, site := range f.Children() {
		DisposeRecursive(f.child[site], plugins)
	}
}

// count returns the number of frames in the subtree rooted at f.
func (f *Frame) count() int {
	n := 1
	for _, c := range f.child {
		n += c.count()
	}
	return n
}
