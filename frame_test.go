// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/fiber"
)

// disposeCounter is a plugin that matches nothing and counts Dispose calls per frame.
type disposeCounter struct {
	disposed map[*fiber.Frame]int
	order    []*fiber.Frame
}

func newDisposeCounter() *disposeCounter { return &disposeCounter{disposed: make(map[*fiber.Frame]int)} }

func (p *disposeCounter) Matches(fiber.Operation) bool { return false }

func (p *disposeCounter) Exec(op fiber.Operation, _ *fiber.Thread, _ *fiber.Frame, _ []fiber.Plugin) (fiber.Resumed, error) {
	return op, nil
}

func (p *disposeCounter) Dispose(f *fiber.Frame) {
	p.disposed[f]++
	p.order = append(p.order, f)
}

func TestNewFrame(t *testing.T) {
	f := fiber.NewFrame()
	assert.Empty(t, f.Children())
	assert.Empty(t, f.Unused())
	assert.Zero(t, f.Taps())
	assert.Nil(t, f.Child("missing"))
}

func TestFrameAttachScopedPerFrame(t *testing.T) {
	type counterKey struct{}
	a, b := fiber.NewFrame(), fiber.NewFrame()
	inits := 0
	mk := func() *int { inits++; return new(int) }

	ca := fiber.Attach(a, counterKey{}, mk)
	*ca = 5
	assert.Same(t, ca, fiber.Attach(a, counterKey{}, mk))
	cb := fiber.Attach(b, counterKey{}, mk)
	assert.NotSame(t, ca, cb)
	assert.Equal(t, 2, inits)

	got, ok := fiber.Lookup[*int](a, counterKey{})
	require.True(t, ok)
	assert.Equal(t, 5, *got)

	fiber.Detach(a, counterKey{})
	_, ok = fiber.Lookup[*int](a, counterKey{})
	assert.False(t, ok)
}

func TestDisposeRecursiveVisitsWholeTree(t *testing.T) {
	p := newDisposeCounter()
	root := fiber.NewRoot(func(struct{}) fiber.Gen[struct{}] {
		return fiber.Then(
			fiber.Enhance("a", fiber.Enhance("a1", fiber.Pure(struct{}{}))),
			fiber.Enhance("b", fiber.Pure(struct{}{})),
		)
	}, fiber.WithPlugins(p))
	_, err := root.Tick(struct{}{})
	require.NoError(t, err)

	top := root.Fiber().Root().Child("root")
	a, b := top.Child("a"), top.Child("b")
	a1 := a.Child("a1")
	require.NotNil(t, a1)

	fiber.DisposeRecursive(top, root.Fiber().Plugins())
	for _, f := range []*fiber.Frame{top, a, a1, b} {
		assert.Equal(t, 1, p.disposed[f])
	}
	// a node is disposed before its children
	assert.Equal(t, []*fiber.Frame{top, a, a1, b}, p.order)
}
