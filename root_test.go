// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"code.hybscloud.com/fiber"
)

func TestRootTickAccumulates(t *testing.T) {
	root := fiber.NewRoot(func(n int) fiber.Gen[int] {
		return fiber.Map(fiber.Ref(0), func(c *fiber.Cell[int]) int {
			c.Current += n
			return c.Current
		})
	})
	for i, want := range []int{1, 3, 6} {
		v, err := root.Tick(i + 1)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
}

type gate struct {
	runs    atomic.Int32
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait(ctx context.Context, n int) (int, error) {
	g.runs.Add(1)
	g.once.Do(func() { close(g.started) })
	<-g.release
	return n, nil
}

func TestAsyncRootSingleFlight(t *testing.T) {
	g := newGate()
	root := fiber.NewAsyncRoot(func(n int) fiber.Gen[int] {
		return fiber.Await(func(ctx context.Context) (int, error) { return g.wait(ctx, n) })
	}, fiber.WithLogger(zaptest.NewLogger(t)))

	results := make([]int, 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := root.Tick(context.Background(), 1)
		assert.NoError(t, err)
		results[0] = v
	}()
	<-g.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := root.Tick(context.Background(), 2)
		assert.NoError(t, err)
		results[1] = v
	}()
	require.Eventually(t, func() bool { return root.Waiters() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	close(g.release)
	wg.Wait()
	assert.Equal(t, int32(1), g.runs.Load(), "the joining tick does not start a pass")
	assert.Equal(t, []int{1, 1}, results)
	assert.Zero(t, root.Waiters())
}

func TestAsyncRootWaiterCancel(t *testing.T) {
	g := newGate()
	done := make(chan struct{})
	root := fiber.NewAsyncRoot(func(struct{}) fiber.Gen[int] {
		return fiber.Bind(fiber.Await(func(ctx context.Context) (int, error) { return g.wait(ctx, 5) }),
			func(n int) fiber.Gen[int] {
				return fiber.Then(fiber.Do(func() { close(done) }), fiber.Pure(n))
			})
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := root.Tick(ctx, struct{}{})
		errc <- err
	}()
	<-g.started
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(g.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pass abandoned by its only waiter did not complete")
	}
}

func TestAsyncRootPassSeesContextValues(t *testing.T) {
	root := fiber.NewAsyncRoot(func(struct{}) fiber.Gen[int] {
		return fiber.Await(func(ctx context.Context) (int, error) {
			return ctx.Value(ctxKey{}).(int), ctx.Err()
		})
	})
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, 9))
	defer cancel()
	v, err := root.Tick(ctx, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestAsyncRootPanicBecomesError(t *testing.T) {
	root := fiber.NewAsyncRoot(func(struct{}) fiber.Gen[int] {
		return fiber.Then(fiber.Do(func() { panic("lost device") }), fiber.Pure(1))
	})
	_, err := root.Tick(context.Background(), struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass panicked: lost device")
	assert.Same(t, root.Fiber().Root(), root.Fiber().Head())

	v, err := root.Tick(context.Background(), struct{}{})
	assert.Zero(t, v)
	assert.Error(t, err, "the fiber stays usable after a panicked pass")
}

func TestAsyncRootDispose(t *testing.T) {
	tk := &ticker{}
	root := fiber.NewAsyncRoot(func(struct{}) fiber.Gen[string] {
		return fiber.Use[string](tk.sequence)
	})
	v, err := root.Tick(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	root.Dispose()
	assert.True(t, root.Fiber().Disposed())

	v, err = root.Tick(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "a", v, "state restarts after dispose")
}
