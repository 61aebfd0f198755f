// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/fiber"
)

func TestFinallyRunsOnCompletion(t *testing.T) {
	var log []string
	g := fiber.Finally(fiber.Map(fiber.Perform(ask{}), func(n int) int {
		log = append(log, "body")
		return n
	}), func() { log = append(log, "cleanup") })

	_, s := fiber.Start(g)
	require.NotNil(t, s)
	v, s := s.Resume(3)
	assert.Nil(t, s)
	assert.Equal(t, 3, v)
	assert.Equal(t, []string{"body", "cleanup"}, log)
}

func TestFinallyRunsOnDiscardInnermostFirst(t *testing.T) {
	var log []string
	inner := fiber.Finally(fiber.Perform(ask{}), func() { log = append(log, "inner") })
	outer := fiber.Finally(fiber.Then(fiber.Perform(ask{}), inner), func() { log = append(log, "outer") })

	_, s := fiber.Start(outer)
	_, s = s.Resume(1)
	require.NotNil(t, s, "suspended inside both scopes")
	s.Discard()
	s.Discard()
	assert.Equal(t, []string{"inner", "outer"}, log)
}

func TestFinallyClosedScopeNotRerun(t *testing.T) {
	cleanups := 0
	g := fiber.Then(
		fiber.Finally(fiber.Perform(ask{}), func() { cleanups++ }),
		fiber.Perform(ask{}),
	)
	_, s := fiber.Start(g)
	_, s = s.Resume(1)
	require.NotNil(t, s)
	assert.Equal(t, 1, cleanups)
	s.Discard()
	assert.Equal(t, 1, cleanups)
}

func TestFinallyRunsWhenPassFails(t *testing.T) {
	boom := errors.New("boom")
	released := 0
	root := fiber.NewRoot(func(struct{}) fiber.Gen[int] {
		return fiber.Bracket(fiber.Pure("conn"), func(string) { released++ }, func(string) fiber.Gen[int] {
			return fiber.Enhance("work", fiber.Fail[int](boom))
		})
	})
	_, err := root.Tick(struct{}{})
	assert.Same(t, boom, err)
	assert.Equal(t, 1, released)
}

func TestUseDisposeRunsFinally(t *testing.T) {
	opened, closed := 0, 0
	root := fiber.NewRoot(func(struct{}) fiber.Gen[int] {
		return fiber.Use[int](func() fiber.Gen[struct{}] {
			opened++
			return fiber.Finally(fiber.Emit(opened), func() { closed++ })
		})
	})
	v, err := root.Tick(struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Zero(t, closed)

	root.Dispose()
	assert.Equal(t, 1, closed)

	root.Dispose()
	assert.Equal(t, 1, closed)
}

func TestMemoCleanupRunsFinallyOnce(t *testing.T) {
	closed := 0
	root := fiber.NewRoot(func(n int) fiber.Gen[int] {
		return fiber.Memo[int](func(deps []any) fiber.Gen[struct{}] {
			return fiber.Finally(fiber.Emit(deps[0].(int)), func() { closed++ })
		}, n)
	})
	for _, n := range []int{1, 1, 2} {
		_, err := root.Tick(n)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, closed)
	root.Dispose()
	assert.Equal(t, 2, closed)
}
