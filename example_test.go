// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber_test

import (
	"context"
	"fmt"

	"code.hybscloud.com/fiber"
)

func ExampleNewRoot() {
	root := fiber.NewRoot(func(n int) fiber.Gen[int] {
		return fiber.Map(fiber.Ref(0), func(c *fiber.Cell[int]) int {
			c.Current += n
			return c.Current
		})
	})
	for _, n := range []int{1, 2, 3} {
		v, _ := root.Tick(n)
		fmt.Println(v)
	}
	// Output:
	// 1
	// 3
	// 6
}

func ExampleMemo() {
	root := fiber.NewRoot(func(name string) fiber.Gen[string] {
		return fiber.Memo[string](func(deps []any) fiber.Gen[struct{}] {
			fmt.Println("open", deps[0])
			return fiber.Then(
				fiber.Emit(fmt.Sprintf("handle(%v)", deps[0])),
				fiber.Do(func() { fmt.Println("close", deps[0]) }),
			)
		}, name)
	})
	for _, name := range []string{"a", "a", "b"} {
		v, _ := root.Tick(name)
		fmt.Println(v)
	}
	root.Dispose()
	// Output:
	// open a
	// handle(a)
	// handle(a)
	// close a
	// open b
	// handle(b)
	// close b
}

func ExampleUse() {
	root := fiber.NewRoot(func(struct{}) fiber.Gen[int] {
		return fiber.Use[int](func() fiber.Gen[struct{}] {
			return fiber.ForEach([]int{10, 20, 30}, func(_ int, n int) fiber.Gen[struct{}] {
				return fiber.Emit(n)
			})
		})
	})
	for range 4 {
		v, _ := root.Tick(struct{}{})
		fmt.Println(v)
	}
	// Output:
	// 10
	// 20
	// 30
	// 0
}

func ExampleKey() {
	root := fiber.NewRoot(func(names []string) fiber.Gen[struct{}] {
		return fiber.ForEach(names, func(_ int, name string) fiber.Gen[struct{}] {
			return fiber.Bind(fiber.Key(name), func(unkey func()) fiber.Gen[struct{}] {
				return fiber.Bind(fiber.Ref(0), func(visits *fiber.Cell[int]) fiber.Gen[struct{}] {
					return fiber.Do(func() {
						visits.Current++
						fmt.Println(name, visits.Current)
						unkey()
					})
				})
			})
		})
	})
	_, _ = root.Tick([]string{"x", "y"})
	_, _ = root.Tick([]string{"y"})
	// Output:
	// x 1
	// y 1
	// y 2
}

func ExampleAsyncRoot() {
	root := fiber.NewAsyncRoot(func(n int) fiber.Gen[int] {
		return fiber.Await(func(ctx context.Context) (int, error) {
			return n * n, ctx.Err()
		})
	})
	v, err := root.Tick(context.Background(), 12)
	fmt.Println(v, err)
	// Output:
	// 144 <nil>
}
