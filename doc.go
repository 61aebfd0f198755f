// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fiber provides a generator-driven effect scheduler.
//
// A program is a tree of generators re-run from the top on every pass, or
// tick. Generators yield operations; the interpreter answers them through
// a pipeline of plugins. Identity across passes comes from call sites:
// every enhanced generator owns a [Frame] keyed by where it was invoked,
// and plugins keep per-call-site state on that frame. A frame whose call
// site is not revisited during a pass is disposed, together with its
// subtree, on the way out of its parent.
//
// # Generators
//
// [Gen] is a continuation-passing generator. It is built from a few
// primitives and driven one yield at a time:
//
//   - [Pure], [Lazy], [Do]: Generators that complete without yielding
//   - [Bind], [Map], [Then], [ForEach]: Sequencing
//   - [Perform]: Yield a typed operation (see [Op] and [Phantom])
//   - [Yield]: Yield an arbitrary payload
//   - [Emit]: Yield a value out of a sub-generator driven by [Use] or [Memo]
//   - [Fail]: Abort the pass with an error
//   - [Await]: Run a blocking step with the context of the pass
//   - [Finally], [Bracket]: Cleanup that also runs when a suspended generator is discarded
//
// [Start] and [Suspension] expose the stepping boundary. A suspension may
// be resumed at most once; [Suspension.Discard] abandons the generator.
// A nil resume value becomes the zero value of the expected type.
//
// # Identity
//
//   - [CallSite]: Token naming a source position, e.g. "scene.go:42"
//   - [R], [R1], [R2]: Tag every invocation of a generator function with its call site
//   - [Enhance]: Tag a generator with an explicit token
//   - [Call]: Enter a generator without giving it a frame
//   - [Key]: Push a key onto the active [Thread] so loop iterations get distinct state
//
// Call-site tokens are derived from the goroutine stack. A generator
// function called through a shared helper reports the helper's line; use
// [Enhance] with a stable token where that matters.
//
// # Plugins
//
// The built-in plugins are always installed ahead of any passed with
// [WithPlugins]:
//
//   - [Ref]: A [Cell] whose identity is stable across passes
//   - [Use]: A persistent sub-generator advanced once per visit
//   - [Memo]: A sub-computation cached until its dependencies change (see [SameDeps])
//   - [Key]: Keyed identity within the current frame
//
// A [Plugin] that also implements [Disposer] is notified for every frame
// that is torn down. A [ContextPlugin] receives the context of the pass.
//
// # Roots
//
//   - [NewRoot]: One pass per [Root.Tick], driven from a single goroutine
//   - [NewAsyncRoot]: Concurrent ticks join the pass in flight
//   - [Drive]: Run one pass of an arbitrary generator on a [Fiber]
//
// # Example
//
//	counter := fiber.R(func() fiber.Gen[int] {
//		return fiber.Map(fiber.Ref(0), func(c *fiber.Cell[int]) int {
//			c.Current++
//			return c.Current
//		})
//	})
//
//	root := fiber.NewRoot(func(struct{}) fiber.Gen[int] { return counter() })
//	root.Tick(struct{}{}) // 1
//	root.Tick(struct{}{}) // 2
//	root.Dispose()
package fiber
