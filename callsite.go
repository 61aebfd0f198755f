// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"path"
	"runtime"
	"strconv"
)

// CallSite returns a token naming the source position depth frames above
// its caller: the last path segment of the file and the line number,
// e.g. "scene.go:42". CallSite(0) names the line that called CallSite.
//
// Tokens are stable for one source line within a process. Code that changes
// the stack shape between passes (wrappers, helpers shared by several call
// sites) changes the token; use [Enhance] when explicit identity is needed.
//
// Panics if the runtime cannot report the requested frame.
func CallSite(depth int) string {
	_, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		panic("fiber: call site unavailable")
	}
	return path.Base(file) + ":" + strconv.Itoa(line)
}

// nested is implemented by operations that ask the interpreter to enter
// another generator.
type nested interface {
	callSite() string
	erased() Gen[Resumed]
}

// call is the operation behind enhanced and plain nested generators.
// An empty site marks a plain generator that does not own a frame.
type call[A any] struct {
	Phantom[A]
	site string
	gen  Gen[A]
}

func (c call[A]) callSite() string { return c.site }

func (c call[A]) erased() Gen[Resumed] {
	if c.gen == nil {
		return nil
	}
	return Map(c.gen, toResumed[A])
}

// Enhance tags g with an explicit call-site token. Entering the returned
// generator creates or reuses the child frame named site under the
// current frame.
func Enhance[A any](site string, g Gen[A]) Gen[A] {
	return Perform(call[A]{site: site, gen: g})
}

// Call enters g as a plain nested generator. Its effects are scoped to the
// current frame; it neither creates nor reuses a child frame.
func Call[A any](g Gen[A]) Gen[A] {
	return Perform(call[A]{gen: g})
}

// R wraps a generator function so that every invocation is tagged with the
// call site of that invocation.
//
// Example:
//
//	var mesh = fiber.R(func() fiber.Gen[*Mesh] { ... })
//	...
//	fiber.Bind(mesh(), func(m *Mesh) fiber.Gen[struct{}] { ... })
func R[A any](fn func() Gen[A]) func() Gen[A] {
	return func() Gen[A] {
		return Enhance(CallSite(1), Lazy(fn))
	}
}

// R1 is [R] for generator functions taking one argument.
func R1[P, A any](fn func(P) Gen[A]) func(P) Gen[A] {
	return func(p P) Gen[A] {
		return Enhance(CallSite(1), Lazy(func() Gen[A] { return fn(p) }))
	}
}

// R2 is [R] for generator functions taking two arguments.
func R2[P, Q, A any](fn func(P, Q) Gen[A]) func(P, Q) Gen[A] {
	return func(p P, q Q) Gen[A] {
		return Enhance(CallSite(1), Lazy(func() Gen[A] { return fn(p, q) }))
	}
}
