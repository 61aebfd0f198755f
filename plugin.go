// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "context"

// Plugin interprets the operations a generator yields.
//
// The interpreter offers every operation that is not a nested generator to
// the plugins in order; the first plugin whose Matches returns true runs
// Exec, and its result is sent back into the generator. Operations no
// plugin matches are sent back unchanged.
type Plugin interface {
	// Matches reports whether the plugin interprets op.
	Matches(op Operation) bool

	// Exec interprets op. t is the active thread, f the frame of the
	// innermost enhanced generator, plugins the fiber's full pipeline.
	// A non-nil error aborts the pass and is returned to the caller of Tick.
	Exec(op Operation, t *Thread, f *Frame, plugins []Plugin) (Resumed, error)
}

// Disposer is implemented by plugins that release per-frame state when a
// frame is torn down.
type Disposer interface {
	Dispose(f *Frame)
}

// ContextPlugin is implemented by plugins that need the context of the
// pass. The interpreter prefers ExecContext over Exec when both exist.
type ContextPlugin interface {
	Plugin
	ExecContext(ctx context.Context, op Operation, t *Thread, f *Frame, plugins []Plugin) (Resumed, error)
}

// Sited is implemented by operations that record the call site of their
// constructor. Plugins key per-call-site state by t.Path(SiteOf(op)).
type Sited interface {
	CallSite() string
}

// SiteOf returns the call site recorded by op, or "".
func SiteOf(op Operation) string {
	if s, ok := op.(Sited); ok {
		return s.CallSite()
	}
	return ""
}

// site is embedded by built-in operations.
type site string

// CallSite implements [Sited].
func (s site) CallSite() string { return string(s) }

// builtins returns a fresh instance of every built-in plugin, in dispatch order.
func builtins() []Plugin {
	return []Plugin{refPlugin{}, usePlugin{}, keyPlugin{}, memoPlugin{}}
}
