// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "sync"

var markerPool = sync.Pool{
	New: func() any { return new(marker) },
}

// marker is the suspension record a generator returns instead of calling
// its continuation. Markers are single-use: resume and discard both
// return them to the pool.
//
// fin collects the [Finally] scopes the marker escaped on its way out of
// the generator, innermost first.
type marker struct {
	op     Operation
	resume func(*marker, Resumed) Resumed
	k      any
	fin    []*finalizer
}

func (m *marker) Op() Operation            { return m.op }
func (m *marker) Resume(v Resumed) Resumed { return m.resume(m, v) }
func (m *marker) release()                 { releaseMarker(m) }

// acquireMarker takes a cleared marker from the pool. The caller sets op,
// k and resume before returning it from a generator.
func acquireMarker() *marker {
	return markerPool.Get().(*marker)
}

// releaseMarker clears m so the pool does not pin the continuation, the
// operation or any finalizer, then returns it to the pool.
func releaseMarker(m *marker) {
	m.op = nil
	m.resume = nil
	m.k = nil
	m.fin = nil
	markerPool.Put(m)
}
