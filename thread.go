// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"slices"
	"strings"
)

// pathSep joins thread segments. Call-site tokens never contain it.
const pathSep = "/"

// Thread is the stack of segments naming the active path from the root
// generator to the one currently executing: the call sites of every entered
// enhanced generator, interleaved with keys pushed by [Key].
//
// A Thread is owned by one fiber and only valid during a pass.
type Thread struct {
	segs []string
}

// Push appends seg to the active path.
func (t *Thread) Push(seg string) { t.segs = append(t.segs, seg) }

// Pop removes and returns the innermost segment, or "" if the thread is empty.
func (t *Thread) Pop() string {
	n := len(t.segs)
	if n == 0 {
		return ""
	}
	seg := t.segs[n-1]
	t.segs = t.segs[:n-1]
	return seg
}

// Remove deletes the innermost occurrence of seg and reports whether it
// was present. Keys popped out of order leave the rest of the path intact.
func (t *Thread) Remove(seg string) bool {
	for i := len(t.segs) - 1; i >= 0; i-- {
		if t.segs[i] == seg {
			t.segs = slices.Delete(t.segs, i, i+1)
			return true
		}
	}
	return false
}

// Len returns the number of active segments.
func (t *Thread) Len() int { return len(t.segs) }

// Segments returns a copy of the active segments, outermost first.
func (t *Thread) Segments() []string { return slices.Clone(t.segs) }

// Path joins the active segments and site into the key plugins use for
// per-call-site state.
func (t *Thread) Path(site string) string {
	if site == "" {
		return strings.Join(t.segs, pathSep)
	}
	if len(t.segs) == 0 {
		return site
	}
	return strings.Join(t.segs, pathSep) + pathSep + site
}

func (t *Thread) truncate(n int) {
	if n < len(t.segs) {
		clear(t.segs[n:])
		t.segs = t.segs[:n]
	}
}
