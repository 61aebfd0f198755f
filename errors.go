// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "github.com/pkg/errors"

// ErrNonGenerator is the panic value raised when the interpreter or a
// plugin is handed a nil generator or factory.
var ErrNonGenerator = errors.New("fiber: non-generator passed")
