//go:build flashdebug

package debug

import _ "unsafe"

//go:linkname throw runtime.throw
func throw(string)

// Assert runs fn and crashes the process when it reports false. Only
// compiled in under the flashdebug tag; production builds pay nothing.
func Assert(info string, fn func() bool) {
	if !fn() {
		throw("assertion failed: " + info)
	}
}
