//go:build debug

package assert

import "fmt"

// Assert panics with the formatted message when cond is false. Only
// compiled in with the "debug" build tag.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}
