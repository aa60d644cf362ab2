//go:build !debug

package debug

// Debug is true when the binary is built with the debug tag.
const Debug = false

// Assert does nothing; it panics on a violated condition only when the debug
// build tag is set.
func Assert(condition bool, message ...string) {}
