//go:build !debug

// Package assert provides debug-only invariant checks. In release builds
// (the default) Assert is a no-op: spec.md is explicit that malformed or
// impossible states on well-formed input must never panic the core.
package assert

// Assert is compiled out entirely in release builds.
func Assert(cond bool, format string, args ...interface{}) {}
