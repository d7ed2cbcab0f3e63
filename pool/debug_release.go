//go:build !debug

package pool

// debugLog compiles away unless built with -tags debug.
func debugLog(string, ...interface{}) {}
