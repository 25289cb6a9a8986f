// Package monitoring holds the diagnostic logger shared by the parsing, scene
// and renaming packages. Warnings about skipped records or suspect poses go
// through Logf so callers and tests can redirect them.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf.
var Logf func(format string, v ...any) = log.Printf

// SetLogger replaces Logf and returns a function restoring the previous
// logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...any)) (restore func()) {
	prev := Logf
	if f == nil {
		f = func(string, ...any) {}
	}
	Logf = f
	return func() { Logf = prev }
}
